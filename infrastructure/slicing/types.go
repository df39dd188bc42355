package slicing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Analyzer extracts code elements from parsed AST trees for one language.
type Analyzer interface {
	// Language returns the language configuration.
	Language() Language

	// FunctionName extracts the function name from a function node.
	FunctionName(node *sitter.Node, source []byte) string

	// IsPublic determines if a function is public based on naming conventions.
	IsPublic(node *sitter.Node, name string, source []byte) bool

	// IsMethod determines if a node is a method (receiver-based function).
	IsMethod(node *sitter.Node) bool

	// Docstring extracts documentation comments from a node.
	Docstring(node *sitter.Node, source []byte) string

	// ModulePath builds the module path from file information.
	ModulePath(file ParsedFile) string

	// Classes extracts class definitions from the AST.
	Classes(tree *sitter.Tree, source []byte) []ClassDefinition

	// Types extracts type definitions from the AST.
	Types(tree *sitter.Tree, source []byte) []TypeDefinition
}

// ParsedFile represents a parsed source file.
type ParsedFile struct {
	path       string
	tree       *sitter.Tree
	sourceCode []byte
}

// NewParsedFile creates a new ParsedFile.
func NewParsedFile(path string, tree *sitter.Tree, sourceCode []byte) ParsedFile {
	code := make([]byte, len(sourceCode))
	copy(code, sourceCode)

	return ParsedFile{
		path:       path,
		tree:       tree,
		sourceCode: code,
	}
}

// Path returns the file path.
func (p ParsedFile) Path() string { return p.path }

// Tree returns the AST tree.
func (p ParsedFile) Tree() *sitter.Tree { return p.tree }

// SourceCode returns the source code bytes.
func (p ParsedFile) SourceCode() []byte {
	code := make([]byte, len(p.sourceCode))
	copy(code, p.sourceCode)
	return code
}

// FunctionDefinition represents an extracted function.
type FunctionDefinition struct {
	filePath      string
	node          *sitter.Node
	startByte     uint32
	endByte       uint32
	qualifiedName string
	simpleName    string
	isPublic      bool
	isMethod      bool
	docstring     string
	parameters    []string
	returnType    string
}

// NewFunctionDefinition creates a new FunctionDefinition.
func NewFunctionDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName string,
	isPublic, isMethod bool,
	docstring string,
	parameters []string,
	returnType string,
) FunctionDefinition {
	params := make([]string, len(parameters))
	copy(params, parameters)

	return FunctionDefinition{
		filePath:      filePath,
		node:          node,
		startByte:     startByte,
		endByte:       endByte,
		qualifiedName: qualifiedName,
		simpleName:    simpleName,
		isPublic:      isPublic,
		isMethod:      isMethod,
		docstring:     docstring,
		parameters:    params,
		returnType:    returnType,
	}
}

// FilePath returns the source file path.
func (f FunctionDefinition) FilePath() string { return f.filePath }

// Node returns the AST node.
func (f FunctionDefinition) Node() *sitter.Node { return f.node }

// StartByte returns the start byte position.
func (f FunctionDefinition) StartByte() uint32 { return f.startByte }

// EndByte returns the end byte position.
func (f FunctionDefinition) EndByte() uint32 { return f.endByte }

// Span returns the byte span (start, end).
func (f FunctionDefinition) Span() (uint32, uint32) { return f.startByte, f.endByte }

// QualifiedName returns the fully qualified name.
func (f FunctionDefinition) QualifiedName() string { return f.qualifiedName }

// SimpleName returns the simple function name.
func (f FunctionDefinition) SimpleName() string { return f.simpleName }

// IsPublic returns true if the function is public.
func (f FunctionDefinition) IsPublic() bool { return f.isPublic }

// IsMethod returns true if the function is a method.
func (f FunctionDefinition) IsMethod() bool { return f.isMethod }

// Docstring returns the function documentation.
func (f FunctionDefinition) Docstring() string { return f.docstring }

// Parameters returns the function parameters.
func (f FunctionDefinition) Parameters() []string {
	params := make([]string, len(f.parameters))
	copy(params, f.parameters)
	return params
}

// ReturnType returns the function return type.
func (f FunctionDefinition) ReturnType() string { return f.returnType }

// ClassDefinition represents an extracted class, struct, or similar container.
type ClassDefinition struct {
	filePath          string
	node              *sitter.Node
	startByte         uint32
	endByte           uint32
	qualifiedName     string
	simpleName        string
	isPublic          bool
	docstring         string
	bases             []string
	methods           []FunctionDefinition
	constructorParams []string
}

// NewClassDefinition creates a new ClassDefinition.
func NewClassDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName string,
	isPublic bool,
	docstring string,
	bases []string,
	methods []FunctionDefinition,
	constructorParams []string,
) ClassDefinition {
	basesCopy := make([]string, len(bases))
	copy(basesCopy, bases)

	methodsCopy := make([]FunctionDefinition, len(methods))
	copy(methodsCopy, methods)

	paramsCopy := make([]string, len(constructorParams))
	copy(paramsCopy, constructorParams)

	return ClassDefinition{
		filePath:          filePath,
		node:              node,
		startByte:         startByte,
		endByte:           endByte,
		qualifiedName:     qualifiedName,
		simpleName:        simpleName,
		isPublic:          isPublic,
		docstring:         docstring,
		bases:             basesCopy,
		methods:           methodsCopy,
		constructorParams: paramsCopy,
	}
}

// FilePath returns the source file path.
func (c ClassDefinition) FilePath() string { return c.filePath }

// Node returns the AST node.
func (c ClassDefinition) Node() *sitter.Node { return c.node }

// StartByte returns the start byte position.
func (c ClassDefinition) StartByte() uint32 { return c.startByte }

// EndByte returns the end byte position.
func (c ClassDefinition) EndByte() uint32 { return c.endByte }

// QualifiedName returns the fully qualified name.
func (c ClassDefinition) QualifiedName() string { return c.qualifiedName }

// SimpleName returns the simple class name.
func (c ClassDefinition) SimpleName() string { return c.simpleName }

// IsPublic returns true if the class is public.
func (c ClassDefinition) IsPublic() bool { return c.isPublic }

// Docstring returns the class documentation.
func (c ClassDefinition) Docstring() string { return c.docstring }

// Bases returns the base class names.
func (c ClassDefinition) Bases() []string {
	bases := make([]string, len(c.bases))
	copy(bases, c.bases)
	return bases
}

// Methods returns the class methods.
func (c ClassDefinition) Methods() []FunctionDefinition {
	methods := make([]FunctionDefinition, len(c.methods))
	copy(methods, c.methods)
	return methods
}

// ConstructorParams returns the constructor parameters.
func (c ClassDefinition) ConstructorParams() []string {
	params := make([]string, len(c.constructorParams))
	copy(params, c.constructorParams)
	return params
}

// TypeDefinition represents an extracted type alias, interface, or similar declaration.
type TypeDefinition struct {
	filePath          string
	node              *sitter.Node
	startByte         uint32
	endByte           uint32
	qualifiedName     string
	simpleName        string
	kind              string
	docstring         string
	constructorParams []string
}

// NewTypeDefinition creates a new TypeDefinition.
func NewTypeDefinition(
	filePath string,
	node *sitter.Node,
	startByte, endByte uint32,
	qualifiedName, simpleName, kind, docstring string,
	constructorParams []string,
) TypeDefinition {
	paramsCopy := make([]string, len(constructorParams))
	copy(paramsCopy, constructorParams)

	return TypeDefinition{
		filePath:          filePath,
		node:              node,
		startByte:         startByte,
		endByte:           endByte,
		qualifiedName:     qualifiedName,
		simpleName:        simpleName,
		kind:              kind,
		docstring:         docstring,
		constructorParams: paramsCopy,
	}
}

// FilePath returns the source file path.
func (t TypeDefinition) FilePath() string { return t.filePath }

// Node returns the AST node.
func (t TypeDefinition) Node() *sitter.Node { return t.node }

// StartByte returns the start byte position.
func (t TypeDefinition) StartByte() uint32 { return t.startByte }

// EndByte returns the end byte position.
func (t TypeDefinition) EndByte() uint32 { return t.endByte }

// QualifiedName returns the fully qualified name.
func (t TypeDefinition) QualifiedName() string { return t.qualifiedName }

// SimpleName returns the simple type name.
func (t TypeDefinition) SimpleName() string { return t.simpleName }

// Kind returns the type kind (e.g. "struct", "interface", "alias").
func (t TypeDefinition) Kind() string { return t.kind }

// Docstring returns the type documentation.
func (t TypeDefinition) Docstring() string { return t.docstring }

// ConstructorParams returns the constructor parameters (struct fields).
func (t TypeDefinition) ConstructorParams() []string {
	params := make([]string, len(t.constructorParams))
	copy(params, t.constructorParams)
	return params
}

// NodeTypes defines AST node type names for a language.
type NodeTypes struct {
	functionNodes []string
	methodNodes   []string
	classNodes    []string
	typeNodes     []string
	callNode      string
	importNodes   []string
	nameField     string
}

// NewNodeTypes creates a new NodeTypes configuration.
func NewNodeTypes(
	functionNodes, methodNodes, classNodes, typeNodes []string,
	callNode string,
	importNodes []string,
	nameField string,
) NodeTypes {
	return NodeTypes{
		functionNodes: functionNodes,
		methodNodes:   methodNodes,
		classNodes:    classNodes,
		typeNodes:     typeNodes,
		callNode:      callNode,
		importNodes:   importNodes,
		nameField:     nameField,
	}
}

// FunctionNodes returns function definition node types.
func (n NodeTypes) FunctionNodes() []string { return n.functionNodes }

// MethodNodes returns method definition node types.
func (n NodeTypes) MethodNodes() []string { return n.methodNodes }

// ClassNodes returns class/struct definition node types.
func (n NodeTypes) ClassNodes() []string { return n.classNodes }

// TypeNodes returns type definition node types.
func (n NodeTypes) TypeNodes() []string { return n.typeNodes }

// CallNode returns the function call node type.
func (n NodeTypes) CallNode() string { return n.callNode }

// ImportNodes returns import statement node types.
func (n NodeTypes) ImportNodes() []string { return n.importNodes }

// NameField returns the tree-sitter field name used to extract identifiers.
func (n NodeTypes) NameField() string { return n.nameField }

// IsFunctionNode returns true if the node type is a function definition.
func (n NodeTypes) IsFunctionNode(nodeType string) bool { return contains(n.functionNodes, nodeType) }

// IsMethodNode returns true if the node type is a method definition.
func (n NodeTypes) IsMethodNode(nodeType string) bool { return contains(n.methodNodes, nodeType) }

// IsClassNode returns true if the node type is a class definition.
func (n NodeTypes) IsClassNode(nodeType string) bool { return contains(n.classNodes, nodeType) }

// IsTypeNode returns true if the node type is a type definition.
func (n NodeTypes) IsTypeNode(nodeType string) bool { return contains(n.typeNodes, nodeType) }

func contains(haystack []string, needle string) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

// Language represents a supported programming language: its name, the
// tree-sitter grammar used to parse it (nil for languages handled by a
// non-AST fallback analyzer), and the node type names the analyzers need.
type Language struct {
	name     string
	language *sitter.Language
	nodes    NodeTypes
}

// NewLanguage creates a new Language configuration.
func NewLanguage(name string, lang *sitter.Language, nodes NodeTypes) Language {
	return Language{
		name:     name,
		language: lang,
		nodes:    nodes,
	}
}

// Name returns the language name, matching the GLOSSARY's language identifiers.
func (l Language) Name() string { return l.name }

// SitterLanguage returns the tree-sitter grammar, or nil if this language has
// no AST grammar wired and relies on a heuristic analyzer instead.
func (l Language) SitterLanguage() *sitter.Language { return l.language }

// Nodes returns the node type configuration.
func (l Language) Nodes() NodeTypes { return l.nodes }

// LanguageConfig holds the authoritative extension-to-language mapping
// (see the language/file-extension map in the external interface spec).
// Built by NewLanguageConfig in config.go, which wires every supported
// extension to its tree-sitter grammar.
type LanguageConfig struct {
	byExt map[string]Language
}

// ByExtension returns the language configuration by file extension
// (case-insensitive; callers pass a lower-cased extension beginning with ".").
func (c LanguageConfig) ByExtension(ext string) (Language, bool) {
	lang, ok := c.byExt[ext]
	return lang, ok
}

// SupportedExtensions returns all recognized file extensions.
func (c LanguageConfig) SupportedExtensions() []string {
	extensions := make([]string, 0, len(c.byExt))
	for ext := range c.byExt {
		extensions = append(extensions, ext)
	}
	return extensions
}
