package language

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/corvus-index/corvus/infrastructure/slicing"
)

// PHP implements Analyzer for PHP code.
type PHP struct {
	Base
}

// NewPHP creates a new PHP analyzer.
func NewPHP(language slicing.Language) *PHP {
	return &PHP{
		Base: NewBase(language),
	}
}

// FunctionName extracts the function/method name.
func (p *PHP) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return p.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic always returns true; PHP visibility modifiers are parsed off the
// enclosing declaration, not the function node itself.
func (p *PHP) IsPublic(_ *sitter.Node, _ string, _ []byte) bool {
	return true
}

// IsMethod returns false; methods are extracted within class bodies.
func (p *PHP) IsMethod(_ *sitter.Node) bool {
	return false
}

// Docstring extracts the PHPDoc comment preceding a declaration.
func (p *PHP) Docstring(node *sitter.Node, source []byte) string {
	return p.ExtractPrecedingComment(node, source)
}

// ModulePath builds the module path from file information.
func (p *PHP) ModulePath(file slicing.ParsedFile) string {
	return p.BuildModulePathFromPath(file.Path(), ".php")
}

// Classes extracts class and interface definitions.
func (p *PHP) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := p.Walker().CollectNodes(tree.RootNode(), []string{"class_declaration", "interface_declaration", "trait_declaration"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, p.extractClass(node, source))
	}

	return classes
}

func (p *PHP) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = p.NodeText(nameNode, source)
	}

	docstring := p.Docstring(node, source)
	bases := p.extractBases(node, source)
	methods := p.extractMethods(node, source, name)

	return slicing.NewClassDefinition(
		"", node, node.StartByte(), node.EndByte(),
		name, name, true, docstring, bases, methods, nil,
	)
}

func (p *PHP) extractBases(node *sitter.Node, source []byte) []string {
	var bases []string

	base := node.ChildByFieldName("base_clause")
	if base != nil {
		p.Walker().Walk(base, func(n *sitter.Node) bool {
			if n.Type() == "name" || p.Walker().IsIdentifier(n) {
				bases = append(bases, p.NodeText(n, source))
			}
			return true
		})
	}

	return bases
}

func (p *PHP) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	methodNodes := p.Walker().CollectNodes(body, []string{"method_declaration"})
	methods := make([]slicing.FunctionDefinition, 0, len(methodNodes))

	for _, methodNode := range methodNodes {
		name := p.FunctionName(methodNode, source)
		if name == "" {
			continue
		}

		method := slicing.NewFunctionDefinition(
			"", methodNode, methodNode.StartByte(), methodNode.EndByte(),
			className+"::"+name, name, true, true,
			p.Docstring(methodNode, source), nil, "",
		)
		methods = append(methods, method)
	}

	return methods
}

// Types returns nil; PHP type aliases are not modelled as a distinct unit.
func (p *PHP) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}
