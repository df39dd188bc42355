package language

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/corvus-index/corvus/infrastructure/slicing"
)

// Kotlin implements Analyzer for Kotlin code.
type Kotlin struct {
	Base
}

// NewKotlin creates a new Kotlin analyzer.
func NewKotlin(language slicing.Language) *Kotlin {
	return &Kotlin{
		Base: NewBase(language),
	}
}

// FunctionName extracts the function name from a function_declaration node.
func (k *Kotlin) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return k.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic returns true unless the declaration is explicitly marked private
// or internal among its preceding modifiers.
func (k *Kotlin) IsPublic(node *sitter.Node, _ string, source []byte) bool {
	if node == nil {
		return true
	}

	parent := node.Parent()
	if parent == nil || parent.Type() != "declaration" {
		return true
	}

	modifiers := k.Walker().CollectDescendants(parent, "visibility_modifier")
	for _, m := range modifiers {
		text := k.NodeText(m, source)
		if text == "private" || text == "internal" {
			return false
		}
	}

	return true
}

// IsMethod returns false; Kotlin class members are extracted within class bodies.
func (k *Kotlin) IsMethod(_ *sitter.Node) bool {
	return false
}

// Docstring extracts KDoc comments preceding a declaration.
func (k *Kotlin) Docstring(node *sitter.Node, source []byte) string {
	return k.ExtractPrecedingComment(node, source)
}

// ModulePath builds the module path from the file's package header, falling
// back to a path-derived module name.
func (k *Kotlin) ModulePath(file slicing.ParsedFile) string {
	tree := file.Tree()
	if tree == nil {
		return k.BuildModulePathFromPath(file.Path(), ".kt")
	}

	packageNodes := k.Walker().CollectNodes(tree.RootNode(), []string{"package_header"})
	if len(packageNodes) == 0 {
		return k.BuildModulePathFromPath(file.Path(), ".kt")
	}

	return k.NodeText(packageNodes[0], file.SourceCode())
}

// Classes extracts class, interface, and object definitions.
func (k *Kotlin) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := k.Walker().CollectNodes(tree.RootNode(), []string{"class_declaration", "object_declaration"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, k.extractClass(node, source))
	}

	return classes
}

func (k *Kotlin) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = k.NodeText(nameNode, source)
	}

	docstring := k.Docstring(node, source)
	methods := k.extractMethods(node, source, name)

	return slicing.NewClassDefinition(
		"", node, node.StartByte(), node.EndByte(),
		name, name, true, docstring, nil, methods, nil,
	)
}

func (k *Kotlin) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	funcNodes := k.Walker().CollectNodes(body, []string{"function_declaration"})
	methods := make([]slicing.FunctionDefinition, 0, len(funcNodes))

	for _, funcNode := range funcNodes {
		name := k.FunctionName(funcNode, source)
		if name == "" {
			continue
		}

		method := slicing.NewFunctionDefinition(
			"", funcNode, funcNode.StartByte(), funcNode.EndByte(),
			className+"."+name, name, true, true,
			k.Docstring(funcNode, source), nil, "",
		)
		methods = append(methods, method)
	}

	return methods
}

// Types returns nil; Kotlin type aliases are rare enough not to warrant a
// distinct extraction unit.
func (k *Kotlin) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}
