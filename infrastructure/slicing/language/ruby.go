package language

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/corvus-index/corvus/infrastructure/slicing"
)

// Ruby implements Analyzer for Ruby code.
type Ruby struct {
	Base
}

// NewRuby creates a new Ruby analyzer.
func NewRuby(language slicing.Language) *Ruby {
	return &Ruby{
		Base: NewBase(language),
	}
}

// FunctionName extracts the method name from a method/singleton_method node.
func (r *Ruby) FunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		return r.NodeText(nameNode, source)
	}

	return ""
}

// IsPublic returns true unless the method name ends with "!" or "?" private
// convention markers used by bang/predicate methods don't apply; Ruby's
// visibility is a runtime call (private/protected), not syntactic, so
// everything syntactically extracted is treated as public.
func (r *Ruby) IsPublic(_ *sitter.Node, name string, _ []byte) bool {
	return !strings.HasPrefix(name, "_")
}

// IsMethod returns true for singleton (class-level) methods.
func (r *Ruby) IsMethod(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return node.Type() == "singleton_method"
}

// Docstring extracts comments preceding a method.
func (r *Ruby) Docstring(node *sitter.Node, source []byte) string {
	return r.ExtractPrecedingComment(node, source)
}

// ModulePath builds the module path from file information.
func (r *Ruby) ModulePath(file slicing.ParsedFile) string {
	return r.BuildModulePathFromPath(file.Path(), ".rb")
}

// Classes extracts class and module definitions.
func (r *Ruby) Classes(tree *sitter.Tree, source []byte) []slicing.ClassDefinition {
	if tree == nil {
		return nil
	}

	classNodes := r.Walker().CollectNodes(tree.RootNode(), []string{"class", "module"})
	classes := make([]slicing.ClassDefinition, 0, len(classNodes))

	for _, node := range classNodes {
		classes = append(classes, r.extractClass(node, source))
	}

	return classes
}

func (r *Ruby) extractClass(node *sitter.Node, source []byte) slicing.ClassDefinition {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = r.NodeText(nameNode, source)
	}

	docstring := r.Docstring(node, source)
	bases := r.extractBases(node, source)
	methods := r.extractMethods(node, source, name)

	return slicing.NewClassDefinition(
		"", node, node.StartByte(), node.EndByte(),
		name, name, true, docstring, bases, methods, nil,
	)
}

func (r *Ruby) extractBases(node *sitter.Node, source []byte) []string {
	superclass := node.ChildByFieldName("superclass")
	if superclass == nil {
		return nil
	}

	var bases []string
	r.Walker().Walk(superclass, func(n *sitter.Node) bool {
		if r.Walker().IsIdentifier(n) {
			bases = append(bases, r.NodeText(n, source))
		}
		return true
	})

	return bases
}

func (r *Ruby) extractMethods(classNode *sitter.Node, source []byte, className string) []slicing.FunctionDefinition {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	methodNodes := r.Walker().CollectNodes(body, []string{"method", "singleton_method"})
	methods := make([]slicing.FunctionDefinition, 0, len(methodNodes))

	for _, methodNode := range methodNodes {
		name := r.FunctionName(methodNode, source)
		if name == "" {
			continue
		}

		method := slicing.NewFunctionDefinition(
			"", methodNode, methodNode.StartByte(), methodNode.EndByte(),
			className+"#"+name, name,
			r.IsPublic(methodNode, name, source), true,
			r.Docstring(methodNode, source), nil, "",
		)
		methods = append(methods, method)
	}

	return methods
}

// Types returns nil; Ruby has no static type declarations.
func (r *Ruby) Types(_ *sitter.Tree, _ []byte) []slicing.TypeDefinition {
	return nil
}
