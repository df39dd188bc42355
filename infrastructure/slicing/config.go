package slicing

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// NewLanguageConfig builds the authoritative extension-to-language table (see
// the language/file-extension map in the external interface spec). Several
// extensions share a language name (.c/.h, .cpp/.hpp, .js/.jsx, .ts/.tsx) but
// keep distinct grammars where the grammar itself differs (tsx has its own
// tree-sitter grammar even though it reports as "typescript").
func NewLanguageConfig() LanguageConfig {
	byExt := map[string]Language{
		".py":    NewLanguage("python", python.GetLanguage(), pythonNodes()),
		".go":    NewLanguage("go", golang.GetLanguage(), goNodes()),
		".js":    NewLanguage("javascript", javascript.GetLanguage(), javascriptNodes()),
		".jsx":   NewLanguage("javascript", javascript.GetLanguage(), javascriptNodes()),
		".ts":    NewLanguage("typescript", typescript.GetLanguage(), typescriptNodes()),
		".tsx":   NewLanguage("typescript", tsx.GetLanguage(), typescriptNodes()),
		".c":     NewLanguage("c", c.GetLanguage(), cNodes()),
		".h":     NewLanguage("c", c.GetLanguage(), cNodes()),
		".cpp":   NewLanguage("cpp", cpp.GetLanguage(), cppNodes()),
		".hpp":   NewLanguage("cpp", cpp.GetLanguage(), cppNodes()),
		".cs":    NewLanguage("csharp", csharp.GetLanguage(), csharpNodes()),
		".rb":    NewLanguage("ruby", ruby.GetLanguage(), rubyNodes()),
		".java":  NewLanguage("java", java.GetLanguage(), javaNodes()),
		".php":   NewLanguage("php", php.GetLanguage(), phpNodes()),
		".kt":    NewLanguage("kotlin", kotlin.GetLanguage(), kotlinNodes()),
		".rs":    NewLanguage("rust", rust.GetLanguage(), rustNodes()),
		// Swift has no tree-sitter grammar available in this stack; files
		// still resolve to the "swift" language for display purposes but
		// the nil grammar makes the slicer treat them as unparseable.
		".swift": NewLanguage("swift", nil, NodeTypes{}),
	}

	return LanguageConfig{byExt: byExt}
}

func pythonNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_definition"}, nil,
		[]string{"class_definition"}, nil,
		"call", []string{"import_statement", "import_from_statement"}, "name",
	)
}

func goNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_declaration"}, []string{"method_declaration"},
		nil, []string{"type_declaration", "type_spec"},
		"call_expression", []string{"import_declaration", "import_spec"}, "name",
	)
}

func javaNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"method_declaration", "constructor_declaration"}, nil,
		[]string{"class_declaration", "interface_declaration", "enum_declaration"}, nil,
		"method_invocation", []string{"import_declaration"}, "name",
	)
}

func cNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_definition"}, nil,
		[]string{"struct_specifier", "union_specifier", "enum_specifier"}, []string{"type_definition"},
		"call_expression", []string{"preproc_include"}, "declarator",
	)
}

func cppNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_definition"}, nil,
		[]string{"class_specifier", "struct_specifier"}, []string{"type_definition", "alias_declaration"},
		"call_expression", []string{"preproc_include", "using_declaration"}, "declarator",
	)
}

func rustNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_item"}, []string{"impl_item"},
		[]string{"struct_item", "enum_item"}, []string{"type_item", "trait_item"},
		"call_expression", []string{"use_declaration"}, "name",
	)
}

func javascriptNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_declaration", "arrow_function", "function_expression"}, []string{"method_definition"},
		[]string{"class_declaration"}, nil,
		"call_expression", []string{"import_statement"}, "name",
	)
}

func typescriptNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_declaration", "arrow_function", "function_expression"}, []string{"method_definition"},
		[]string{"class_declaration"}, []string{"type_alias_declaration", "interface_declaration"},
		"call_expression", []string{"import_statement"}, "name",
	)
}

func csharpNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"method_declaration", "local_function_statement"}, []string{"constructor_declaration"},
		[]string{"class_declaration", "struct_declaration", "interface_declaration", "enum_declaration"}, nil,
		"invocation_expression", []string{"using_directive"}, "name",
	)
}

func rubyNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"method"}, []string{"singleton_method"},
		[]string{"class", "module"}, nil,
		"call", []string{"call"}, "name",
	)
}

func phpNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_definition"}, []string{"method_declaration"},
		[]string{"class_declaration", "interface_declaration", "trait_declaration"}, nil,
		"function_call_expression", []string{"namespace_use_declaration"}, "name",
	)
}

func kotlinNodes() NodeTypes {
	return NewNodeTypes(
		[]string{"function_declaration"}, nil,
		[]string{"class_declaration", "object_declaration"}, nil,
		"call_expression", []string{"import_header"}, "name",
	)
}
