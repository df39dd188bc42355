package language

import (
	"github.com/corvus-index/corvus/infrastructure/slicing"
)

// Factory creates language-specific analyzers, dispatching on file
// extension rather than language name since some languages (typescript)
// share a name across extensions that need distinct grammars and analyzer
// behavior (.ts vs .tsx).
type Factory struct {
	config slicing.LanguageConfig
}

// NewFactory creates a new Factory.
func NewFactory(config slicing.LanguageConfig) *Factory {
	return &Factory{config: config}
}

// ByExtension returns an analyzer for the specified file extension.
func (f *Factory) ByExtension(ext string) (slicing.Analyzer, bool) {
	lang, ok := f.config.ByExtension(ext)
	if !ok || lang.SitterLanguage() == nil {
		return nil, false
	}
	analyzer := f.createAnalyzer(ext, lang)
	if analyzer == nil {
		return nil, false
	}
	return analyzer, true
}

func (f *Factory) createAnalyzer(ext string, lang slicing.Language) slicing.Analyzer {
	switch ext {
	case ".py":
		return NewPython(lang)
	case ".go":
		return NewGo(lang)
	case ".java":
		return NewJava(lang)
	case ".c", ".h":
		return NewC(lang)
	case ".cpp", ".hpp":
		return NewCPP(lang)
	case ".rs":
		return NewRust(lang)
	case ".js", ".jsx":
		return NewJavaScript(lang)
	case ".ts":
		return NewTypeScript(lang)
	case ".tsx":
		return NewTSX(lang)
	case ".cs":
		return NewCSharp(lang)
	case ".rb":
		return NewRuby(lang)
	case ".php":
		return NewPHP(lang)
	case ".kt":
		return NewKotlin(lang)
	default:
		return nil
	}
}
