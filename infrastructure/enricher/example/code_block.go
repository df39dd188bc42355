package example

// CodeBlock is a fenced or directive-delimited code sample extracted from a
// documentation file, along with enough surrounding context (a heading or
// the preceding paragraph) to make sense of it once it's pulled out of the
// file it came from.
type CodeBlock struct {
	content   string
	language  string
	lineStart int
	lineEnd   int
	context   string
}

// NewCodeBlock creates a new CodeBlock.
func NewCodeBlock(content, language string, lineStart, lineEnd int, context string) CodeBlock {
	return CodeBlock{
		content:   content,
		language:  language,
		lineStart: lineStart,
		lineEnd:   lineEnd,
		context:   context,
	}
}

// Content returns the code content.
func (b CodeBlock) Content() string { return b.content }

// Language returns the programming language, or "" if the source didn't tag one.
func (b CodeBlock) Language() string { return b.language }

// LineStart returns the 1-based starting line number within the source file.
func (b CodeBlock) LineStart() int { return b.lineStart }

// LineEnd returns the 1-based ending line number within the source file.
func (b CodeBlock) LineEnd() int { return b.lineEnd }

// Context returns the surrounding context (heading or paragraph text).
func (b CodeBlock) Context() string { return b.context }

// HasLanguage returns true if a language is specified.
func (b CodeBlock) HasLanguage() bool { return b.language != "" }

// HasContext returns true if context is available.
func (b CodeBlock) HasContext() bool { return b.context != "" }
