// Package enrichment provides task handlers for enrichment operations.
package enrichment

import "unicode/utf8"

// TruncateDiff truncates a diff to a reasonable length for LLM processing.
// Cuts on a rune boundary so a multi-byte character (accented identifiers,
// emoji in commit messages, non-English comments) straddling the cutoff
// isn't split into invalid UTF-8 before being sent to the enrichment model.
func TruncateDiff(diff string, maxLength int) string {
	if len(diff) <= maxLength {
		return diff
	}
	truncationNotice := "\n\n[diff truncated due to size]"
	cut := maxLength - len(truncationNotice)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(diff[cut]) {
		cut--
	}
	return diff[:cut] + truncationNotice
}

// MaxDiffLength is the maximum characters for a commit diff (~25k tokens).
const MaxDiffLength = 100_000
