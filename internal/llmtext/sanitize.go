// Package llmtext turns unreliable model output into values the rest of the
// backend can store and display: plain-text sanitization, JSON salvage from
// prose-wrapped responses, and schema normalization for quizzes and summaries.
package llmtext

import (
	"regexp"
	"strings"
)

// latexReplacer maps the LaTeX fragments the chat model likes to emit onto
// plain-text equivalents. The tokens are disjoint, so replacement order
// within the set does not matter.
var latexReplacer = strings.NewReplacer(
	`\[`, "",
	`\]`, "",
	`\(`, "",
	`\)`, "",
	`\cdot`, " * ",
	`\times`, " x ",
	`\div`, " / ",
	`\pm`, "+/-",
	`\rightarrow`, " -> ",
	`\Rightarrow`, " => ",
	`\leq`, " <= ",
	`\geq`, " >= ",
	`\neq`, " != ",
	`\approx`, " ~ ",
	`\sqrt`, "sqrt",
	`\frac`, "frac",
)

var (
	textWrapPattern    = regexp.MustCompile(`\\text\{(.*?)\}`)
	subscriptPattern   = regexp.MustCompile(`_\{([^{}]*)\}`)
	superscriptPattern = regexp.MustCompile(`\^\{([^{}]*)\}`)
	spaceRunPattern    = regexp.MustCompile(`[ \t]+`)
	blankRunPattern    = regexp.MustCompile(`\n{3,}`)
)

// Sanitize flattens markdown emphasis and LaTeX math markup out of model text
// while preserving its line structure. It is idempotent and never fails; the
// result for complex nested LaTeX (e.g. \frac{a}{b}) is intentionally lossy,
// this is a flattener, not a LaTeX parser.
func Sanitize(text string) string {
	// Markdown headers and emphasis markers, deleted wholesale.
	text = strings.ReplaceAll(text, "#", "")
	text = strings.ReplaceAll(text, "*", "")

	text = latexReplacer.Replace(text)
	text = textWrapPattern.ReplaceAllString(text, "$1")

	// Subscripts and superscripts keep their grouping as parentheses before
	// the remaining braces are dropped.
	text = subscriptPattern.ReplaceAllString(text, "_($1)")
	text = superscriptPattern.ReplaceAllString(text, "^($1)")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunPattern.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
