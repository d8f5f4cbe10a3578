package llmtext

import (
	"strings"
	"testing"
)

// ─── Sanitize ───

func TestSanitizeStripsMarkdownMarkers(t *testing.T) {
	got := Sanitize("## Photosynthesis\n\nPlants use **light** to make *sugar*.")
	if strings.ContainsAny(got, "#*") {
		t.Fatalf("markdown markers survived: %q", got)
	}
	if !strings.Contains(got, "Plants use light to make sugar.") {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestSanitizeLatexTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"delimiters", `\[ E = mc^{2} \]`, "E = mc^(2)"},
		{"cdot", `a \cdot b`, "a * b"},
		{"times", `3 \times 4`, "3 x 4"},
		{"div", `8 \div 2`, "8 / 2"},
		{"pm", `x \pm 1`, "x +/- 1"},
		{"arrows", `A \rightarrow B \Rightarrow C`, "A -> B => C"},
		{"comparisons", `x \leq y \geq z \neq w \approx v`, "x <= y >= z != w ~ v"},
		{"sqrt", `\sqrt{16}`, "sqrt16"},
		{"frac", `\frac{a}{b}`, "fracab"},
		{"text wrap", `\text{velocity} = v`, "velocity = v"},
		{"subscript", `H_{2}O`, "H_(2)O"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizePreservesLineStructure(t *testing.T) {
	in := "First   line\nSecond\t\tline\n\n\n\n\nThird line"
	want := "First line\nSecond line\n\nThird line"
	if got := Sanitize(in); got != want {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`## Heading with \frac{1}{2} and **bold**`,
		"plain text, nothing to do",
		`x^{2} + y_{i} \approx \sqrt{z}`,
		"a\n\n\n\nb",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestSanitizeLeavesNoLatexResidue(t *testing.T) {
	in := `The formula \( \frac{d}{dx} x^{2} = 2 \cdot x \) shows \text{the derivative}.`
	got := Sanitize(in)
	for _, forbidden := range []string{`\(`, `\)`, `\cdot`, `\text`, "{", "}"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("residue %q in %q", forbidden, got)
		}
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := Sanitize(""); got != "" {
		t.Fatalf("Sanitize(\"\") = %q", got)
	}
	if got := Sanitize("   \n\t  "); got != "" {
		t.Fatalf("whitespace-only input = %q", got)
	}
}
