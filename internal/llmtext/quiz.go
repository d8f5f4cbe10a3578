package llmtext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QuestionType selects the normalization rules for a generated quiz.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "tf"
	QuestionFill      QuestionType = "fill"
	QuestionEssay     QuestionType = "essay"
)

// ParseQuestionType maps the aliases clients send to a canonical type.
// Unknown values fall back to mcq.
func ParseQuestionType(raw string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tf", "true_false", "true/false":
		return QuestionTrueFalse
	case "fill", "fill_in", "fill-in", "fillin":
		return QuestionFill
	case "essay", "theory":
		return QuestionEssay
	default:
		return QuestionMCQ
	}
}

// Premium reports whether the question type is gated behind a paid plan.
func (t QuestionType) Premium() bool {
	return t == QuestionTrueFalse || t == QuestionFill || t == QuestionEssay
}

// QuizQuestion is the strict shape handed to the frontend quiz widget.
// For mcq there are exactly 4 options; for tf exactly ["True","False"];
// for fill/essay the options are empty and CorrectAnswer is 0.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Concept       string   `json:"concept"`
	Guidance      string   `json:"guidance"`
	CorrectText   string   `json:"correctText"`
}

const defaultGuidance = "Review the related section of your study material and reason through each option before answering."

var mcqFallbackOptions = []string{"Option A", "Option B", "Option C", "Option D"}

// NormalizeQuiz validates and repairs a parsed question list against the
// schema for the given question type. Items that are not objects, or that
// cannot be repaired, are dropped; an empty result means the generation
// attempt failed and must be surfaced by the caller.
func NormalizeQuiz(items []interface{}, questionType QuestionType) []QuizQuestion {
	normalized := make([]QuizQuestion, 0, len(items))

	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		q := QuizQuestion{
			ID:          stringField(fields, "id", fmt.Sprintf("q%d", i+1)),
			Question:    stringField(fields, "question", fmt.Sprintf("Question %d", i+1)),
			Options:     []string{},
			Explanation: stringField(fields, "explanation", ""),
			Concept:     stringField(fields, "concept", ""),
			Guidance:    stringField(fields, "guidance", defaultGuidance),
			CorrectText: stringField(fields, "correctText", ""),
		}
		if q.Concept == "" {
			q.Concept = InferConcept(q.Question)
		}

		switch questionType {
		case QuestionMCQ:
			q.Options = normalizeOptions(fields["options"])
			q.CorrectAnswer = resolveCorrectAnswer(fields["correctAnswer"], q.Options, q.CorrectText, q.Explanation)
			if q.CorrectText == "" {
				q.CorrectText = q.Options[q.CorrectAnswer]
			}
		case QuestionTrueFalse:
			q.Options = []string{"True", "False"}
			q.CorrectAnswer = trueFalseIndex(fields["correctAnswer"])
			if q.CorrectText == "" {
				q.CorrectText = q.Options[q.CorrectAnswer]
			}
		default: // fill, essay
			q.Options = []string{}
			q.CorrectAnswer = 0
			if q.CorrectText == "" {
				q.CorrectText = q.Explanation
			}
		}

		normalized = append(normalized, q)
	}

	return normalized
}

// normalizeOptions coerces the raw options value to exactly 4 non-empty
// strings, truncating extras and padding missing slots by position.
func normalizeOptions(raw interface{}) []string {
	options := make([]string, 0, 4)
	if list, ok := raw.([]interface{}); ok {
		for _, entry := range list {
			if len(options) == 4 {
				break
			}
			s := strings.TrimSpace(coerceString(entry))
			if s != "" {
				options = append(options, s)
			}
		}
	}
	for len(options) < 4 {
		options = append(options, mcqFallbackOptions[len(options)])
	}
	return options
}

// resolveCorrectAnswer picks the mcq answer index. Text hints win over the
// raw index; letter tokens win over integers; integers are tolerated in both
// 0-based and 1-based conventions.
func resolveCorrectAnswer(raw interface{}, options []string, correctText, explanation string) int {
	hint := correctText
	if hint == "" {
		hint = explanation
	}
	if hint != "" {
		if idx := pickOptionFromHint(options, hint); idx >= 0 {
			return idx
		}
	}

	if s := strings.ToUpper(strings.TrimSpace(coerceString(raw))); len(s) == 1 && s[0] >= 'A' && s[0] <= 'D' {
		return int(s[0] - 'A')
	}

	if n, ok := coerceInt(raw); ok {
		if n >= 0 && n < len(options) {
			return n
		}
		if n >= 1 && n <= len(options) {
			return n - 1
		}
	}

	return 0
}

// trueFalseIndex maps the raw correctAnswer to the True/False option index.
// 1, "1", false and "False"/"false" all mean False (index 1); everything
// else means True (index 0).
func trueFalseIndex(raw interface{}) int {
	switch v := raw.(type) {
	case bool:
		if !v {
			return 1
		}
	case float64:
		if v == 1 {
			return 1
		}
	case int:
		if v == 1 {
			return 1
		}
	case string:
		switch strings.TrimSpace(v) {
		case "1", "False", "false":
			return 1
		}
	}
	return 0
}

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// pickOptionFromHint fuzzy-matches the hint text against the options. An
// exact normalized match wins immediately; otherwise the longest option whose
// normalized form is a substring of the hint wins. Returns -1 when nothing
// matches.
func pickOptionFromHint(options []string, hint string) int {
	normalizedHint := normalizeForMatch(hint)
	if normalizedHint == "" {
		return -1
	}

	best := -1
	bestLen := 0
	for i, option := range options {
		normalizedOption := normalizeForMatch(option)
		if normalizedOption == "" {
			continue
		}
		if normalizedOption == normalizedHint {
			return i
		}
		if strings.Contains(normalizedHint, normalizedOption) && len(normalizedOption) > bestLen {
			best = i
			bestLen = len(normalizedOption)
		}
	}
	return best
}

func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// InferConcept derives a short concept label from the question text: the
// first two lowercase tokens longer than 3 characters, title-cased.
func InferConcept(question string) string {
	cleaned := nonAlnumPattern.ReplaceAllString(strings.ToLower(question), " ")

	picked := make([]string, 0, 2)
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 3 {
			continue
		}
		picked = append(picked, strings.ToUpper(token[:1])+token[1:])
		if len(picked) == 2 {
			break
		}
	}

	if len(picked) == 0 {
		return "Core Concept"
	}
	return strings.Join(picked, " ")
}

func stringField(fields map[string]interface{}, key, fallback string) string {
	if raw, ok := fields[key]; ok {
		if s := strings.TrimSpace(coerceString(raw)); s != "" {
			return s
		}
	}
	return fallback
}

func coerceString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func coerceInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}
