package llmtext

import (
	"encoding/json"
	"testing"
)

func decodeItems(t *testing.T, raw string) []interface{} {
	t.Helper()
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return items
}

// ─── ParseQuestionType ───

func TestParseQuestionType(t *testing.T) {
	tests := []struct {
		in   string
		want QuestionType
	}{
		{"mcq", QuestionMCQ},
		{"tf", QuestionTrueFalse},
		{"true_false", QuestionTrueFalse},
		{"fill", QuestionFill},
		{"fill_in", QuestionFill},
		{"essay", QuestionEssay},
		{"theory", QuestionEssay},
		{"MCQ", QuestionMCQ},
		{" Essay ", QuestionEssay},
		{"", QuestionMCQ},
		{"multiple_choice", QuestionMCQ},
	}
	for _, tt := range tests {
		if got := ParseQuestionType(tt.in); got != tt.want {
			t.Errorf("ParseQuestionType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuestionTypePremium(t *testing.T) {
	if QuestionMCQ.Premium() {
		t.Error("mcq should not be premium")
	}
	for _, qt := range []QuestionType{QuestionTrueFalse, QuestionFill, QuestionEssay} {
		if !qt.Premium() {
			t.Errorf("%s should be premium", qt)
		}
	}
}

// ─── NormalizeQuiz: mcq ───

func TestNormalizeQuizMCQWellFormed(t *testing.T) {
	items := decodeItems(t, `[{
		"id": "q1",
		"question": "What gas do plants absorb?",
		"options": ["Oxygen", "Carbon dioxide", "Nitrogen", "Helium"],
		"correctAnswer": 1,
		"explanation": "Plants absorb carbon dioxide during photosynthesis.",
		"concept": "Photosynthesis"
	}]`)

	got := NormalizeQuiz(items, QuestionMCQ)
	if len(got) != 1 {
		t.Fatalf("want 1 question, got %d", len(got))
	}
	q := got[0]
	if len(q.Options) != 4 {
		t.Fatalf("want 4 options, got %d", len(q.Options))
	}
	if q.CorrectAnswer != 1 {
		t.Errorf("correctAnswer = %d, want 1", q.CorrectAnswer)
	}
	if q.CorrectText != "Carbon dioxide" {
		t.Errorf("correctText = %q", q.CorrectText)
	}
	if q.Concept != "Photosynthesis" {
		t.Errorf("concept = %q", q.Concept)
	}
	if q.Guidance == "" {
		t.Error("guidance should be defaulted, not empty")
	}
}

func TestNormalizeQuizMCQPadsAndTruncatesOptions(t *testing.T) {
	items := decodeItems(t, `[
		{"question": "Short list", "options": ["A only", "B only"], "correctAnswer": 0},
		{"question": "Long list", "options": ["1", "2", "3", "4", "5", "6"], "correctAnswer": 0}
	]`)

	got := NormalizeQuiz(items, QuestionMCQ)
	if len(got) != 2 {
		t.Fatalf("want 2 questions, got %d", len(got))
	}
	if len(got[0].Options) != 4 {
		t.Fatalf("padded options = %v", got[0].Options)
	}
	if got[0].Options[2] != "Option C" || got[0].Options[3] != "Option D" {
		t.Errorf("padding by position broken: %v", got[0].Options)
	}
	if len(got[1].Options) != 4 {
		t.Errorf("truncation broken: %v", got[1].Options)
	}
}

func TestNormalizeQuizCorrectAnswerForms(t *testing.T) {
	options := `["Mercury", "Venus", "Earth", "Mars"]`
	tests := []struct {
		name string
		item string
		want int
	}{
		{"letter", `{"question": "q", "options": ` + options + `, "correctAnswer": "C"}`, 2},
		{"zero based int", `{"question": "q", "options": ` + options + `, "correctAnswer": 3}`, 3},
		{"one based int", `{"question": "q", "options": ` + options + `, "correctAnswer": 4}`, 3},
		{"numeric string", `{"question": "q", "options": ` + options + `, "correctAnswer": "2"}`, 2},
		{"exact text hint", `{"question": "q", "options": ` + options + `, "correctAnswer": 0, "correctText": "venus"}`, 1},
		{"substring hint", `{"question": "q", "options": ` + options + `, "correctAnswer": 0, "explanation": "The answer is Mars, the red planet."}`, 3},
		{"garbage falls back", `{"question": "q", "options": ` + options + `, "correctAnswer": "zebra"}`, 0},
		{"missing falls back", `{"question": "q", "options": ` + options + `}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuiz(decodeItems(t, "["+tt.item+"]"), QuestionMCQ)
			if len(got) != 1 {
				t.Fatalf("want 1 question, got %d", len(got))
			}
			if got[0].CorrectAnswer != tt.want {
				t.Errorf("correctAnswer = %d, want %d", got[0].CorrectAnswer, tt.want)
			}
		})
	}
}

func TestNormalizeQuizHintPrefersExactOverSubstring(t *testing.T) {
	items := decodeItems(t, `[{
		"question": "q",
		"options": ["light", "light energy", "heat", "sound"],
		"correctAnswer": 3,
		"correctText": "light"
	}]`)
	got := NormalizeQuiz(items, QuestionMCQ)
	if got[0].CorrectAnswer != 0 {
		t.Fatalf("exact match should win: got %d", got[0].CorrectAnswer)
	}
}

// ─── NormalizeQuiz: tf ───

func TestNormalizeQuizTrueFalse(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"int one", `1`, 1},
		{"string one", `"1"`, 1},
		{"bool false", `false`, 1},
		{"string False", `"False"`, 1},
		{"string false", `"false"`, 1},
		{"int zero", `0`, 0},
		{"bool true", `true`, 0},
		{"string True", `"True"`, 0},
		{"missing", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := decodeItems(t, `[{"question": "The sky is green.", "correctAnswer": `+tt.answer+`}]`)
			got := NormalizeQuiz(items, QuestionTrueFalse)
			if len(got) != 1 {
				t.Fatalf("want 1 question, got %d", len(got))
			}
			q := got[0]
			if len(q.Options) != 2 || q.Options[0] != "True" || q.Options[1] != "False" {
				t.Fatalf("tf options = %v", q.Options)
			}
			if q.CorrectAnswer != tt.want {
				t.Errorf("correctAnswer = %d, want %d", q.CorrectAnswer, tt.want)
			}
		})
	}
}

// ─── NormalizeQuiz: fill and essay ───

func TestNormalizeQuizFillAndEssay(t *testing.T) {
	for _, qt := range []QuestionType{QuestionFill, QuestionEssay} {
		items := decodeItems(t, `[{
			"question": "Explain osmosis.",
			"options": ["should", "be", "dropped", "entirely"],
			"correctAnswer": 2,
			"explanation": "Water moves across a membrane toward higher solute concentration."
		}]`)
		got := NormalizeQuiz(items, qt)
		if len(got) != 1 {
			t.Fatalf("%s: want 1 question, got %d", qt, len(got))
		}
		q := got[0]
		if len(q.Options) != 0 {
			t.Errorf("%s: options should be empty, got %v", qt, q.Options)
		}
		if q.CorrectAnswer != 0 {
			t.Errorf("%s: correctAnswer = %d, want 0", qt, q.CorrectAnswer)
		}
		if q.CorrectText != q.Explanation {
			t.Errorf("%s: correctText should fall back to explanation", qt)
		}
	}
}

// ─── NormalizeQuiz: repairs and defaults ───

func TestNormalizeQuizSkipsNonObjects(t *testing.T) {
	items := decodeItems(t, `["just a string", 42, {"question": "Real one?", "options": ["a","b","c","d"], "correctAnswer": 0}, null]`)
	got := NormalizeQuiz(items, QuestionMCQ)
	if len(got) != 1 {
		t.Fatalf("want 1 question, got %d", len(got))
	}
	if got[0].Question != "Real one?" {
		t.Errorf("question = %q", got[0].Question)
	}
}

func TestNormalizeQuizDefaultsIDAndQuestion(t *testing.T) {
	items := decodeItems(t, `[{}, {"id": "", "question": "  "}]`)
	got := NormalizeQuiz(items, QuestionMCQ)
	if len(got) != 2 {
		t.Fatalf("want 2 questions, got %d", len(got))
	}
	if got[0].ID != "q1" || got[0].Question != "Question 1" {
		t.Errorf("first defaults: id=%q question=%q", got[0].ID, got[0].Question)
	}
	if got[1].ID != "q2" || got[1].Question != "Question 2" {
		t.Errorf("second defaults: id=%q question=%q", got[1].ID, got[1].Question)
	}
}

func TestNormalizeQuizEmptyInput(t *testing.T) {
	got := NormalizeQuiz(nil, QuestionMCQ)
	if len(got) != 0 {
		t.Fatalf("want empty result, got %v", got)
	}
}

// ─── InferConcept ───

func TestInferConcept(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What causes photosynthesis in plants?", "What Causes"},
		{"Why do cells divide?", "Cells Divide"},
		{"a b c?", "Core Concept"},
		{"", "Core Concept"},
		{"Mitochondria", "Mitochondria"},
	}
	for _, tt := range tests {
		if got := InferConcept(tt.in); got != tt.want {
			t.Errorf("InferConcept(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ─── SplitQA ───

func TestSplitQA(t *testing.T) {
	raw := "Q: What is entropy?\nA: A measure of disorder in a system.\n\n" +
		"Q: State the second law of thermodynamics.\nA: Entropy of an isolated system never decreases.\n\n" +
		"This block has no markers and is skipped."
	got := SplitQA(raw, "hard")
	if len(got) != 2 {
		t.Fatalf("want 2 questions, got %d", len(got))
	}
	if got[0].Question != "What is entropy?" {
		t.Errorf("question = %q", got[0].Question)
	}
	if got[0].Answer != "A measure of disorder in a system." {
		t.Errorf("answer = %q", got[0].Answer)
	}
	if got[0].Type != "theory" || got[0].Difficulty != "hard" {
		t.Errorf("type/difficulty = %q/%q", got[0].Type, got[0].Difficulty)
	}
}

func TestSplitQASkipsMalformedBlocks(t *testing.T) {
	raw := "A: answer before question Q: backwards\n\nQ: only a question\n\nQ:\nA: empty question"
	if got := SplitQA(raw, "medium"); len(got) != 0 {
		t.Fatalf("want no questions, got %v", got)
	}
}
