package llmtext

import "strings"

// ExamQuestion is an open-ended question with its model answer, produced by
// the exam-question generator for theory-style study sets.
type ExamQuestion struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

// SplitQA is the last-resort parser for question output the JSON salvager
// gave up on: paragraph blocks containing "Q:" and "A:" markers become
// theory questions. Blocks without both markers are ignored.
func SplitQA(raw, difficulty string) []ExamQuestion {
	var questions []ExamQuestion

	for _, block := range strings.Split(raw, "\n\n") {
		qIdx := strings.Index(block, "Q:")
		aIdx := strings.Index(block, "A:")
		if qIdx < 0 || aIdx < 0 || aIdx < qIdx {
			continue
		}

		question := strings.TrimSpace(block[qIdx+2 : aIdx])
		answer := strings.TrimSpace(block[aIdx+2:])
		if question == "" || answer == "" {
			continue
		}

		questions = append(questions, ExamQuestion{
			Question:   question,
			Answer:     answer,
			Type:       "theory",
			Difficulty: difficulty,
		})
	}

	return questions
}
