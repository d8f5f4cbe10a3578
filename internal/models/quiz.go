package models

import "qwikstudi-backend/internal/llmtext"

// QuizResponse is the payload returned by quiz generation. Questions carry
// the strict normalized shape the quiz widget renders.
type QuizResponse struct {
	Questions    []llmtext.QuizQuestion `json:"questions"`
	QuestionType string                 `json:"questionType"`
	Difficulty   string                 `json:"difficulty"`
	SourceName   string                 `json:"sourceName,omitempty"`
}

// ScoreQuestionsRequest asks the model to grade free-form theory answers.
type ScoreQuestionsRequest struct {
	Questions   []llmtext.ExamQuestion `json:"questions"`
	UserAnswers []string               `json:"userAnswers"`
	Context     string                 `json:"context,omitempty"`
}

// QuestionScore is the verdict for one graded answer.
type QuestionScore struct {
	Question string  `json:"question"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

type ScoreQuestionsResponse struct {
	Scores []QuestionScore `json:"scores"`
}
