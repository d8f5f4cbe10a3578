package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"qwikstudi-backend/internal/llmtext"
	"qwikstudi-backend/internal/models"
)

const studyBuddyPrompt = `You are QwikStudi, a friendly AI study buddy built by Glinax Tech Innovations. ` +
	`Help students understand their course material: explain concepts clearly, give worked examples, ` +
	`and encourage them to reason through problems themselves. Keep answers focused on studying. ` +
	`Use plain text without markdown or LaTeX formatting.`

// Response style presets for the chat endpoint.
type chatStyle struct {
	Temperature float32
	MaxTokens   int
}

var chatStyles = map[string]chatStyle{
	"concise":  {Temperature: 0.3, MaxTokens: 300},
	"balanced": {Temperature: 0.5, MaxTokens: 600},
	"detailed": {Temperature: 0.7, MaxTokens: 1000},
}

const (
	historyWindow     = 20
	historyCharLimit  = 500
	scoringModel      = "gpt-4o"
	titleFallback     = "New Chat"
	promptExcerptSize = 2000
)

type OpenAIService struct {
	client    *openai.Client
	chatModel string
	ttsModel  string
	sttModel  string
}

func NewOpenAIService(apiKey, chatModel, ttsModel, sttModel string) *OpenAIService {
	return &OpenAIService{
		client:    openai.NewClient(apiKey),
		chatModel: chatModel,
		ttsModel:  ttsModel,
		sttModel:  sttModel,
	}
}

// Chat runs one tutoring exchange. History is windowed to the last 20
// messages and each side truncated so old conversations cannot blow the
// token budget. The reply comes back sanitized.
func (s *OpenAIService) Chat(ctx context.Context, prompt, style string, history []models.ChatMessage) (string, error) {
	cfg, ok := chatStyles[style]
	if !ok {
		cfg = chatStyles["balanced"]
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: studyBuddyPrompt},
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: truncate(msg.Content, historyCharLimit),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return llmtext.Sanitize(resp.Choices[0].Message.Content), nil
}

// GenerateTitle names a chat from its first exchange. Failures fall back to
// the default title rather than erroring the commit.
func (s *OpenAIService) GenerateTitle(ctx context.Context, prompt, response string) string {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Generate a short title (max 6 words) for a study conversation. Reply with the title only, no quotes."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Question: %s\nAnswer: %s", truncate(prompt, historyCharLimit), truncate(response, historyCharLimit))},
		},
		Temperature: 0.3,
		MaxTokens:   20,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("title generation failed, using fallback: %v", err)
		return titleFallback
	}

	title := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'`)
	if title == "" {
		return titleFallback
	}
	return title
}

// GenerateQuiz turns study material into normalized quiz questions. An empty
// result after normalization means the model produced nothing usable.
func (s *OpenAIService) GenerateQuiz(ctx context.Context, material string, questionType llmtext.QuestionType, count int, difficulty string) ([]llmtext.QuizQuestion, error) {
	prompt := buildQuizPrompt(material, questionType, count, difficulty)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a quiz generator. Respond with a JSON array only, no commentary."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("quiz generation returned no choices")
	}

	content := resp.Choices[0].Message.Content
	raw, err := llmtext.SalvageJSON(content)
	if err != nil {
		// Theory questions sometimes come back as plain Q:/A: text instead
		// of JSON; split those rather than failing the generation.
		if questionType == llmtext.QuestionEssay {
			if qs := examToQuiz(llmtext.SplitQA(content, difficulty)); len(qs) > 0 {
				return qs, nil
			}
		}
		return nil, err
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		// The model sometimes wraps the array in {"questions": [...]}.
		var wrapper struct {
			Questions []interface{} `json:"questions"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Questions == nil {
			return nil, fmt.Errorf("%w: expected a question array", llmtext.ErrNoJSON)
		}
		items = wrapper.Questions
	}

	return llmtext.NormalizeQuiz(items, questionType), nil
}

// examToQuiz adapts Q:/A: exam questions to the quiz schema used by the
// frontend widget.
func examToQuiz(exam []llmtext.ExamQuestion) []llmtext.QuizQuestion {
	questions := make([]llmtext.QuizQuestion, 0, len(exam))
	for i, q := range exam {
		questions = append(questions, llmtext.QuizQuestion{
			ID:          fmt.Sprintf("q%d", i+1),
			Question:    q.Question,
			Options:     []string{},
			CorrectText: q.Answer,
			Explanation: q.Answer,
			Concept:     llmtext.InferConcept(q.Question),
		})
	}
	return questions
}

// Summarize condenses study material into a normalized summary payload.
func (s *OpenAIService) Summarize(ctx context.Context, material, length, format string, includeKeyTerms bool) (llmtext.SummaryPayload, error) {
	prompt := buildSummaryPrompt(material, length, format, includeKeyTerms)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You summarize study material. Respond with a single JSON object only, no commentary."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return llmtext.SummaryPayload{}, fmt.Errorf("summarization failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llmtext.SummaryPayload{}, fmt.Errorf("summarization returned no choices")
	}

	raw, err := llmtext.SalvageJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return llmtext.SummaryPayload{}, err
	}

	return llmtext.NormalizeSummary(raw, includeKeyTerms), nil
}

// ScoreAnswers grades free-form theory answers against their model answers.
func (s *OpenAIService) ScoreAnswers(ctx context.Context, req models.ScoreQuestionsRequest) ([]models.QuestionScore, error) {
	var sb strings.Builder
	sb.WriteString("Grade each answer from 0 to 100 with one sentence of feedback. ")
	sb.WriteString(`Respond with a JSON array of {"question", "score", "feedback"} objects, in order.` + "\n\n")
	if req.Context != "" {
		sb.WriteString("Context:\n" + truncate(req.Context, promptExcerptSize) + "\n\n")
	}
	for i, q := range req.Questions {
		answer := ""
		if i < len(req.UserAnswers) {
			answer = req.UserAnswers[i]
		}
		fmt.Fprintf(&sb, "Question %d: %s\nExpected: %s\nStudent answer: %s\n\n", i+1, q.Question, q.Answer, answer)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: scoringModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a strict but fair grader. Respond with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("answer scoring failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("answer scoring returned no choices")
	}

	raw, err := llmtext.SalvageJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	var scores []models.QuestionScore
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, fmt.Errorf("unexpected scoring payload: %w", err)
	}
	return scores, nil
}

// Speech renders text to MP3 audio using the configured TTS voice.
func (s *OpenAIService) Speech(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(s.ttsModel),
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}
	return audio, nil
}

// Transcribe runs Whisper over an uploaded audio file.
func (s *OpenAIService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.sttModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}

func buildQuizPrompt(material string, questionType llmtext.QuestionType, count int, difficulty string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d %s-difficulty questions from the study material below.\n", count, difficulty)

	switch questionType {
	case llmtext.QuestionTrueFalse:
		sb.WriteString(`Each question is true/false. Fields: "id", "question", "correctAnswer" (true or false), "explanation", "concept".` + "\n")
	case llmtext.QuestionFill:
		sb.WriteString(`Each question is fill-in-the-blank with the blank marked as _____. Fields: "id", "question", "correctText" (the missing words), "explanation", "concept".` + "\n")
	case llmtext.QuestionEssay:
		sb.WriteString(`Each question is an open theory question. Fields: "id", "question", "correctText" (a model answer), "explanation", "concept", "guidance".` + "\n")
	default:
		sb.WriteString(`Each question is multiple choice with exactly 4 options. Fields: "id", "question", "options" (4 strings), "correctAnswer" (0-based index), "explanation", "concept".` + "\n")
	}

	sb.WriteString("\nStudy material:\n")
	sb.WriteString(material)
	return sb.String()
}

func buildSummaryPrompt(material, length, format string, includeKeyTerms bool) string {
	depth := map[string]string{
		"brief":         "a short overview in 2-3 paragraphs",
		"detailed":      "a thorough summary covering each major topic",
		"comprehensive": "an in-depth summary organized into named sections",
	}[length]
	if depth == "" {
		depth = "a thorough summary covering each major topic"
	}

	layout := "flowing paragraphs"
	if format == "bullets" {
		layout = "concise bullet points"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the study material below as %s, written as %s.\n", depth, layout)
	sb.WriteString(`Respond with a JSON object: "summary" (string, or an object of section name to content for comprehensive summaries), "takeaways" (array of strings)`)
	if includeKeyTerms {
		sb.WriteString(`, "keyTerms" (array of {"term", "definition"})`)
	}
	sb.WriteString(".\n\nStudy material:\n")
	sb.WriteString(material)
	return sb.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
