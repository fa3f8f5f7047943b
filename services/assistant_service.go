package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"nusakalaAPI/internal/gemini"
	"nusakalaAPI/internal/metrics"
	"nusakalaAPI/internal/province"
)

const (
	maxQuestionChars = 2000
	maxHistoryTurns  = 10
)

const assistantInstruction = `You are Kala, the NusaKala cultural guide. Answer questions about
Indonesian culture, history, cuisine, traditional arts, festivals and travel
etiquette. Reply in the language of the question. Keep answers under 200
words. If a question is unrelated to Indonesia, politely steer the user back
to Indonesian culture.`

type TextGenerator interface {
	Generate(ctx context.Context, system string, turns []gemini.Turn) (string, error)
}

type AskRequest struct {
	Question string        `json:"question"`
	Province string        `json:"province,omitempty"`
	History  []gemini.Turn `json:"history,omitempty"`
}

type AskResponse struct {
	Answer   string             `json:"answer"`
	Province *province.Province `json:"province,omitempty"`
}

type AssistantService struct {
	generator TextGenerator
	provinces *province.Catalog
}

// NewAssistantService builds the service. A nil generator makes Ask return
// ErrUnavailable.
func NewAssistantService(generator TextGenerator, provinces *province.Catalog) *AssistantService {
	return &AssistantService{generator: generator, provinces: provinces}
}

func (s *AssistantService) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(question) > maxQuestionChars {
		return nil, fmt.Errorf("%w: question must be at most %d characters", ErrInvalidInput, maxQuestionChars)
	}

	system := assistantInstruction
	var focus *province.Province
	if req.Province != "" {
		p, ok := s.provinces.Lookup(req.Province)
		if !ok {
			return nil, fmt.Errorf("%w: unknown province %q", ErrInvalidInput, req.Province)
		}
		focus = &p
		system += fmt.Sprintf("\n\nThe user is exploring %s (capital %s, %s). Known highlights: %s.",
			p.Name, p.Capital, p.Island, strings.Join(p.Highlights, ", "))
	}

	if s.generator == nil {
		return nil, ErrUnavailable
	}

	turns := append(TrimHistory(req.History), gemini.Turn{Role: "user", Text: question})

	answer, err := s.generator.Generate(ctx, system, turns)
	metrics.ObserveUpstream("gemini", err)
	if err != nil {
		return nil, fmt.Errorf("failed to ask assistant: %w", err)
	}

	return &AskResponse{Answer: answer, Province: focus}, nil
}

// TrimHistory drops empty or unknown turns and keeps the last ten.
func TrimHistory(history []gemini.Turn) []gemini.Turn {
	kept := make([]gemini.Turn, 0, len(history))
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" || (t.Role != "user" && t.Role != "model") {
			continue
		}
		kept = append(kept, gemini.Turn{Role: t.Role, Text: text})
	}
	if len(kept) > maxHistoryTurns {
		kept = kept[len(kept)-maxHistoryTurns:]
	}
	return kept
}
