package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"nusakalaAPI/internal/metrics"
	"nusakalaAPI/internal/translate"
	"nusakalaAPI/internal/types/translation"
)

const maxTranslateChars = 5000

// Translator is the machine translation backend.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (*translate.Result, error)
}

// supportedLanguages maps Google Translate codes to the BCP 47 tag used for
// display names. Google still uses "jw" for Javanese.
var supportedLanguages = []struct {
	code string
	tag  language.Tag
}{
	{"id", language.Indonesian},
	{"en", language.English},
	{"jw", language.MustParse("jv")},
	{"su", language.MustParse("su")},
	{"ms", language.Malay},
	{"ja", language.Japanese},
	{"ko", language.Korean},
	{"zh-CN", language.SimplifiedChinese},
	{"zh-TW", language.TraditionalChinese},
	{"ar", language.Arabic},
	{"nl", language.Dutch},
	{"fr", language.French},
	{"de", language.German},
	{"es", language.Spanish},
}

// NormalizeLanguage maps a user supplied tag ("id-ID", "in", "zh-Hant",
// "jv") to the code Google Translate expects.
func NormalizeLanguage(code string) (string, error) {
	code = strings.TrimSpace(code)
	if strings.EqualFold(code, "jw") {
		return "jw", nil
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("%w: invalid language %q", ErrInvalidInput, code)
	}

	base, _ := tag.Base()
	switch base.String() {
	case "jv":
		return "jw", nil
	case "zh":
		script, _ := tag.Script()
		region, _ := tag.Region()
		if script.String() == "Hant" || region.String() == "TW" || region.String() == "HK" {
			return "zh-TW", nil
		}
		return "zh-CN", nil
	}
	return base.String(), nil
}

func isSupportedLanguage(code string) bool {
	for _, l := range supportedLanguages {
		if l.code == code {
			return true
		}
	}
	return false
}

type TranslationService struct {
	translator Translator
	history    TranslationHistoryStore
	now        func() time.Time
}

// NewTranslationService builds the service. translator may be nil when no
// API key is configured; Translate then returns ErrUnavailable.
func NewTranslationService(translator Translator, history TranslationHistoryStore) *TranslationService {
	return &TranslationService{
		translator: translator,
		history:    history,
		now:        time.Now,
	}
}

func (s *TranslationService) Translate(ctx context.Context, userID string, req *translation.TranslateRequest) (*translation.HistoryEntry, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxTranslateChars {
		return nil, fmt.Errorf("%w: text must be at most %d characters", ErrInvalidInput, maxTranslateChars)
	}

	if req.Target == "" {
		return nil, fmt.Errorf("%w: target language is required", ErrInvalidInput)
	}
	target, err := NormalizeLanguage(req.Target)
	if err != nil {
		return nil, err
	}
	if !isSupportedLanguage(target) {
		return nil, fmt.Errorf("%w: unsupported target language %q", ErrInvalidInput, req.Target)
	}

	source := ""
	if req.Source != "" && !strings.EqualFold(req.Source, "auto") {
		if source, err = NormalizeLanguage(req.Source); err != nil {
			return nil, err
		}
		if !isSupportedLanguage(source) {
			return nil, fmt.Errorf("%w: unsupported source language %q", ErrInvalidInput, req.Source)
		}
	}

	if s.translator == nil {
		return nil, ErrUnavailable
	}

	res, err := s.translator.Translate(ctx, text, source, target)
	metrics.ObserveUpstream("translate", err)
	if err != nil {
		return nil, fmt.Errorf("failed to translate: %w", err)
	}

	entry := &translation.HistoryEntry{
		ID:             uuid.NewString(),
		SourceText:     text,
		TranslatedText: res.Text,
		Source:         res.DetectedSource,
		Target:         target,
		CreatedAt:      s.now(),
	}

	if err := s.history.Push(ctx, userID, entry); err != nil {
		log.Printf("Translate: failed to store history for %s: %v", userID, err)
	}
	return entry, nil
}

// Languages lists the supported languages with English names.
func (s *TranslationService) Languages() []translation.Language {
	namer := display.English.Tags()
	out := make([]translation.Language, 0, len(supportedLanguages))
	for _, l := range supportedLanguages {
		out = append(out, translation.Language{Code: l.code, Name: namer.Name(l.tag)})
	}
	return out
}

func (s *TranslationService) History(ctx context.Context, userID string) ([]*translation.HistoryEntry, error) {
	return s.history.List(ctx, userID)
}

func (s *TranslationService) ClearHistory(ctx context.Context, userID string) error {
	return s.history.Clear(ctx, userID)
}
