// Package translate wraps the Google Cloud Translation v2 API.
package translate

import (
	"context"
	"fmt"
	"html"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"
)

type Result struct {
	Text           string
	DetectedSource string
}

type GoogleTranslator struct {
	svc *translatev2.Service
}

func NewGoogleTranslator(ctx context.Context, apiKey string) (*GoogleTranslator, error) {
	svc, err := translatev2.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

// Translate translates text into target. An empty source lets Google detect it.
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (*Result, error) {
	call := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx)
	if source != "" {
		call = call.Source(source)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("google translate failed: %w", err)
	}
	if len(resp.Translations) == 0 {
		return nil, fmt.Errorf("google translate returned no translations")
	}

	t := resp.Translations[0]
	detected := t.DetectedSourceLanguage
	if detected == "" {
		detected = source
	}
	return &Result{
		Text:           html.UnescapeString(t.TranslatedText),
		DetectedSource: detected,
	}, nil
}
