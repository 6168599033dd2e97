// Package translate adapts machine translation services to the single call
// the pipeline needs.
package translate

import (
	"context"
	"fmt"
	"strings"
)

type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Passthrough returns the text unchanged. Used when the input already is in
// the working language.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// Options selects and configures a Translator.
type Options struct {
	Provider string // google, openai or none
	BaseURL  string
	APIKey   string
	Model    string
}

func New(opts Options) (Translator, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "none":
		return Passthrough{}, nil
	case "google":
		return NewGoogleTranslator(opts.BaseURL), nil
	case "openai":
		return NewLLMTranslator(opts.APIKey, opts.BaseURL, opts.Model), nil
	}
	return nil, fmt.Errorf("unknown translator %q", opts.Provider)
}
