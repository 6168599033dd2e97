package translate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// LLMTranslator asks an OpenAI-compatible chat model for a translation.
type LLMTranslator struct {
	client *openai.Client
	model  string
}

func NewLLMTranslator(apiKey, baseURL, model string) *LLMTranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMTranslator{client: openai.NewClientWithConfig(cfg), model: model}
}

func (l *LLMTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" || sourceLang == targetLang {
		return text, nil
	}

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("Translate the user's text from language %q to language %q. "+
					"Reply with the translation only, without quotes or commentary.", sourceLang, targetLang),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from translation model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
