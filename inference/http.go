package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPBackend talks to a model server exposing one JSON endpoint per model:
//
//	POST /summarize  {context}            -> {summary, sentences}
//	POST /keywords   {sentences, summary} -> {keywords}
//	POST /answers    {keywords}           -> {answers: [{correct, choices}]}
//	POST /question   {context, answer}    -> {question}
type HTTPBackend struct {
	client *resty.Client
}

func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPBackend{client: client}
}

type serverError struct {
	Detail string `json:"detail"`
}

func (h *HTTPBackend) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&serverError{}).
		Post(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if resp.IsError() {
		detail := resp.String()
		if e, ok := resp.Error().(*serverError); ok && e.Detail != "" {
			detail = e.Detail
		}
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode(), detail)
	}
	return nil
}

func (h *HTTPBackend) Summarize(ctx context.Context, text string) (Summary, error) {
	var out Summary
	err := h.post(ctx, "/summarize", map[string]string{"context": text}, &out)
	return out, err
}

func (h *HTTPBackend) ExtractKeywords(ctx context.Context, sentences []string, summary string) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	err := h.post(ctx, "/keywords", map[string]interface{}{
		"sentences": sentences,
		"summary":   summary,
	}, &out)
	return out.Keywords, err
}

func (h *HTTPBackend) GenerateAnswers(ctx context.Context, keywords []string) ([]AnswerSet, error) {
	var out struct {
		Answers []AnswerSet `json:"answers"`
	}
	err := h.post(ctx, "/answers", map[string]interface{}{"keywords": keywords}, &out)
	return out.Answers, err
}

func (h *HTTPBackend) GenerateQuestion(ctx context.Context, summary, answer string) (string, error) {
	var out struct {
		Question string `json:"question"`
	}
	if err := h.post(ctx, "/question", map[string]string{
		"context": summary,
		"answer":  answer,
	}, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", fmt.Errorf("/question: empty question for answer %q", answer)
	}
	return out.Question, nil
}
