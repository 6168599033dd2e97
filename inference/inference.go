// Package inference declares the model contracts the generation pipeline
// depends on and ships two backends for them: a JSON HTTP model server and
// an OpenAI-compatible chat model.
package inference

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Summary is the summarizer output: an abstractive summary plus the
// sentence-level decomposition of the original text.
type Summary struct {
	Text      string   `json:"summary"`
	Sentences []string `json:"sentences"`
}

// AnswerSet is the correct answer for one keyword together with the full
// list of choices (correct answer and distractors) in presentation order.
type AnswerSet struct {
	Correct string   `json:"correct"`
	Choices []string `json:"choices"`
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (Summary, error)
}

// KeywordExtractor picks candidate answer keywords by comparing the
// summary against the original sentences.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, sentences []string, summary string) ([]string, error)
}

// AnswerGenerator returns one AnswerSet per keyword it keeps. Keywords it
// cannot build distractors for are dropped.
type AnswerGenerator interface {
	GenerateAnswers(ctx context.Context, keywords []string) ([]AnswerSet, error)
}

type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, summary, answer string) (string, error)
}

// Models bundles the four collaborators of a pipeline run.
type Models struct {
	Summarizer Summarizer
	Keywords   KeywordExtractor
	Answers    AnswerGenerator
	Questions  QuestionGenerator
}

// Backend implements every model contract.
type Backend interface {
	Summarizer
	KeywordExtractor
	AnswerGenerator
	QuestionGenerator
}

// FromBackend uses one backend for all four models.
func FromBackend(b Backend) Models {
	return Models{Summarizer: b, Keywords: b, Answers: b, Questions: b}
}

// Options selects and configures a Backend.
type Options struct {
	Backend string // http or openai
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func New(opts Options) (Models, error) {
	switch strings.ToLower(opts.Backend) {
	case "http":
		return FromBackend(NewHTTPBackend(opts.BaseURL, opts.Timeout)), nil
	case "openai":
		return FromBackend(NewOpenAIBackend(opts.APIKey, opts.BaseURL, opts.Model)), nil
	}
	return Models{}, fmt.Errorf("unknown inference backend %q", opts.Backend)
}
