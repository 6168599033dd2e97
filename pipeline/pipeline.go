// Package pipeline turns a text passage into a persisted question set.
//
// A run translates the passage into the working language, marks the topic as
// generating, drives the model chain (summarize, extract keywords, generate
// answers, generate question stems), clears the mark and appends the
// assembled questions to the topic. Every step is sequential.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"quizgen/apperr"
	"quizgen/inference"
	"quizgen/models"
	"quizgen/translate"
)

// ChoiceCount is the number of choices every generated question carries.
const ChoiceCount = 4

// Store is the part of the question store a run writes to.
type Store interface {
	SetGenerationStatus(ctx context.Context, userID, topicName string, inProgress bool) error
	SaveQuestions(ctx context.Context, userID, topicName string, questions []models.Question) ([]models.Question, error)
}

type Request struct {
	Context   string
	UserID    string
	TopicName string
}

type Pipeline struct {
	translator translate.Translator
	models     inference.Models
	store      Store
	sourceLang string
	targetLang string
	timeout    time.Duration
}

func New(translator translate.Translator, m inference.Models, store Store, sourceLang, targetLang string) *Pipeline {
	return &Pipeline{
		translator: translator,
		models:     m,
		store:      store,
		sourceLang: sourceLang,
		targetLang: targetLang,
	}
}

// WithTimeout bounds every run to d, so a topic's in-progress flag is never
// older than d while its run is alive. Zero means no bound.
func (p *Pipeline) WithTimeout(d time.Duration) *Pipeline {
	p.timeout = d
	return p
}

// Run executes one pipeline run and returns the persisted questions. On any
// failure nothing is saved; the in-progress flag is cleared on every exit path
// once it has been set.
func (p *Pipeline) Run(ctx context.Context, req Request) ([]models.Question, error) {
	if strings.TrimSpace(req.Context) == "" {
		return nil, apperr.Validation("Context is required!")
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.TopicName) == "" {
		return nil, apperr.Validation("uid and name are required!")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.translator.Translate(ctx, req.Context, p.sourceLang, p.targetLang)
	if err != nil {
		return nil, apperr.Collaborator("translate context", err)
	}
	topic, err := p.translator.Translate(ctx, req.TopicName, p.sourceLang, p.targetLang)
	if err != nil {
		return nil, apperr.Collaborator("translate topic name", err)
	}
	if strings.TrimSpace(topic) == "" {
		return nil, apperr.Collaborator("translate topic name", fmt.Errorf("empty translation of %q", req.TopicName))
	}

	if err := p.store.SetGenerationStatus(ctx, req.UserID, topic, true); err != nil {
		return nil, apperr.Collaborator("mark generation started", err)
	}
	verboseLog("pipeline: generation started for %s/%s", req.UserID, topic)

	cleared := false
	defer func() {
		if cleared {
			return
		}
		// the request context may already be cancelled
		if err := p.store.SetGenerationStatus(context.WithoutCancel(ctx), req.UserID, topic, false); err != nil {
			log.Printf("pipeline: failed to clear generation flag for %s/%s: %v", req.UserID, topic, err)
		}
	}()

	questions, err := p.generate(ctx, text)
	if err != nil {
		log.Printf("pipeline: run for %s/%s aborted: %v", req.UserID, topic, err)
		return nil, err
	}

	if err := p.store.SetGenerationStatus(ctx, req.UserID, topic, false); err != nil {
		return nil, apperr.Collaborator("mark generation finished", err)
	}
	cleared = true

	saved, err := p.store.SaveQuestions(ctx, req.UserID, topic, questions)
	if err != nil {
		return nil, apperr.Collaborator("save questions", err)
	}

	log.Printf("pipeline: generated %d questions for %s/%s", len(saved), req.UserID, topic)
	return saved, nil
}

// generate runs the model chain over the translated passage.
func (p *Pipeline) generate(ctx context.Context, text string) ([]models.Question, error) {
	summary, err := p.models.Summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, apperr.Collaborator("summarize", err)
	}
	verboseLog("pipeline: summary has %d chars, %d sentences", len(summary.Text), len(summary.Sentences))

	keywords, err := p.models.Keywords.ExtractKeywords(ctx, summary.Sentences, summary.Text)
	if err != nil {
		return nil, apperr.Collaborator("extract keywords", err)
	}
	verboseLog("pipeline: %d keywords", len(keywords))
	if len(keywords) == 0 {
		return []models.Question{}, nil
	}

	answers, err := p.models.Answers.GenerateAnswers(ctx, keywords)
	if err != nil {
		return nil, apperr.Collaborator("generate answers", err)
	}
	for i, a := range answers {
		if err := checkAnswerSet(a); err != nil {
			return nil, apperr.Collaborator("generate answers", fmt.Errorf("answer set %d: %w", i, err))
		}
	}

	questions := make([]models.Question, 0, len(answers))
	for _, a := range answers {
		stem, err := p.models.Questions.GenerateQuestion(ctx, summary.Text, a.Correct)
		if err != nil {
			return nil, apperr.Collaborator("generate question", err)
		}
		questions = append(questions, models.Question{
			Text:          stem,
			Choices:       append([]string(nil), a.Choices...),
			CorrectChoice: a.Correct,
			Context:       text,
		})
	}
	return questions, nil
}

func checkAnswerSet(a inference.AnswerSet) error {
	if len(a.Choices) != ChoiceCount {
		return fmt.Errorf("got %d choices for %q, want %d", len(a.Choices), a.Correct, ChoiceCount)
	}
	for _, c := range a.Choices {
		if c == a.Correct {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not among the choices", a.Correct)
}

var sentenceDelimiters = regexp.MustCompile(`[.!?]`)

// SplitSentences splits text on '.', '!' and '?' and drops blank fragments.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range sentenceDelimiters.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RunSplit runs the pipeline once per sentence of req.Context, in order, and
// concatenates the results. Runs already finished stay persisted when a later
// sentence fails.
func (p *Pipeline) RunSplit(ctx context.Context, req Request) ([]models.Question, error) {
	sentences := SplitSentences(req.Context)
	if len(sentences) == 0 {
		return nil, apperr.Validation("Context contains no sentences!")
	}

	all := make([]models.Question, 0)
	for i, sentence := range sentences {
		questions, err := p.Run(ctx, Request{Context: sentence, UserID: req.UserID, TopicName: req.TopicName})
		if err != nil {
			return nil, fmt.Errorf("sentence %d of %d: %w", i+1, len(sentences), err)
		}
		all = append(all, questions...)
	}
	return all, nil
}
