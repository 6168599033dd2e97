// Package quiz holds the operations applied to a topic's persisted questions:
// export, duplicate detection, rating, commenting and search.
package quiz

import (
	"context"
	"log"
	"time"

	"quizgen/apperr"
	"quizgen/models"
)

const maxUpdateAttempts = 3

// Store is the part of the question store the transforms read and update.
type Store interface {
	ListQuestions(ctx context.Context, userID, topicName string) ([]models.Question, error)
	GetQuestion(ctx context.Context, userID, topicName, questionID string) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID string, version int, fields map[string]interface{}) error
	DeleteQuestion(ctx context.Context, userID, topicName, questionID string) (bool, error)
	EachQuestion(ctx context.Context, fn func(models.Question) error) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Questions returns a topic's questions in insertion order.
func (s *Service) Questions(ctx context.Context, userID, topicName string) ([]models.Question, error) {
	return s.store.ListQuestions(ctx, userID, topicName)
}

// Delete removes one question. Deleting a missing question is not an error.
func (s *Service) Delete(ctx context.Context, userID, topicName, questionID string) error {
	existed, err := s.store.DeleteQuestion(ctx, userID, topicName, questionID)
	if err != nil {
		return err
	}
	if !existed {
		log.Printf("quiz: delete of unknown question %s/%s/%s", userID, topicName, questionID)
	}
	return nil
}

// mutateFunc changes q in place and returns the columns to write.
type mutateFunc func(q *models.Question) map[string]interface{}

// update runs a read-modify-write cycle guarded by the question version,
// re-reading when another writer won the race.
func (s *Service) update(ctx context.Context, userID, topicName, questionID string, mutate mutateFunc) (*models.Question, error) {
	var lastErr error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		q, err := s.store.GetQuestion(ctx, userID, topicName, questionID)
		if err != nil {
			return nil, err
		}

		fields := mutate(q)
		err = s.store.UpdateQuestion(ctx, q.ID, q.Version, fields)
		if err == nil {
			q.Version++
			return q, nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		lastErr = err
		log.Printf("quiz: version conflict on question %s, attempt %d/%d", questionID, attempt, maxUpdateAttempts)
	}
	return nil, lastErr
}
