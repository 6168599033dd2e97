package quiz

import (
	"context"
	"strings"
	"time"

	"quizgen/apperr"
	"quizgen/models"
)

// AppendComment adds a comment at the end of q.Comments. The timestamp never
// precedes the one of the previous comment.
func AppendComment(q *models.Question, userID, text string, now time.Time) {
	if n := len(q.Comments); n > 0 && now.Before(q.Comments[n-1].Time) {
		now = q.Comments[n-1].Time
	}
	q.Comments = append(q.Comments, models.Comment{UserID: userID, Text: text, Time: now})
}

// Comment appends a comment by author to the stored question and returns the
// updated record.
func (s *Service) Comment(ctx context.Context, userID, topicName, questionID, author, text string) (*models.Question, error) {
	if author == "" {
		return nil, apperr.Validation("Comment uid is required!")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("Comment must not be empty!")
	}

	return s.update(ctx, userID, topicName, questionID, func(q *models.Question) map[string]interface{} {
		AppendComment(q, author, text, s.now().UTC())
		return map[string]interface{}{"comments": q.Comments}
	})
}
