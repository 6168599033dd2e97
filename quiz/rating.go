package quiz

import (
	"context"

	"quizgen/apperr"
	"quizgen/models"
)

// ApplyRating records rate for userID on q. An existing entry for the user
// is overwritten in place, otherwise a new one is appended. AverageRating is
// recomputed from the resulting entries.
func ApplyRating(q *models.Question, userID string, rate int) {
	found := false
	for i := range q.Rating {
		if q.Rating[i].UserID == userID {
			q.Rating[i].Rate = rate
			found = true
			break
		}
	}
	if !found {
		q.Rating = append(q.Rating, models.Rating{UserID: userID, Rate: rate})
	}
	q.AverageRating = AverageRating(q.Rating)
}

// AverageRating is the mean rate, or 0 for no ratings.
func AverageRating(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rate
	}
	return float64(sum) / float64(len(ratings))
}

// Rate applies a rating by rater to the stored question and returns the
// updated record.
func (s *Service) Rate(ctx context.Context, userID, topicName, questionID, rater string, rate int) (*models.Question, error) {
	if rater == "" {
		return nil, apperr.Validation("Rating uid is required!")
	}

	return s.update(ctx, userID, topicName, questionID, func(q *models.Question) map[string]interface{} {
		ApplyRating(q, rater, rate)
		return map[string]interface{}{
			"rating":         q.Rating,
			"average_rating": q.AverageRating,
		}
	})
}
