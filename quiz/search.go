package quiz

import (
	"context"
	"strings"

	"quizgen/apperr"
	"quizgen/models"
)

type SearchResult struct {
	UserID        string          `json:"uid"`
	TopicName     string          `json:"name"`
	QuestionID    string          `json:"id"`
	Text          string          `json:"text"`
	Choices       []string        `json:"choices"`
	CorrectChoice string          `json:"correctChoice"`
	Rating        []models.Rating `json:"rating,omitempty"`
}

// Search scans every question of every user and returns those whose stem
// contains keyword, ignoring case. Results follow store enumeration order.
func (s *Service) Search(ctx context.Context, keyword string) ([]SearchResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, apperr.Validation("Keyword is required!")
	}
	needle := strings.ToLower(keyword)

	results := []SearchResult{}
	err := s.store.EachQuestion(ctx, func(q models.Question) error {
		if !strings.Contains(strings.ToLower(q.Text), needle) {
			return nil
		}
		r := SearchResult{
			UserID:        q.UserID,
			TopicName:     q.TopicName,
			QuestionID:    q.ID,
			Text:          q.Text,
			Choices:       q.Choices,
			CorrectChoice: q.CorrectChoice,
		}
		if len(q.Rating) > 0 {
			r.Rating = q.Rating
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
