package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rating is one user's score for a question. A question holds at most one
// Rating per UserID.
type Rating struct {
	UserID string `json:"uid"`
	Rate   int    `json:"rate"`
}

type Comment struct {
	UserID string    `json:"uid"`
	Text   string    `json:"comment"`
	Time   time.Time `json:"time"`
}

// Question is addressed by (UserID, TopicName, ID). CorrectChoice is always
// one of Choices.
type Question struct {
	ID            string                       `gorm:"primaryKey;size:36" json:"id"`
	UserID        string                       `gorm:"size:36;not null;index:idx_question_topic,priority:1" json:"uid"`
	TopicName     string                       `gorm:"not null;index:idx_question_topic,priority:2" json:"name"`
	Position      int                          `gorm:"not null;index:idx_question_topic,priority:3" json:"position"`
	Text          string                       `gorm:"type:text;not null" json:"text"`
	Choices       datatypes.JSONSlice[string]  `json:"choices"`
	CorrectChoice string                       `gorm:"type:text;not null" json:"correctChoice"`
	Rating        datatypes.JSONSlice[Rating]  `json:"rating"`
	AverageRating float64                      `json:"averageRating"`
	Comments      datatypes.JSONSlice[Comment] `json:"comments"`
	Context       string                       `gorm:"type:text" json:"context"`
	Version       int                          `gorm:"not null" json:"version"`
	CreatedAt     time.Time                    `json:"createdAt"`
	UpdatedAt     time.Time                    `json:"updatedAt"`
}

// HasCorrectChoice reports whether CorrectChoice is one of Choices.
func (q *Question) HasCorrectChoice() bool {
	return q.CorrectChoiceIndex() >= 0
}

// CorrectChoiceIndex returns the first position of CorrectChoice in Choices,
// or -1.
func (q *Question) CorrectChoiceIndex() int {
	for i, c := range q.Choices {
		if c == q.CorrectChoice {
			return i
		}
	}
	return -1
}
