package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizgen/apperr"
	"quizgen/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTopicNotFound    = apperr.NotFound("Topic not found")
	ErrQuestionNotFound = apperr.NotFound("Question not found")
	ErrVersionConflict  = apperr.Conflict("Question was modified concurrently, please retry")
)

// GormStore is the hierarchical question store keyed by
// (userId, topicName, questionId).
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// topicKey is the unique (user_id, name) index topics are upserted on.
var topicKey = []clause.Column{{Name: "user_id"}, {Name: "name"}}

// SetGenerationStatus creates the topic on first use and records whether a
// pipeline run is executing for it. Concurrent first runs for the same topic
// both succeed; the last write wins.
func (s *GormStore) SetGenerationStatus(ctx context.Context, userID, topicName string, inProgress bool) error {
	var startedAt *time.Time
	if inProgress {
		now := time.Now()
		startedAt = &now
	}

	topic := models.Topic{
		UserID:               userID,
		Name:                 topicName,
		GenerationInProgress: inProgress,
		GenerationStartedAt:  startedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   topicKey,
		DoUpdates: clause.AssignmentColumns([]string{"generation_in_progress", "generation_started_at", "updated_at"}),
	}).Create(&topic).Error
}

func (s *GormStore) GetTopic(ctx context.Context, userID, topicName string) (*models.Topic, error) {
	var topic models.Topic
	err := s.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, topicName).First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// SaveQuestions appends questions after the topic's existing ones and returns
// the persisted records in order.
func (s *GormStore) SaveQuestions(ctx context.Context, userID, topicName string, questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return []models.Question{}, nil
	}

	saved := make([]models.Question, len(questions))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{Columns: topicKey, DoNothing: true}).
			Create(&models.Topic{UserID: userID, Name: topicName}).Error; err != nil {
			return err
		}
		// the topic row lock serializes appends to the same topic
		var topic models.Topic
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND name = ?", userID, topicName).
			First(&topic).Error; err != nil {
			return err
		}

		var next struct{ Max *int }
		if err := tx.Model(&models.Question{}).
			Select("MAX(position) AS max").
			Where("user_id = ? AND topic_name = ?", userID, topicName).
			Scan(&next).Error; err != nil {
			return err
		}
		position := 0
		if next.Max != nil {
			position = *next.Max + 1
		}

		for i, q := range questions {
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			q.UserID = userID
			q.TopicName = topicName
			q.Position = position + i
			q.Version = 1
			if q.Rating == nil {
				q.Rating = datatypes.JSONSlice[models.Rating]{}
			}
			if q.Comments == nil {
				q.Comments = datatypes.JSONSlice[models.Comment]{}
			}
			saved[i] = q
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListQuestions returns the topic's questions in insertion order.
func (s *GormStore) ListQuestions(ctx context.Context, userID, topicName string) ([]models.Question, error) {
	if _, err := s.GetTopic(ctx, userID, topicName); err != nil {
		return nil, err
	}

	var questions []models.Question
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND topic_name = ?", userID, topicName).
		Order("position asc").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *GormStore) GetQuestion(ctx context.Context, userID, topicName, questionID string) (*models.Question, error) {
	var q models.Question
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND topic_name = ?", questionID, userID, topicName).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion writes fields only if the stored version still equals
// version, bumping it by one. ErrVersionConflict means another writer got
// there first.
func (s *GormStore) UpdateQuestion(ctx context.Context, questionID string, version int, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = version + 1

	res := s.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND version = ?", questionID, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrQuestionNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// DeleteQuestion removes one question and reports whether it existed. The
// topic record is left untouched.
func (s *GormStore) DeleteQuestion(ctx context.Context, userID, topicName, questionID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND topic_name = ?", questionID, userID, topicName).
		Delete(&models.Question{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EachQuestion streams every stored question ordered by user, topic and
// position. Iteration stops at the first error returned by fn.
func (s *GormStore) EachQuestion(ctx context.Context, fn func(models.Question) error) error {
	rows, err := s.db.WithContext(ctx).Model(&models.Question{}).
		Order("user_id asc, topic_name asc, position asc").
		Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var q models.Question
		if err := s.db.ScanRows(rows, &q); err != nil {
			return fmt.Errorf("scan question: %w", err)
		}
		if err := fn(q); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ClearStaleGenerations resets flags of runs that started before cutoff.
func (s *GormStore) ClearStaleGenerations(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Topic{}).
		Where("generation_in_progress = ? AND (generation_started_at IS NULL OR generation_started_at < ?)", true, cutoff).
		Updates(map[string]interface{}{
			"generation_in_progress": false,
			"generation_started_at":  nil,
		})
	return res.RowsAffected, res.Error
}
