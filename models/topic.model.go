package models

import (
	"time"

	"gorm.io/gorm"
)

// Topic groups the questions one user generated under a name.
type Topic struct {
	gorm.Model
	UserID               string     `gorm:"size:36;not null;uniqueIndex:idx_topic_owner_name" json:"uid"`
	Name                 string     `gorm:"not null;uniqueIndex:idx_topic_owner_name" json:"name"`
	GenerationInProgress bool       `gorm:"default:false;index" json:"generationInProgress"`
	GenerationStartedAt  *time.Time `json:"generationStartedAt,omitempty"`
}
