package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	UID      string `gorm:"size:36;uniqueIndex;not null" json:"uid"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
}
