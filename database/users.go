package database

import (
	"context"
	"errors"
	"strings"

	"quizgen/apperr"
	"quizgen/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = apperr.NotFound("User not found")
	ErrEmailTaken     = apperr.Uniqueness("Email is already registered!")
	ErrUsernameTaken  = apperr.Uniqueness("Username is already taken!")
	errDuplicatedUser = apperr.Uniqueness("Email or username is already registered!")
)

// CreateUser inserts a new user after checking email and username
// uniqueness. The unique indexes catch registrations racing past the checks.
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	db := s.db.WithContext(ctx)

	if err := db.Where("email = ?", user.Email).First(&models.User{}).Error; err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := db.Where("username = ?", user.Username).First(&models.User{}).Error; err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errDuplicatedUser
		}
		return err
	}
	return nil
}

// FindUserByIdentifier looks the user up by email (case-insensitive) or
// username. An email match wins over a username match.
func (s *GormStore) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	email := strings.ToLower(identifier)

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, identifier).
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return &users[0], nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
