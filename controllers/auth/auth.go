package authController

import (
	"context"
	"log"

	"quizgen/apperr"
	"quizgen/middleware"
	"quizgen/models"
	authValidator "quizgen/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the user part of the store the auth endpoints need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// WelcomeMailer is notified after a successful registration.
type WelcomeMailer interface {
	SendWelcomeEmail(email, username string)
}

type AuthController struct {
	users     UserStore
	auth      *middleware.JWTAuth
	mailer    WelcomeMailer
	saltRound int
}

func New(users UserStore, auth *middleware.JWTAuth, mailer WelcomeMailer, saltRound int) *AuthController {
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	return &AuthController{users: users, auth: auth, mailer: mailer, saltRound: saltRound}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.RegisterRequest)

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ac.saltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		UID:      uuid.NewString(),
		Email:    reqData.Email,
		Username: reqData.Username,
		Password: string(hashedPassword),
	}

	if err := ac.users.CreateUser(c.UserContext(), &newUser); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if ac.mailer != nil {
		ac.mailer.SendWelcomeEmail(newUser.Email, newUser.Username)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"uid":      newUser.UID,
		"email":    newUser.Email,
		"username": newUser.Username,
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLogin").(*authValidator.LoginRequest)

	user, err := ac.users.FindUserByIdentifier(c.UserContext(), reqData.Identifier)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	// Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	token, err := ac.auth.GenerateJWT(user.UID, user.Username, user.Email)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"uid":   user.UID,
	})
}
