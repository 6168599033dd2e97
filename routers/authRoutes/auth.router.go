package authRoutes

import (
	authControllers "quizgen/controllers/auth"
	authValidators "quizgen/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ac *authControllers.AuthController) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidators.Register(), ac.Register)
	authGroup.Post("/login", authValidators.Login(), ac.Login)
}
