package main

import (
	"log"

	"quizgen/config"
	authController "quizgen/controllers/auth"
	quizController "quizgen/controllers/quiz"
	"quizgen/database"
	"quizgen/inference"
	"quizgen/middleware"
	"quizgen/pipeline"
	"quizgen/quiz"
	authRoutes "quizgen/routers/authRoutes"
	quizRoutes "quizgen/routers/quizRoutes"
	"quizgen/translate"
	"quizgen/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	pipeline.SetVerbose(cfg.LogVerbose)

	db := database.ConnectDb(cfg)
	store := database.NewStore(db)

	translator, err := translate.New(translate.Options{
		Provider: cfg.Translator,
		BaseURL:  cfg.TranslateURL,
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("Failed to set up translator: %v", err)
	}

	inferenceURL := cfg.InferenceURL
	if cfg.InferenceBackend == "openai" {
		inferenceURL = cfg.OpenAIBaseURL
	}
	models, err := inference.New(inference.Options{
		Backend: cfg.InferenceBackend,
		BaseURL: inferenceURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to set up inference backend: %v", err)
	}

	generator := pipeline.New(translator, models, store, cfg.TranslateSourceLang, cfg.TranslateTargetLang).
		WithTimeout(cfg.GenerationTimeout)
	auth := middleware.NewJWTAuth(cfg.JWTKey, cfg.JWTTTL)
	mailer := utils.NewMailer(cfg.SendGridAPIKey, cfg.EmailSender)

	if _, err := utils.InitializeGenerationSweeper(store, cfg.SweeperSchedule, cfg.GenerationStaleAfter); err != nil {
		log.Fatalf("Failed to start generation sweeper: %v", err)
	}

	app := fiber.New()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: "GET,POST",                   // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authController.New(store, auth, mailer, cfg.SaltRound))
	quizRoutes.SetupQuizRoutes(app, auth, quizController.New(generator, quiz.NewService(store), store))

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
