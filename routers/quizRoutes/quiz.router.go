package quizRoutes

import (
	quizControllers "quizgen/controllers/quiz"
	"quizgen/middleware"
	quizValidators "quizgen/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(app *fiber.App, auth *middleware.JWTAuth, qc *quizControllers.QuizController) {
	quizGroup := app.Group("/api", auth.JWTMiddleware)

	quizGroup.Post("/generate-single", quizValidators.Generate(), qc.GenerateSingle)
	quizGroup.Post("/generate-split", quizValidators.Generate(), qc.GenerateSplit)
	quizGroup.Post("/export-aiken", quizValidators.Topic(), qc.ExportAiken)
	quizGroup.Post("/export-moodle", quizValidators.Topic(), qc.ExportMoodle)
	quizGroup.Post("/find-duplicates", quizValidators.Topic(), qc.FindDuplicates)
	quizGroup.Post("/rate-question", quizValidators.Rate(), qc.RateQuestion)
	quizGroup.Post("/comment-question", quizValidators.Comment(), qc.CommentQuestion)
	quizGroup.Get("/search-questions", quizValidators.Search(), qc.SearchQuestions)
	quizGroup.Get("/delete-question", quizValidators.Delete(), qc.DeleteQuestion)
	quizGroup.Get("/topic-status", quizValidators.TopicStatus(), qc.TopicStatus)
}
