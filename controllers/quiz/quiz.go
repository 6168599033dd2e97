package quizController

import (
	"context"

	"quizgen/middleware"
	"quizgen/models"
	"quizgen/pipeline"
	"quizgen/quiz"
	quizValidator "quizgen/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// Generator runs the generation pipeline.
type Generator interface {
	Run(ctx context.Context, req pipeline.Request) ([]models.Question, error)
	RunSplit(ctx context.Context, req pipeline.Request) ([]models.Question, error)
}

type TopicReader interface {
	GetTopic(ctx context.Context, userID, topicName string) (*models.Topic, error)
}

type QuizController struct {
	generator Generator
	quiz      *quiz.Service
	topics    TopicReader
}

func New(generator Generator, service *quiz.Service, topics TopicReader) *QuizController {
	return &QuizController{generator: generator, quiz: service, topics: topics}
}

func (qc *QuizController) GenerateSingle(c *fiber.Ctx) error {
	reqData := c.Locals("validatedGenerate").(*quizValidator.GenerateRequest)

	questions, err := qc.generator.Run(c.UserContext(), pipeline.Request{
		Context:   reqData.Context,
		UserID:    reqData.UserID,
		TopicName: reqData.Name,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions generated successfully!", questions)
}

func (qc *QuizController) GenerateSplit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedGenerate").(*quizValidator.GenerateRequest)

	questions, err := qc.generator.RunSplit(c.UserContext(), pipeline.Request{
		Context:   reqData.Context,
		UserID:    reqData.UserID,
		TopicName: reqData.Name,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions generated successfully!", questions)
}

// export loads the topic and sends render's output as a file download.
func (qc *QuizController) export(c *fiber.Ctx, ext string, render func([]models.Question) (string, error)) error {
	reqData := c.Locals("validatedTopic").(*quizValidator.TopicRequest)

	questions, err := qc.quiz.Questions(c.UserContext(), reqData.UserID, reqData.Name)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	doc, err := render(questions)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	c.Attachment(reqData.Name + ext)
	return c.Status(fiber.StatusOK).SendString(doc)
}

func (qc *QuizController) ExportAiken(c *fiber.Ctx) error {
	return qc.export(c, ".txt", quiz.ToAiken)
}

func (qc *QuizController) ExportMoodle(c *fiber.Ctx) error {
	return qc.export(c, ".xml", quiz.ToMoodleXML)
}

func (qc *QuizController) FindDuplicates(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTopic").(*quizValidator.TopicRequest)

	questions, err := qc.quiz.Questions(c.UserContext(), reqData.UserID, reqData.Name)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Duplicates fetched!", quiz.FindDuplicates(questions))
}

func (qc *QuizController) RateQuestion(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRate").(*quizValidator.RateRequest)

	question, err := qc.quiz.Rate(c.UserContext(), reqData.UserID, reqData.Name, reqData.QuestionID,
		reqData.Rating.UserID, *reqData.Rating.Rate)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating saved!", question)
}

func (qc *QuizController) CommentQuestion(c *fiber.Ctx) error {
	reqData := c.Locals("validatedComment").(*quizValidator.CommentRequest)

	question, err := qc.quiz.Comment(c.UserContext(), reqData.UserID, reqData.Name, reqData.QuestionID,
		reqData.Comment.UserID, reqData.Comment.Comment)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment added!", question)
}

func (qc *QuizController) SearchQuestions(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSearch").(*quizValidator.SearchRequest)

	results, err := qc.quiz.Search(c.UserContext(), reqData.Keyword)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched!", results)
}

func (qc *QuizController) DeleteQuestion(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDelete").(*quizValidator.DeleteRequest)

	if err := qc.quiz.Delete(c.UserContext(), reqData.UserID, reqData.Name, reqData.QuestionID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", fiber.Map{
		"questionId": reqData.QuestionID,
	})
}

// TopicStatus reports whether a generation run is executing for the topic.
func (qc *QuizController) TopicStatus(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTopic").(*quizValidator.TopicRequest)

	topic, err := qc.topics.GetTopic(c.UserContext(), reqData.UserID, reqData.Name)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic status fetched!", fiber.Map{
		"uid":                  topic.UserID,
		"name":                 topic.Name,
		"generationInProgress": topic.GenerationInProgress,
		"generationStartedAt":  topic.GenerationStartedAt,
	})
}
