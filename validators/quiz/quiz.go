package quizValidator

import (
	"quizgen/middleware"
	"quizgen/validators"

	"github.com/gofiber/fiber/v2"
)

type GenerateRequest struct {
	Context string `json:"context" validate:"notblank"`
	UserID  string `json:"uid" validate:"notblank"`
	Name    string `json:"name" validate:"notblank"`
}

// TopicRequest addresses one topic of one user.
type TopicRequest struct {
	UserID string `json:"uid" query:"uid" validate:"notblank"`
	Name   string `json:"name" query:"name" validate:"notblank"`
}

type RatingInput struct {
	UserID string `json:"uid" validate:"notblank"`
	Rate   *int   `json:"rate" validate:"required"`
}

type RateRequest struct {
	UserID     string      `json:"uid" validate:"notblank"`
	Name       string      `json:"name" validate:"notblank"`
	QuestionID string      `json:"questionId" validate:"notblank"`
	Rating     RatingInput `json:"rating"`
}

type CommentInput struct {
	UserID  string `json:"uid" validate:"notblank"`
	Comment string `json:"comment" validate:"notblank"`
}

type CommentRequest struct {
	UserID     string       `json:"uid" validate:"notblank"`
	Name       string       `json:"name" validate:"notblank"`
	QuestionID string       `json:"questionId" validate:"notblank"`
	Comment    CommentInput `json:"comment"`
}

type SearchRequest struct {
	Keyword string `query:"keyword" json:"keyword" validate:"notblank"`
}

type DeleteRequest struct {
	UserID     string `query:"uid" json:"uid" validate:"notblank"`
	Name       string `query:"name" json:"name" validate:"notblank"`
	QuestionID string `query:"questionId" json:"questionId" validate:"notblank"`
}

var messages = map[string]string{
	"context":         "Context is required!",
	"rating.rate":     "Rating rate is required!",
	"comment.comment": "Comment is required!",
}

// bodyValidator parses the JSON body into a new T, validates it and stores
// it under key.
func bodyValidator[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := validators.Struct(reqData, messages); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func queryValidator[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(reqData, messages); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func Generate() fiber.Handler { return bodyValidator[GenerateRequest]("validatedGenerate") }

// Topic validates {uid, name} bodies of the export and duplicate endpoints.
func Topic() fiber.Handler { return bodyValidator[TopicRequest]("validatedTopic") }

func Rate() fiber.Handler { return bodyValidator[RateRequest]("validatedRate") }

func Comment() fiber.Handler { return bodyValidator[CommentRequest]("validatedComment") }

func Search() fiber.Handler { return queryValidator[SearchRequest]("validatedSearch") }

func Delete() fiber.Handler { return queryValidator[DeleteRequest]("validatedDelete") }

func TopicStatus() fiber.Handler { return queryValidator[TopicRequest]("validatedTopic") }
