package handlers

import (
	"errors"
	"fmt"
	"strings"

	"archive-browser/listing"
	"archive-browser/logger"
	"archive-browser/models"
	"archive-browser/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/morikuni/failure/v2"
)

func errorJSON(c *fiber.Ctx, status int, name, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Success:   false,
		Error:     name,
		Message:   message,
		RequestID: requestID(c),
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusNotFound, "Not Found", message)
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, "Bad Request", message)
}

// fail maps a domain error onto a status code and error body.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	message := err.Error()
	if m := failure.MessageOf(err); m != "" {
		message = m.String()
	}

	switch {
	case failure.Is(err, listing.ErrPageOutOfRange),
		failure.Is(err, listing.ErrInvalidPage),
		failure.Is(err, listing.ErrInvalidSort):
		return badRequest(c, message)
	case failure.Is(err, storage.ErrUnsupported):
		return errorJSON(c, fiber.StatusNotImplemented, "Not Implemented", message)
	}

	h.log.Error("Request failed",
		logger.String("path", c.Path()),
		logger.String("request_id", requestID(c)),
		logger.Error(err),
	)
	if failure.Is(err, storage.ErrStorageFailure) {
		return errorJSON(c, fiber.StatusInternalServerError, "Storage Failure", message)
	}
	return errorJSON(c, fiber.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ErrorHandler renders errors that escape handlers, including fiber's own
// 404 and 405, as ErrorResponse bodies.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An unexpected error occurred"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	return errorJSON(c, code, utils.StatusMessage(code), message)
}
