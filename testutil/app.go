package testutil

import (
	"github.com/gofiber/fiber/v2"
)

// CreateTestApp initializes a new Fiber app for testing purposes.
func CreateTestApp(errorHandler fiber.ErrorHandler) *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
}
