package respond

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response body. Status is "success" for 2xx,
// "fail" for client errors and "error" for server errors.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Success writes a 2xx envelope.
func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Fail writes an error envelope. Client errors report "fail", server errors
// report "error".
func Fail(c *fiber.Ctx, status int, message string, details any) error {
	kind := "fail"
	if status >= fiber.StatusInternalServerError {
		kind = "error"
	}
	return c.Status(status).JSON(Envelope{
		Status:  kind,
		Message: message,
		Errors:  details,
	})
}
