package response

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the shared error envelope returned by all endpoints.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code, human message, and
// optional structured details.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes a 200 response with the given payload.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// Created writes a 201 response with the given payload.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Accepted writes a 202 response with the given payload.
func Accepted(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(data)
}

// NoContent writes an empty 204 response.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ValidationError writes a 400 response with optional field details.
func ValidationError(c *fiber.Ctx, message string, details interface{}) error {
	return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", message, details)
}

// NotFound writes a 404 response.
func NotFound(c *fiber.Ctx, message string) error {
	return writeError(c, fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

// Conflict writes a 409 response.
func Conflict(c *fiber.Ctx, message string) error {
	return writeError(c, fiber.StatusConflict, "CONFLICT", message, nil)
}

// ServiceError writes a 500 response.
func ServiceError(c *fiber.Ctx, message string) error {
	return writeError(c, fiber.StatusInternalServerError, "SERVICE_ERROR", message, nil)
}

func writeError(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
