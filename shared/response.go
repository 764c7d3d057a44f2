package shared

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

func writeJSON(c *fiber.Ctx, httpCode int, resp Response) error {
	body, err := jsonAPI.Marshal(resp)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(httpCode).Send(body)
}

func ResponseJSON(c *fiber.Ctx, httpCode int, message string, data interface{}) error {
	return writeJSON(c, httpCode, Response{
		Success:   httpCode < 400,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func ResponseOK(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusOK, "Success", data)
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, fiber.StatusCreated, "Created", data)
}

func ResponseError(c *fiber.Ctx, httpCode int, message string, fieldErrors interface{}) error {
	return writeJSON(c, httpCode, Response{
		Success:   false,
		Message:   message,
		Errors:    fieldErrors,
		Timestamp: time.Now().UTC(),
	})
}

// ResponseAppError renders an AppError, attaching its diagnostic data
// (if any) under data so callers see fields like shortfall.
func ResponseAppError(c *fiber.Ctx, appErr *AppError) error {
	return writeJSON(c, appErr.StatusCode, Response{
		Success:   false,
		Message:   appErr.Message,
		Data:      appErr.Data,
		Timestamp: time.Now().UTC(),
	})
}
