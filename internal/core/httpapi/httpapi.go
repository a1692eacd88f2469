// Package httpapi holds the request binding and error rendering shared by every handler.
package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"astro-checkout/internal/core/apperror"
	"astro-checkout/internal/core/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHeader carries the cart session id.
const SessionHeader = "X-Session-ID"

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Reason is the machine-readable cause, e.g. "expired" or "invalid_transition".
	Reason string `json:"reason,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Bind parses the JSON body into out and validates its `validate` tags.
// Failures are InvalidArgument errors.
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.InvalidArgument("invalid request body")
	}
	return Validate(out)
}

// Validate checks the `validate` tags of a struct.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.InvalidArgument("invalid request: %v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.InvalidArgument("%s", strings.Join(msgs, "; "))
}

// describe renders a field error using the JSON path below the request struct.
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Error writes err as an ErrorResponse. Typed domain errors keep their message and
// reason; anything else is logged and answered with a generic 500.
func Error(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	resp := ErrorResponse{RayID: RayID(c)}

	if appErr, ok := apperror.As(err); ok {
		resp.Message = appErr.Message
		resp.Reason = appErr.Reason
	} else {
		logger.Get().Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("ray_id", resp.RayID),
			zap.Error(err),
		)
		resp.Message = "internal server error"
	}

	return c.Status(status).JSON(resp)
}
