package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/CoachAcademyBack/internal/apperr"
	"github.com/saeid-a/CoachAcademyBack/internal/scheduling"
)

var errInvalidActor = errors.New("invalid token subject")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// bindBody parses the JSON body into req and runs its validate tags.
func bindBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.NewValidation("body", "must be a valid JSON object")
	}
	return validateStruct(req)
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apperr.NewValidation("body", "is invalid")
	}

	verr := &apperr.ValidationError{}
	for _, fe := range fieldErrors {
		verr.Add(fieldPath(fe), fieldMessage(fe))
	}
	return verr
}

// fieldPath drops the root struct name: "bookSessionRequest.date" -> "date".
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		switch fe.Param() {
		case apperr.DateLayout:
			return "must be a date in YYYY-MM-DD format"
		case "15:04":
			return "must be a time in HH:MM format"
		}
		return "must match " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// actor reads the authenticated caller placed in locals by AuthRequired.
func actor(c *fiber.Ctx) (int64, string, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, "", errInvalidActor
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", errInvalidActor
	}
	role, _ := c.Locals("role").(string)
	return userID, role, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation(name, "must be a positive integer")
	}
	return id, nil
}

func parseDateQuery(c *fiber.Ctx, name string, required bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if required {
			return nil, apperr.NewValidation(name, "is required")
		}
		return nil, nil
	}
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		return nil, apperr.NewValidation(name, "must be a date in YYYY-MM-DD format")
	}
	return &date, nil
}

func parseIntQuery(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return nil, apperr.NewValidation(name, "must be a positive integer")
	}
	return &value, nil
}

// mustDate parses a value that already passed the datetime validator.
func mustDate(value string) time.Time {
	date, _ := scheduling.ParseDate(value)
	return date
}
