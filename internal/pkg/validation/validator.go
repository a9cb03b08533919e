package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StructValidator is a singleton instance of the validator.
var StructValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse represents a validation error message.
type ErrorResponse struct {
	FailedField string `json:"failed_field"`
	Tag         string `json:"tag"`
	Value       string `json:"value"`
	Message     string `json:"message"`
}

// ValidateStruct performs validation on a struct.
// It returns a slice of ErrorResponse if validation fails, or nil otherwise.
// A `message` struct tag overrides the generated text for every rule of that field;
// a field reports at most one error.
func ValidateStruct(payload interface{}) []*ErrorResponse {
	err := StructValidator.Struct(payload)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*ErrorResponse{{Message: err.Error()}}
	}

	var errors []*ErrorResponse
	seen := make(map[string]bool)
	for _, fe := range verrs {
		if seen[fe.StructNamespace()] {
			continue
		}
		seen[fe.StructNamespace()] = true
		errors = append(errors, &ErrorResponse{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fmt.Sprintf("%v", fe.Value()),
			Message:     messageFor(payload, fe),
		})
	}
	return errors
}

// Messages flattens validation errors to their user-facing text.
func Messages(errs []*ErrorResponse) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func messageFor(payload interface{}, fe validator.FieldError) string {
	t := reflect.TypeOf(payload)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("message"); msg != "" {
				return msg
			}
		}
	}
	return generateValidationMessage(fe)
}

// generateValidationMessage creates a user-friendly message for a validation error.
func generateValidationMessage(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()
	kind := err.Kind()

	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "contains":
		return fmt.Sprintf("The %s field must contain %q.", field, param)
	case "min":
		switch kind {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("The %s field must have at least %s items/characters.", field, param)
		default:
			return fmt.Sprintf("The %s field must be at least %s.", field, param)
		}
	case "max":
		switch kind {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("The %s field must have at most %s items/characters.", field, param)
		default:
			return fmt.Sprintf("The %s field must be at most %s.", field, param)
		}
	case "oneof":
		return fmt.Sprintf("The %s field must be one of [%s].", field, param)
	default:
		return fmt.Sprintf("The %s field is not valid (tag: %s).", field, tag)
	}
}

// ParseAndValidate is a utility function for Fiber handlers to parse the body and validate it.
// It returns true if parsing and validation are successful, false otherwise.
// If false, it sends a 400 response carrying the list of error messages.
func ParseAndValidate(c *fiber.Ctx, payload interface{}) bool {
	if err := c.BodyParser(payload); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Invalid request body"},
			"detail": err.Error(),
		})
		return false
	}

	if validationErrors := ValidateStruct(payload); validationErrors != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors":  Messages(validationErrors),
			"details": validationErrors,
		})
		return false
	}
	return true
}
