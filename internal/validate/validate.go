package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conduit-app/article-service/internal/apperr"
)

var vld = validator.New()

// Struct validates tagged input structs and converts the failures into the
// application's ValidationError with human-readable messages.
func Struct(s interface{}) error {
	err := vld.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, message(fe))
	}
	return apperr.Validation(msgs...)
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be blank", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
