package serverutils

import (
	"fmt"
	"strings"

	"fun-writing-be/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation on a request DTO and converts
// failures into a VALIDATION_FAILED app error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.Wrap(apperrors.CodeValidationFailed, "invalid request", err)
		}

		var fields []string
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperrors.New(apperrors.CodeValidationFailed,
			"validation failed: "+strings.Join(fields, ", "))
	}
	return nil
}
