package serverutils

import (
	"errors"
	"log"

	"fun-writing-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

type errorBody struct {
	Success bool                   `json:"success"`
	Code    apperrors.Code         `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandlerMiddleware translates app errors into stable {code, message}
// bodies. Unknown errors are logged and masked as INTERNAL_ERROR.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return ctx.Status(apperrors.HTTPStatus(appErr.Code)).JSON(errorBody{
				Success: false,
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(errorBody{
				Success: false,
				Code:    apperrors.CodeInternalError,
				Message: fiberErr.Message,
			})
		}

		log.Printf("[ERROR] Unhandled error on %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Success: false,
			Code:    apperrors.CodeInternalError,
			Message: "internal server error",
		})
	}
}
