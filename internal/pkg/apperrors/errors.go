package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code is the closed set of failure kinds the pipeline can surface.
type Code string

const (
	// Credit ledger
	CodeInsufficientCredits Code = "INSUFFICIENT_CREDITS"
	CodeLedgerConflict      Code = "LEDGER_CONFLICT"
	CodeAlreadyResolved     Code = "RESERVATION_ALREADY_RESOLVED"

	// Submission lifecycle
	CodeContentRejected       Code = "CONTENT_REJECTED"
	CodeEvaluationInProgress  Code = "EVALUATION_IN_PROGRESS"
	CodeSubmissionNotEligible Code = "SUBMISSION_NOT_ELIGIBLE"

	// Generation
	CodeDuplicateRequest       Code = "DUPLICATE_REQUEST"
	CodeSafetyRejected         Code = "SAFETY_REJECTED"
	CodeGenerationServiceError Code = "GENERATION_SERVICE_ERROR"
	CodeInvalidMediaTransition Code = "INVALID_MEDIA_TRANSITION"

	// Generic
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternalError    Code = "INTERNAL_ERROR"
)

// AppError carries a Code plus structured details so handlers and tests can
// assert on the kind instead of parsing messages.
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the Code from an error chain, or CodeInternalError.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a Code to the status the REST layer returns.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case CodeContentRejected, CodeSafetyRejected:
		return http.StatusUnprocessableEntity
	case CodeEvaluationInProgress, CodeDuplicateRequest, CodeLedgerConflict, CodeAlreadyResolved:
		return http.StatusConflict
	case CodeSubmissionNotEligible, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeGenerationServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
