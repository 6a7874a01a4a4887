// Package apperr defines the domain error taxonomy. Services return *Error
// values; handlers map them to HTTP responses by code, never by matching
// message text.
package apperr

import "github.com/gofiber/fiber/v2"

// Stable machine-readable error codes surfaced to clients.
const (
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeSubjectNotFound      = "SUBJECT_NOT_FOUND"
	CodeAccountSuspended     = "ACCOUNT_SUSPENDED"
	CodeDuplicateReport      = "DUPLICATE_REPORT"
	CodeReportProcessed      = "REPORT_PROCESSED"
	CodeCannotUpdateApproved = "CANNOT_UPDATE_APPROVED"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func InvalidCredentials() *Error {
	return &Error{Code: CodeInvalidCredentials, Message: "Invalid credentials", Status: fiber.StatusUnauthorized}
}

func TokenInvalid() *Error {
	return &Error{Code: CodeTokenInvalid, Message: "Invalid token", Status: fiber.StatusUnauthorized}
}

func TokenExpired() *Error {
	return &Error{Code: CodeTokenExpired, Message: "Token expired", Status: fiber.StatusUnauthorized}
}

func SubjectNotFound() *Error {
	return &Error{Code: CodeSubjectNotFound, Message: "Account no longer exists", Status: fiber.StatusUnauthorized}
}

func AccountSuspended() *Error {
	return &Error{Code: CodeAccountSuspended, Message: "Account suspended", Status: fiber.StatusForbidden}
}

func DuplicateReport() *Error {
	return &Error{Code: CodeDuplicateReport, Message: "You have already reported one or more of these identities", Status: fiber.StatusBadRequest}
}

func ReportProcessed() *Error {
	return &Error{Code: CodeReportProcessed, Message: "Report has already been processed", Status: fiber.StatusBadRequest}
}

func CannotUpdateApproved() *Error {
	return &Error{Code: CodeCannotUpdateApproved, Message: "Cannot update approved reports", Status: fiber.StatusBadRequest}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidationError, Message: message, Status: fiber.StatusBadRequest}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message, Status: fiber.StatusNotFound}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, Status: fiber.StatusForbidden}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message, Status: fiber.StatusConflict}
}
