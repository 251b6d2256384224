package httpx

import (
	"net/http"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// statusOf maps service error codes to HTTP status codes.
func statusOf(code crud.Code) int {
	switch code {
	case crud.CodeValidation:
		return http.StatusBadRequest
	case crud.CodeUnauthorized:
		return http.StatusUnauthorized
	case crud.CodeForbidden:
		return http.StatusForbidden
	case crud.CodeNotFound:
		return http.StatusNotFound
	case crud.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError maps a typed service failure onto an RFC7807 response.
func ServiceError(w http.ResponseWriter, serr *crud.Error) {
	status := statusOf(serr.Code)
	detail := serr.Message
	if status == http.StatusInternalServerError {
		// Do not leak internals past the API boundary.
		detail = ""
	}
	JSON(w, status, ProblemDetail{
		Title:  string(serr.Code),
		Status: status,
		Detail: detail,
		Fields: fieldsOf(serr),
	})
}

func fieldsOf(serr *crud.Error) map[string]any {
	if serr.Code != crud.CodeValidation {
		return nil
	}
	return serr.Details
}
