package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/corvus-index/corvus/internal/database"
)

// ErrValidation indicates a request failed input validation.
var ErrValidation = errors.New("validation error")

// ErrAuthentication is the sentinel matched by errors.Is against any AuthenticationError.
var ErrAuthentication = errors.New("authentication failed")

// ErrServer is the sentinel matched by errors.Is against any ServerError.
var ErrServer = errors.New("server error")

// APIError represents an error with an explicit HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError with the given status code, message, and optional cause.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the error message.
func (e *APIError) Message() string { return e.message }

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %s", e.code, e.message, e.cause.Error())
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error { return e.cause }

// AuthenticationError indicates a request failed authentication.
type AuthenticationError struct {
	reason string
}

// NewAuthenticationError creates an AuthenticationError with the given reason.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{reason: reason}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.reason)
}

// Is allows errors.Is(err, ErrAuthentication) to match any AuthenticationError.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// ServerError indicates an internal failure with an explicit HTTP status code.
type ServerError struct {
	statusCode int
	message    string
}

// NewServerError creates a ServerError with the given status code and message.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int { return e.statusCode }

// Message returns the error message.
func (e *ServerError) Message() string { return e.message }

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

// Is allows errors.Is(err, ErrServer) to match any ServerError.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

// JSONAPIError represents a single JSON:API error object.
type JSONAPIError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// JSONAPIErrorResponse represents a JSON:API error response wrapper.
type JSONAPIErrorResponse struct {
	Errors []JSONAPIError `json:"errors"`
}

// WriteError writes a JSON:API formatted error response, mapping the error to
// an appropriate HTTP status code.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	var apiErr *APIError
	var serverErr *ServerError
	var authErr *AuthenticationError

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = "API Error"
		detail = apiErr.Message()
	case errors.As(err, &serverErr):
		status = serverErr.StatusCode()
		title = "Server Error"
		detail = serverErr.Message()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		title = "Authentication Failed"
		detail = authErr.Error()
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
		title = "Validation Error"
	}

	requestID := GetCorrelationID(r.Context())

	if logger != nil {
		logger.Error("request error",
			"correlation_id", requestID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	resp := JSONAPIErrorResponse{
		Errors: []JSONAPIError{
			{
				Status: http.StatusText(status),
				Title:  title,
				Detail: detail,
				ID:     requestID,
			},
		},
	}

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
