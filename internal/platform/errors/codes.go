// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Value validation errors
	CodeValueBlank         Code = "VALUE_BLANK"
	CodeValueInvalidFormat Code = "VALUE_INVALID_FORMAT"

	// Request errors
	CodeInvalidPage      Code = "INVALID_PAGE"
	CodeInvalidSort      Code = "INVALID_SORT"
	CodeInvalidID        Code = "INVALID_ID"
	CodeMalformedRequest Code = "MALFORMED_REQUEST"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// IsValidation reports whether the code is a value validation failure.
func (c Code) IsValidation() bool {
	return c == CodeValueBlank || c == CodeValueInvalidFormat
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValueBlank,
		CodeValueInvalidFormat,
		CodeInvalidPage,
		CodeInvalidSort,
		CodeInvalidID,
		CodeMalformedRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
