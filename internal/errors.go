package internal

import (
	"net/http"

	"github.com/pkg/errors"
)

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeRepoError is returned when the request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
	// ErrCodeRequiredFieldMissing is returned when at least one required field has not been populated on an incoming
	// request
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	// ErrCodeValidationFailed is returned when fields of the transferred data do not validate
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeIllegalForm is returned when the request contained a form that cannot be decoded
	ErrCodeIllegalForm = "ILLEGAL_FORM_REQUEST"
	// ErrCodeInvalidUint is returned when an ID is required inside a request, but is not provided or in a wrong format
	ErrCodeInvalidUint = "INVALID_UINT"
	// ErrCodeVenueNotFound is returned when an operation works on a venue that does not exist
	ErrCodeVenueNotFound = "VENUE_NOT_FOUND"
	// ErrCodeArtistNotFound is returned when an operation works on an artist that does not exist
	ErrCodeArtistNotFound = "ARTIST_NOT_FOUND"
	// ErrCodeReferencedEntityMissing is returned when a show should be created for an artist or venue that does not
	// exist
	ErrCodeReferencedEntityMissing = "REFERENCED_ENTITY_MISSING"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}

// Cause returns the error that led to this one if it has been attached as data
func (e *HTTPError) Cause() error {
	if err, ok := e.data.(error); ok {
		return err
	}
	return nil
}

// Unwrap makes the cause accessible to errors.Is and errors.As
func (e *HTTPError) Unwrap() error {
	return e.Cause()
}

// errorCode returns the code of the first HTTPError found in the given error's chain
func errorCode(err error) string {
	for err != nil {
		if he, ok := err.(*HTTPError); ok {
			return he.code
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return ""
		}
		err = c.Cause()
	}
	return ""
}

// IsValidationError checks if the error has been caused by missing or malformed input
func IsValidationError(err error) bool {
	code := errorCode(err)
	return code == ErrCodeValidationFailed || code == ErrCodeRequiredFieldMissing
}

// IsNotFound checks if the error signals that the requested entity does not exist
func IsNotFound(err error) bool {
	code := errorCode(err)
	return code == ErrCodeVenueNotFound || code == ErrCodeArtistNotFound
}

// IsReferentialError checks if the error signals that a referenced artist or venue does not exist
func IsReferentialError(err error) bool {
	return errorCode(err) == ErrCodeReferencedEntityMissing
}

// IsPersistenceError checks if the error has been caused by the underlying storage
func IsPersistenceError(err error) bool {
	return errorCode(err) == ErrCodeRepoError
}

// makeRepoError creates the error returned to the client when the storage failed
func makeRepoError(message string, cause error) *HTTPError {
	return MakeErrorWithData(
		http.StatusInternalServerError,
		ErrCodeRepoError,
		message,
		errors.WithStack(cause),
	)
}
