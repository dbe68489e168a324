// Package domainerr defines the error values returned by every I/O operation
// of the HTTP client: a generic DomainError carrying a machine-readable code
// and a human-readable message, and its ResponseError specialization for
// completed HTTP exchanges that reported failure.
package domainerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known error codes.
const (
	// CodeResponse is the fixed code of every ResponseError ("interface error").
	CodeResponse = "Schnittstellen-Fehler"

	// CodeHTTP marks unsupported methods and transport failures of the
	// basic-auth backend.
	CodeHTTP = "HTTP-ERROR"

	// CodeInternal marks transport failures of the application-link backend.
	CodeInternal = "Jira/Insight hat ein internes Problem festgestellt"

	// CodeInvalidMethod marks a method name that is not a known HTTP method.
	CodeInvalidMethod = "INVALID-METHOD"

	// CodeJSON marks a response body that could not be decoded.
	CodeJSON = "JSON-ERROR"

	// CodeCancelled marks a context cancelled between two page fetches.
	CodeCancelled = "CANCELLED"
)

// DomainError is the generic application-level error.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// New creates a DomainError with the given code and message.
func New(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap creates a DomainError that keeps err as its cause.
func Wrap(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// jsonObject is the canonical wire shape of a DomainError.
type jsonObject struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MarshalJSON encodes the error as {"error": code, "message": message}.
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonObject{Error: e.Code, Message: e.Message})
}

// UnmarshalJSON decodes the canonical {"error", "message"} shape.
func (e *DomainError) UnmarshalJSON(data []byte) error {
	var obj jsonObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Code = obj.Error
	e.Message = obj.Message
	return nil
}

// ToJSON returns the canonical JSON representation.
func (e *DomainError) ToJSON() string {
	// Marshalling two strings cannot fail.
	data, _ := e.MarshalJSON()
	return string(data)
}

// ResponseError is returned when a completed HTTP exchange reports failure.
type ResponseError struct {
	DomainError
	Path       string
	StatusCode int
	StatusText string
	Body       string
}

// NewResponseError builds a ResponseError whose message embeds the status
// code, status text and response body verbatim.
func NewResponseError(path string, statusCode int, statusText, body string) *ResponseError {
	msg := fmt.Sprintf("Call to %s failed with\nstatus [%d]\nstatusText [%s]\nbody [%s]",
		path, statusCode, statusText, body)
	return &ResponseError{
		DomainError: DomainError{Code: CodeResponse, Message: msg},
		Path:        path,
		StatusCode:  statusCode,
		StatusText:  statusText,
		Body:        body,
	}
}

// Domain returns the embedded DomainError.
func (e *ResponseError) Domain() *DomainError {
	return &e.DomainError
}

// As extracts the DomainError from err, looking through ResponseError and
// any fmt.Errorf wrapping.
func As(err error) (*DomainError, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Domain(), true
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// IsResponseError reports whether err is, or wraps, a ResponseError.
func IsResponseError(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr)
}

// CodeOf returns the code of the DomainError in err, or "" if there is none.
func CodeOf(err error) string {
	if de, ok := As(err); ok {
		return de.Code
	}
	return ""
}
