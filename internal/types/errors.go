package types

import (
	"fmt"
	"net/http"
)

// FieldError is a local validation failure; no request was issued.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RequestError is a failed remote call: transport error (Status 0),
// non-2xx status, or a 2xx body that reported success=false.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status == 0:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: status %d %s", e.Op, e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }
