package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response. The backend answers either with a JSON
// envelope or, for some auth failures, with a plain-text body.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Forbidden reports an authorization denial, which create-vent uses for blocks.
func (e *Error) Forbidden() bool {
	return e.Status == http.StatusForbidden
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newError(status int, body []byte) *Error {
	e := &Error{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, e)
	} else if len(trimmed) > 0 {
		e.Message = string(trimmed)
	}
	e.Status = status
	e.Message = strings.TrimSpace(e.Message)
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
