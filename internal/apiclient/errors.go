package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnauthenticated matches any *HTTPError with status 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// ServerMessage returns the message the backend put in an error body, or ""
// when err carries none.
func ServerMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0 for transport
// failures.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// messageFrom pulls a human readable message out of an error body. The
// backend answers {"detail": "..."} for HTTP errors and
// {"detail": [{"msg": "..."}]} for validation errors.
func messageFrom(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"detail.0.msg", "detail", "message", "error"} {
		r := gjson.GetBytes(body, path)
		if r.Type == gjson.String {
			if msg := strings.TrimSpace(r.String()); msg != "" {
				return msg
			}
		}
	}
	return ""
}
