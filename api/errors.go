package api

import (
	"fmt"
	"net/http"
)

// StatusError is returned for responses with a non-2xx status code.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	// Body contains the start of the response, the OSM API sends plain
	// text error messages.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus returns whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode == code
}
