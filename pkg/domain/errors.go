package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSession is returned when a session is nil or has no ID.
var ErrInvalidSession = errors.New("invalid session")

// RemoteError reports a failed call to the booking service.
// StatusCode is zero when the request never produced an HTTP response.
type RemoteError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *RemoteError) Error() string {
	var msg string
	switch {
	case e.StatusCode > 0:
		msg = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
	case e.Detail != "":
		msg = e.Detail
	case e.Err != nil:
		msg = e.Err.Error()
	default:
		msg = "remote call failed"
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the call may succeed: transport failures
// and gateway-class server errors.
func (e *RemoteError) Temporary() bool {
	switch e.StatusCode {
	case 0:
		return e.Err != nil
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
