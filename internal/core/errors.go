package core

import (
	"errors"
	"fmt"
)

// RemoteQueryError is returned when the movie service was reached but
// rejected the request (e.g. "Movie not found!", "Invalid API key!").
type RemoteQueryError struct {
	Message string
}

func (e *RemoteQueryError) Error() string {
	if e.Message == "" {
		return "remote query rejected"
	}
	return "remote query rejected: " + e.Message
}

// TransportError is returned when a call to the movie service could not
// complete: network failure, timeout, unexpected status or malformed body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteMessage returns the service-supplied message if err is a RemoteQueryError.
func RemoteMessage(err error) (string, bool) {
	var rq *RemoteQueryError
	if errors.As(err, &rq) {
		return rq.Message, true
	}
	return "", false
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
