package clients

import "fmt"

type FetchErrorKind string

const (
	FetchAuth      FetchErrorKind = "auth"
	FetchTransport FetchErrorKind = "transport"
	FetchRemote    FetchErrorKind = "remote"
)

// FetchError classifies a failed marketplace call. Auth means the credentials
// were rejected, Transport covers connection and timeout failures, Remote is
// any other non-2xx response with its status and body preserved.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTransport:
		return fmt.Sprintf("transport error: %v", e.Err)
	case FetchAuth:
		return fmt.Sprintf("auth error: status %d", e.StatusCode)
	default:
		return fmt.Sprintf("remote error: status %d: %s", e.StatusCode, e.Body)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
