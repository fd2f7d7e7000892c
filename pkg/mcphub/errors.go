package mcphub

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for lookup failures during execution routing.
var (
	ErrUnknownServer  = errors.New("unknown server")
	ErrServerDisabled = errors.New("server disabled")
)

// TransportError reports a failed exchange with a server: a non-2xx HTTP
// response, a non-zero subprocess exit, or malformed subprocess output.
// Body carries whatever diagnostic text the server produced.
type TransportError struct {
	ServerID string
	Body     string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mcphub: transport error from %q", e.ServerID)
	}
	return fmt.Sprintf("mcphub: transport error from %q: %s", e.ServerID, e.Body)
}

// AuthRequiredError is raised when a server answers 401 or 403. URL is the
// extracted authorization redirect target and may be empty when the server
// did not advertise one.
type AuthRequiredError struct {
	ServerID string
	URL      string
	Body     string
}

func (e *AuthRequiredError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("mcphub: server %q requires authorization", e.ServerID)
	}
	return fmt.Sprintf("mcphub: server %q requires authorization, visit %s", e.ServerID, e.URL)
}

// TimeoutError reports that a network call was aborted or a subprocess was
// killed after the configured duration elapsed.
type TimeoutError struct {
	ServerID string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("mcphub: call to %q timed out after %s", e.ServerID, e.Timeout)
}

// LookupError reports a routing failure: an unknown server id, a disabled
// server, or an unparseable namespaced tool name. It wraps the matching
// sentinel where one applies.
type LookupError struct {
	Name string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("mcphub: %v: %q", e.Err, e.Name)
}

func (e *LookupError) Unwrap() error { return e.Err }

// IsAuthRequired narrows err to an AuthRequiredError anywhere in its chain.
func IsAuthRequired(err error) (*AuthRequiredError, bool) {
	var authErr *AuthRequiredError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// IsTimeout reports whether err is a per-call timeout.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}
