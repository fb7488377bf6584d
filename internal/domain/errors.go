package domain

import "fmt"

// InvalidParameterError reports a request field that failed validation.
// It is always returned before any network activity.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// TransportError wraps a failure reported by the underlying transport.
// The cause is preserved verbatim and reachable via errors.Unwrap.
type TransportError struct {
	Transport string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
