package remote

import "fmt"

// APIError reports a non-success HTTP status from the remote service.
// A 404 is mapped to model.ErrNotFound before this type is used.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// NetworkError reports a transport-level failure reaching the remote:
// connection refused, timeout or a malformed response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }
