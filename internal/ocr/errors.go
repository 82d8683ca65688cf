package ocr

import "fmt"

// TransportError means the request never reached the service or no response came back
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx reply from the service
type HTTPError struct {
	StatusCode int
	Detail     string
}

// Error returns the server supplied detail, falling back to the status code
func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
