package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mnehpets/oneclient/endpoint"
)

// StatusError reports a non-2xx response where a successful one was
// required.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e == nil {
		return "provider: status error: <nil>"
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "provider: unexpected status " + status
}

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	StatusCode int
	Cause      error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "provider: decode error: <nil>"
	}
	msg := fmt.Sprintf("provider: decode response (status %d)", e.StatusCode)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// JSON dispatches target and decodes a 2xx JSON response body into U.
//
// Errors:
//   - *endpoint.BuildError if the request could not be built.
//   - The transport's error, unchanged, if dispatch or reading fails.
//   - *StatusError for a non-2xx status.
//   - *DecodeError if the body is not valid JSON for U.
func JSON[U any, T endpoint.Target](ctx context.Context, p *Provider[T], target T) (U, error) {
	var out U
	resp, err := p.Request(ctx, target)
	if err != nil {
		return out, err
	}
	body, err := ReadBody(resp)
	if err != nil {
		return out, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &DecodeError{StatusCode: resp.StatusCode, Cause: err}
	}
	return out, nil
}
