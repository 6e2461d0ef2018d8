// Package endpoint defines how an API operation describes the HTTP request
// that invokes it.
//
// Each API surface is modelled as a closed set of Go values (an enum-like
// type, typically a struct with a kind field or one type per operation)
// implementing Target. A Target answers every question needed to build a
// request:
//
//  1. Where: BaseURL and Path, joined into the request URL.
//  2. How: Method, Query, Headers and Authentication.
//  3. What: Body, which may fail when the variant's data cannot be encoded.
//
// Target methods must be pure functions of the value: no I/O and no hidden
// state, so that building the same Target twice yields the same request.
// The provider package turns Targets into dispatched requests.
//
// Supported Bodies:
//   - NoBody: no request body.
//   - Raw: bytes sent verbatim.
//   - Form: ordered key/value pairs, form-urlencoded.
//   - JSON: a value serialized as JSON.
//   - CBOR: a value serialized as CBOR.
//
// Supported Auth schemes:
//   - Bearer, Basic, Header (and the APIKey helper).
//   - TokenSource: OAuth2 access tokens.
//   - JWT: HS256 tokens minted per request.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Target describes a single API operation.
//
// Embed Defaults to inherit empty Query, Headers, Authentication and Body.
type Target interface {
	// BaseURL returns the scheme and host (and optional path prefix) of the API.
	BaseURL() string
	Method() Method
	// Path is appended to BaseURL. It may embed values from the variant.
	Path() string
	Query() map[string]string
	Headers() map[string]string
	// Authentication returns nil when the request is unauthenticated.
	Authentication() Auth
	// Body returns the request body, or an error when the variant's data
	// cannot be encoded.
	Body() (Body, error)
}

// Defaults provides the default, empty values for the optional parts of a
// Target.
type Defaults struct{}

func (Defaults) Query() map[string]string   { return nil }
func (Defaults) Headers() map[string]string { return nil }
func (Defaults) Authentication() Auth       { return nil }
func (Defaults) Body() (Body, error)        { return NoBody, nil }

// QueryString renders the target's query parameters as an encoded query
// string, sorted by key. It returns "" when there are none.
func QueryString(t Target) string {
	q := t.Query()
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(q[k]))
	}
	return sb.String()
}

// AbsoluteURL joins BaseURL and Path and appends the query string, if any.
func AbsoluteURL(t Target) string {
	u := t.BaseURL() + t.Path()
	if qs := QueryString(t); qs != "" {
		u += "?" + qs
	}
	return u
}

// ResolveURL parses raw as an absolute URL and merges query into it.
// Parameters in query replace parameters of the same name already present
// in raw. The returned URL's query is encoded in sorted key order.
func ResolveURL(raw string, query map[string]string) (*url.URL, error) {
	if raw == "" {
		return nil, Errorf(nil, "empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, Errorf(err, "invalid URL %q", raw)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, Errorf(nil, "URL %q must be absolute", raw)
	}
	if len(query) > 0 {
		values := u.Query()
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}
	return u, nil
}

// BuildError reports a failure to build a request from a Target.
//
// A BuildError is always raised before anything is sent.
type BuildError struct {
	// Message is a short description of what could not be built.
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e == nil {
		return "endpoint: build error: <nil>"
	}
	msg := "endpoint: " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Errorf creates a BuildError with a formatted message.
func Errorf(cause error, format string, args ...any) error {
	// Avoid double-wrapping.
	var be *BuildError
	if errors.As(cause, &be) {
		return cause
	}
	return &BuildError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsBuildError reports whether err, or an error it wraps, is a BuildError,
// meaning the request was never sent.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}
