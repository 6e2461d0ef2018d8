// Package provider turns endpoint Targets into dispatched HTTP requests.
//
// A Provider builds each request in a fixed order:
//
//  1. URL: the Endpoint hook if set, otherwise BaseURL()+Path().
//  2. Method.
//  3. Query parameters, URL-encoded in sorted key order.
//  4. Headers: the Provider's default Header, then the target's Headers,
//     which win on conflict.
//  5. Authentication, which overwrites any header of the same name.
//  6. Body, which sets Content-Type for JSON, Form and CBOR bodies.
//  7. The Builder hook, which may change anything before dispatch.
//
// Any failure in steps 1 to 6 is an *endpoint.BuildError and nothing is sent.
// Transport errors are returned exactly as the Transport produced them.
// Non-2xx responses are not errors for Request; callers inspect the status.
//
// A Provider is immutable after construction and safe for concurrent use.
package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mnehpets/oneclient/endpoint"
	"github.com/rs/zerolog"
)

// EndpointFunc computes the request URL for a target, replacing the default
// BaseURL()+Path() composition. Query parameters are still applied.
type EndpointFunc[T endpoint.Target] func(target T) string

// BuilderFunc receives the fully built request and may add to or override
// any part of it before it is dispatched. Returning an error aborts the
// request.
type BuilderFunc[T endpoint.Target] func(req *http.Request, target T) error

// Provider builds and dispatches requests for targets of type T.
type Provider[T endpoint.Target] struct {
	// Transport sends requests. When nil, http.DefaultClient is used.
	Transport Transport
	Endpoint  EndpointFunc[T]
	Builder   BuilderFunc[T]

	// Header holds default headers added to every request. Target headers
	// take precedence.
	Header http.Header

	// Timeout, when positive, bounds each request including reading the
	// response body.
	Timeout time.Duration
}

// New constructs a Provider. endpointFn and builderFn may be nil.
//
// This helper exists to enable type inference for the target type T.
func New[T endpoint.Target](transport Transport, endpointFn EndpointFunc[T], builderFn BuilderFunc[T]) *Provider[T] {
	return &Provider[T]{
		Transport: transport,
		Endpoint:  endpointFn,
		Builder:   builderFn,
	}
}

func (p *Provider[T]) transport() Transport {
	if p.Transport == nil {
		return http.DefaultClient
	}
	return p.Transport
}

// URL returns the unresolved request URL for target, before query
// parameters are applied.
func (p *Provider[T]) URL(target T) string {
	if p.Endpoint != nil {
		return p.Endpoint(target)
	}
	return target.BaseURL() + target.Path()
}

// NewRequest builds the request for target without sending it.
func (p *Provider[T]) NewRequest(ctx context.Context, target T) (*http.Request, error) {
	body, err := target.Body()
	if err != nil {
		return nil, endpoint.Errorf(err, "target body")
	}
	return p.NewRequestWithBody(ctx, target, body)
}

// NewRequestWithBody builds the request for target like NewRequest, but
// sends body in place of target.Body().
func (p *Provider[T]) NewRequestWithBody(ctx context.Context, target T, body endpoint.Body) (*http.Request, error) {
	u, err := endpoint.ResolveURL(p.URL(target), target.Query())
	if err != nil {
		return nil, err
	}
	method := target.Method()
	if !method.Valid() {
		return nil, endpoint.Errorf(nil, "invalid method %q", method)
	}
	req, err := http.NewRequestWithContext(ctx, method.String(), u.String(), nil)
	if err != nil {
		return nil, endpoint.Errorf(err, "new request")
	}

	for k, vs := range p.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range target.Headers() {
		req.Header.Set(k, v)
	}

	if auth := target.Authentication(); auth != nil {
		if err := auth.Apply(req.Header); err != nil {
			return nil, endpoint.Errorf(err, "authentication")
		}
	}

	if body == nil {
		body = endpoint.NoBody
	}
	data, contentType, err := body.Encode()
	if err != nil {
		return nil, endpoint.Errorf(err, "encode body")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if len(data) > 0 {
		req.ContentLength = int64(len(data))
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	if p.Builder != nil {
		if err := p.Builder(req, target); err != nil {
			return nil, endpoint.Errorf(err, "builder")
		}
	}
	return req, nil
}

// Request builds the request for target and dispatches it.
func (p *Provider[T]) Request(ctx context.Context, target T) (*http.Response, error) {
	req, err := p.NewRequest(ctx, target)
	if err != nil {
		return nil, err
	}
	return p.Do(req)
}

// Do dispatches a built request through the Transport, applying Timeout.
// The caller must close the response body.
func (p *Provider[T]) Do(req *http.Request) (*http.Response, error) {
	var cancel context.CancelFunc
	if p.Timeout > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(req.Context(), p.Timeout)
		req = req.WithContext(ctx)
	}

	zerolog.Ctx(req.Context()).Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("provider: dispatch")

	resp, err := p.transport().Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	if cancel != nil {
		resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	}
	return resp, nil
}

// cancelBody releases the timeout context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
