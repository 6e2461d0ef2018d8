package provider

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Transport sends a built request and returns its response.
//
// *http.Client satisfies Transport. Implementations must be safe for
// concurrent use.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(req *http.Request) (*http.Response, error)

func (f TransportFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware is logic that wraps dispatch through a Transport.
//
// Protocol:
//   - Middleware MUST call next(...), unless it intends to short-circuit
//     the request with its own response or error.
//   - Middleware MUST NOT modify req in place; use req.Clone to change it.
//   - Middleware MUST return transport errors from next unchanged.
type Middleware interface {
	Handle(req *http.Request, next func(req *http.Request) (*http.Response, error)) (*http.Response, error)
}

// MiddlewareFunc adapts a function to a Middleware.
type MiddlewareFunc func(req *http.Request, next func(req *http.Request) (*http.Response, error)) (*http.Response, error)

func (f MiddlewareFunc) Handle(req *http.Request, next func(req *http.Request) (*http.Response, error)) (*http.Response, error) {
	return f(req, next)
}

// Chain returns a Transport that runs each middleware in order before
// handing the request to base. A nil base uses http.DefaultClient.
func Chain(base Transport, middleware ...Middleware) Transport {
	if base == nil {
		base = http.DefaultClient
	}
	return &chain{base: base, middleware: middleware}
}

type chain struct {
	base       Transport
	middleware []Middleware
}

func (c *chain) Do(req *http.Request) (*http.Response, error) {
	// Recursively call each middleware in order, followed by the base transport.
	var run func(i int, r *http.Request) (*http.Response, error)
	run = func(i int, r *http.Request) (*http.Response, error) {
		if i < 0 || i > len(c.middleware) {
			// Sanity check failure.
			return nil, errors.New("provider: invalid middleware index")
		} else if i < len(c.middleware) {
			if c.middleware[i] == nil {
				return nil, errors.New("provider: nil middleware")
			}
			return c.middleware[i].Handle(r, func(next *http.Request) (*http.Response, error) {
				return run(i+1, next)
			})
		}
		return c.base.Do(r)
	}
	return run(0, req)
}

// Logging returns middleware that logs each exchange to log: method, URL,
// status and duration on success, the error on failure.
func Logging(log zerolog.Logger) Middleware {
	return MiddlewareFunc(func(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
		start := time.Now()
		resp, err := next(req)
		if err != nil {
			log.Error().Err(err).
				Str("method", req.Method).
				Str("url", req.URL.Redacted()).
				Dur("elapsed", time.Since(start)).
				Msg("request failed")
			return resp, err
		}
		log.Info().
			Str("method", req.Method).
			Str("url", req.URL.Redacted()).
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return resp, nil
	})
}

// UserAgent returns middleware that sets the User-Agent header when the
// request does not already carry one.
func UserAgent(agent string) Middleware {
	return MiddlewareFunc(func(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
		if req.Header.Get("User-Agent") != "" {
			return next(req)
		}
		r := req.Clone(req.Context())
		r.Header.Set("User-Agent", agent)
		return next(r)
	})
}
