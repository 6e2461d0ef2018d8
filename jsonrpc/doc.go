// Package jsonrpc invokes JSON-RPC 2.0 methods through a provider.Provider.
//
// This package implements the client side of the JSON-RPC 2.0 specification
// (https://www.jsonrpc.org/specification) over HTTP
// (https://www.simple-is-better.org/json-rpc/transport_http.html).
//
// # Targets
//
// A JSON-RPC method is an endpoint.Target that also names the method and its
// positional params:
//
//	type EthRPC struct {
//	    endpoint.Defaults
//	    Name string
//	    Args []any
//	}
//
//	func (e EthRPC) BaseURL() string          { return "https://rpc.ankr.com" }
//	func (e EthRPC) Method() endpoint.Method  { return endpoint.POST }
//	func (e EthRPC) Path() string             { return "/eth" }
//	func (e EthRPC) MethodName() string       { return e.Name }
//	func (e EthRPC) Params() []any            { return e.Args }
//
// # Single calls
//
//	p := provider.New[EthRPC](http.DefaultClient, nil, nil)
//	resp, err := jsonrpc.Call[string](ctx, p, EthRPC{Name: "eth_chainId"})
//	// resp.Result == "0x1"
//
// The target's Body is replaced by the envelope
// {"id":1,"jsonrpc":"2.0","method":...,"params":[...]}. A response carrying
// an error object is returned as *Error, whatever the HTTP status.
//
// # Batches
//
// Batch sends many targets in one HTTP request; BatchChunked splits them into
// requests of at most n envelopes:
//
//	resps, err := jsonrpc.BatchChunked[string](ctx, p, targets, 100)
//
// Responses are matched to requests by id, not position, and returned in the
// order of targets. Any response that cannot be matched one-to-one fails the
// batch with a *CorrelationError.
//
// # Error Handling
//
// Errors are typed so callers can tell where a call failed:
//   - *endpoint.BuildError: never sent.
//   - transport errors: returned as the provider's Transport produced them.
//   - *provider.DecodeError: the response was not a valid envelope.
//   - *Error: the server answered with a JSON-RPC error.
//   - *CorrelationError: batch responses did not match the requests.
//
// Standard error codes are defined as constants:
//   - CodeParseError (-32700)
//   - CodeInvalidRequest (-32600)
//   - CodeMethodNotFound (-32601)
//   - CodeInvalidParams (-32602)
//   - CodeInternalError (-32603)
package jsonrpc
