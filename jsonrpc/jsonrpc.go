package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mnehpets/oneclient/endpoint"
	"github.com/mnehpets/oneclient/provider"
)

// Version is the protocol version carried in every envelope.
const Version = "2.0"

const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is the error object of a JSON-RPC response. A response carrying an
// Error is a logical failure even when the HTTP status is 200.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "jsonrpc: error: <nil>"
	}
	return fmt.Sprintf("jsonrpc: %s (code %d)", e.Message, e.Code)
}

// NewError creates an Error without data.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Target is an endpoint that is invoked as a JSON-RPC method.
//
// The Target's URL, headers and authentication are used as-is; its Body is
// replaced by the request envelope.
type Target interface {
	endpoint.Target
	MethodName() string
	Params() []any
}

// Request is a JSON-RPC request envelope. It is an endpoint.Body.
type Request struct {
	ID      uint64 `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// NewRequest creates a request envelope. Nil params are sent as [].
func NewRequest(id uint64, method string, params []any) Request {
	if params == nil {
		params = []any{}
	}
	return Request{ID: id, JSONRPC: Version, Method: method, Params: params}
}

// Encode implements endpoint.Body.
func (r Request) Encode() ([]byte, string, error) {
	return endpoint.JSON{Value: r}.Encode()
}

// BatchRequest is an ordered batch of request envelopes, sent as one JSON
// array. It is an endpoint.Body.
type BatchRequest []Request

// Encode implements endpoint.Body.
func (b BatchRequest) Encode() ([]byte, string, error) {
	return endpoint.JSON{Value: []Request(b)}.Encode()
}

// Response is a decoded JSON-RPC response. Exactly one of Result and Error
// is meaningful: Result is the zero value when Error is set.
type Response[R any] struct {
	ID      uint64 `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Result  R      `json:"result"`
	Error   *Error `json:"error,omitempty"`
}

// envelope is a response as it appears on the wire, before the result is
// decoded into its typed form.
type envelope struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// key is the id as it appears on the wire; empty for a null or absent id.
func (e *envelope) key() string {
	id := bytes.TrimSpace(e.ID)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return ""
	}
	return string(id)
}

func idKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func hasResult(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// decodeEnvelope validates env and decodes its result into R.
func decodeEnvelope[R any](env *envelope, id uint64, status int) (*Response[R], error) {
	if env.JSONRPC != Version {
		return nil, &provider.DecodeError{StatusCode: status, Cause: fmt.Errorf("unsupported jsonrpc version %q", env.JSONRPC)}
	}
	res := &Response[R]{ID: id, JSONRPC: env.JSONRPC}
	switch {
	case env.Error != nil && hasResult(env.Result):
		return nil, &provider.DecodeError{StatusCode: status, Cause: errors.New("response has both result and error")}
	case env.Error != nil:
		res.Error = env.Error
		return res, nil
	case len(env.Result) == 0:
		return nil, &provider.DecodeError{StatusCode: status, Cause: errors.New("response has neither result nor error")}
	}
	if err := json.Unmarshal(env.Result, &res.Result); err != nil {
		return nil, &provider.DecodeError{StatusCode: status, Cause: err}
	}
	return res, nil
}

// callID is the id of a single, unbatched call.
const callID = 1

// Call invokes target as a single JSON-RPC request and decodes its result
// into R.
//
// Errors:
//   - *endpoint.BuildError if the request could not be built; nothing was sent.
//   - The transport's error, unchanged.
//   - *provider.DecodeError if the response is not a valid envelope.
//   - *CorrelationError if the response id does not match the request.
//   - *Error if the server answered with a JSON-RPC error, whatever the
//     HTTP status.
func Call[R any, T Target](ctx context.Context, p *provider.Provider[T], target T) (*Response[R], error) {
	rpcReq := NewRequest(callID, target.MethodName(), target.Params())
	req, err := p.NewRequestWithBody(ctx, target, rpcReq)
	if err != nil {
		return nil, err
	}
	resp, err := p.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := provider.ReadBody(resp)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &provider.DecodeError{StatusCode: resp.StatusCode, Cause: err}
	}
	key := env.key()
	// A null id with an error means the server could not read the request.
	if key == "" && env.Error != nil {
		return nil, env.Error
	}
	if key != idKey(callID) {
		return nil, &CorrelationError{Err: ErrUnknownID, IDs: []string{key}}
	}
	res, err := decodeEnvelope[R](&env, callID, resp.StatusCode)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return res, nil
}
