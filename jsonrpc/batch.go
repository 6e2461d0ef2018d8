package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mnehpets/oneclient/endpoint"
	"github.com/mnehpets/oneclient/provider"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyBatch  = errors.New("empty batch")
	ErrUnknownID   = errors.New("response id matches no request")
	ErrDuplicateID = errors.New("request answered more than once")
	ErrMissingID   = errors.New("request not answered")
)

// CorrelationError reports responses that cannot be matched one-to-one with
// the requests they answer.
type CorrelationError struct {
	// Chunk is the index of the chunk whose responses failed to correlate.
	Chunk int
	// IDs are the offending ids as they appear on the wire.
	IDs []string
	// Err is ErrUnknownID, ErrDuplicateID or ErrMissingID.
	Err error
}

func (e *CorrelationError) Error() string {
	if e == nil {
		return "jsonrpc: correlation error: <nil>"
	}
	return fmt.Sprintf("jsonrpc: chunk %d: %v: id %s", e.Chunk, e.Err, strings.Join(e.IDs, ", "))
}

func (e *CorrelationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Batch sends targets as a single JSON-RPC batch. See BatchChunked.
func Batch[R any, T Target](ctx context.Context, p *provider.Provider[T], targets []T) ([]*Response[R], error) {
	return BatchChunked[R](ctx, p, targets, len(targets))
}

// chunk is one HTTP exchange of a logical batch.
type chunk struct {
	index int
	start int
	batch BatchRequest
	req   *http.Request
}

// BatchChunked sends targets as one logical JSON-RPC batch split into
// requests of at most size envelopes, to respect server batch limits.
//
// Every envelope's id is its 1-based position in targets, so ids are unique
// across the whole logical batch. The first target of each chunk supplies
// the URL, headers and authentication for that chunk. Chunks are sent
// concurrently; the returned responses are in the order of targets, however
// the server ordered them.
//
// A JSON-RPC error answering one request is reported in that Response's
// Error field and does not fail the batch.
//
// Errors:
//   - *endpoint.BuildError for an empty batch, a size below 1, or any
//     request that could not be built; nothing was sent.
//   - The transport's error, unchanged.
//   - *provider.DecodeError if a chunk's response is not an array of
//     valid envelopes.
//   - *Error if the server rejected a whole chunk with one error object.
//   - *CorrelationError if a response id is unknown or repeated, or a
//     request went unanswered.
func BatchChunked[R any, T Target](ctx context.Context, p *provider.Provider[T], targets []T, size int) ([]*Response[R], error) {
	if len(targets) == 0 {
		return nil, endpoint.Errorf(ErrEmptyBatch, "jsonrpc")
	}
	if size < 1 {
		return nil, endpoint.Errorf(nil, "jsonrpc: invalid chunk size %d", size)
	}

	// Build every chunk before sending any, so a build error sends nothing.
	var chunks []chunk
	for start := 0; start < len(targets); start += size {
		end := min(start+size, len(targets))
		batch := make(BatchRequest, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, NewRequest(uint64(i+1), targets[i].MethodName(), targets[i].Params()))
		}
		req, err := p.NewRequestWithBody(ctx, targets[start], batch)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk{index: len(chunks), start: start, batch: batch, req: req})
	}

	results := make([]*Response[R], len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		c := c // per-iteration copy; go directive lowered to 1.21 for the local toolchain
		out := results[c.start : c.start+len(c.batch)]
		g.Go(func() error {
			return sendChunk(p, c.req.WithContext(gctx), c, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// sendChunk dispatches one chunk and stores each response in out at the
// position of the request it answers.
func sendChunk[R any, T Target](p *provider.Provider[T], req *http.Request, c chunk, out []*Response[R]) error {
	resp, err := p.Do(req)
	if err != nil {
		return err
	}
	body, err := provider.ReadBody(resp)
	if err != nil {
		return err
	}
	status := resp.StatusCode

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		// A single object answering a batch is the server rejecting it.
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return &provider.DecodeError{StatusCode: status, Cause: err}
		}
		if env.Error != nil {
			return env.Error
		}
		return &provider.DecodeError{StatusCode: status, Cause: errors.New("batch answered with a single response")}
	}

	var envs []envelope
	if err := json.Unmarshal(body, &envs); err != nil {
		return &provider.DecodeError{StatusCode: status, Cause: err}
	}

	index := make(map[string]int, len(c.batch))
	for i, r := range c.batch {
		index[idKey(r.ID)] = i
	}
	for i := range envs {
		env := &envs[i]
		key := env.key()
		if key == "" && env.Error != nil {
			// The server could not attribute this error to a request.
			return env.Error
		}
		pos, ok := index[key]
		if !ok {
			return &CorrelationError{Chunk: c.index, IDs: []string{key}, Err: ErrUnknownID}
		}
		if out[pos] != nil {
			return &CorrelationError{Chunk: c.index, IDs: []string{key}, Err: ErrDuplicateID}
		}
		res, err := decodeEnvelope[R](env, c.batch[pos].ID, status)
		if err != nil {
			return err
		}
		out[pos] = res
	}

	var missing []string
	for i, res := range out {
		if res == nil {
			missing = append(missing, idKey(c.batch[i].ID))
		}
	}
	if len(missing) > 0 {
		return &CorrelationError{Chunk: c.index, IDs: missing, Err: ErrMissingID}
	}
	return nil
}
