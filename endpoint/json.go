package endpoint

import (
	"bytes"
	"encoding/json"
)

// ContentTypeJSON is the Content-Type set for JSON bodies.
const ContentTypeJSON = "application/json"

// JSON is a Body that serializes Value as JSON.
//
// HTML characters are not escaped, and no trailing newline is written.
//
// Error handling:
//   - If encoding fails, Encode returns a BuildError wrapping the encoding
//     error and the request is never sent.
type JSON struct {
	Value any
}

// Encode implements Body.
func (j JSON) Encode() ([]byte, string, error) {
	data, err := MarshalJSON(j.Value)
	if err != nil {
		return nil, "", Errorf(err, "encode JSON body")
	}
	return data, ContentTypeJSON, nil
}

// MarshalJSON encodes v the way JSON bodies are encoded.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder appends a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
