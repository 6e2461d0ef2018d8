package endpoint

import (
	"net/url"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeCBOR = "application/cbor"
)

// Body is a request body.
//
// Protocol:
//   - Encode returns the exact bytes to send and the Content-Type they
//     require. An empty contentType leaves the Content-Type header untouched.
//   - Encode must be deterministic: encoding the same Body twice yields the
//     same bytes.
type Body interface {
	Encode() (data []byte, contentType string, err error)
}

// NoBody is the empty Body.
var NoBody Body = noBody{}

type noBody struct{}

func (noBody) Encode() ([]byte, string, error) { return nil, "", nil }

// Raw is a Body sent verbatim. It does not set a Content-Type; targets
// sending raw bytes declare it in Headers.
type Raw []byte

// Encode implements Body.
func (r Raw) Encode() ([]byte, string, error) {
	return []byte(r), "", nil
}

// Field is one key/value pair of a Form.
type Field struct {
	Key   string
	Value string
}

// Form is a Body of form-urlencoded pairs. Pairs are encoded in order and
// keys may repeat.
type Form []Field

// Encode implements Body.
func (f Form) Encode() ([]byte, string, error) {
	var sb strings.Builder
	for i, field := range f {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(field.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(field.Value))
	}
	return []byte(sb.String()), ContentTypeForm, nil
}

// cborEncMode uses core deterministic encoding so map keys are sorted and
// repeated encodes are byte-identical.
var cborEncMode, _ = cbor.CoreDetEncOptions().EncMode()

// CBOR is a Body that serializes Value as CBOR.
type CBOR struct {
	Value any
}

// Encode implements Body.
func (c CBOR) Encode() ([]byte, string, error) {
	data, err := cborEncMode.Marshal(c.Value)
	if err != nil {
		return nil, "", Errorf(err, "encode CBOR body")
	}
	return data, ContentTypeCBOR, nil
}
