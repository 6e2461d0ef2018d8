package endpoint

import (
	"errors"
	"testing"
)

var errSentinel = errors.New("json encode error")

type jsonBadValue struct{}

func (jsonBadValue) MarshalJSON() ([]byte, error) {
	return nil, errSentinel
}

func TestJSON_EncodesWithContentType(t *testing.T) {
	data, ct, err := JSON{Value: map[string]string{"hello": "<world>"}}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if ct != ContentTypeJSON {
		t.Fatalf("expected Content-Type %q, got %q", ContentTypeJSON, ct)
	}
	// No HTML escaping and no trailing newline.
	if got, want := string(data), `{"hello":"<world>"}`; got != want {
		t.Fatalf("expected body %q, got %q", want, got)
	}
}

func TestJSON_EncodeError_ReturnsBuildError(t *testing.T) {
	_, _, err := JSON{Value: jsonBadValue{}}.Encode()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsBuildError(err) {
		t.Fatalf("expected BuildError, got %T", err)
	}
	if !errors.Is(err, errSentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestJSON_UnsupportedValue(t *testing.T) {
	_, _, err := JSON{Value: make(chan int)}.Encode()
	if !IsBuildError(err) {
		t.Fatalf("expected BuildError, got %v", err)
	}
}
