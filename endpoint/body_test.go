package endpoint

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestNoBody(t *testing.T) {
	data, ct, err := NoBody.Encode()
	if err != nil || data != nil || ct != "" {
		t.Fatalf("expected empty encoding, got %q %q %v", data, ct, err)
	}
}

func TestRaw_SentVerbatimWithoutContentType(t *testing.T) {
	data, ct, err := Raw("\x00\x01raw").Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !bytes.Equal(data, []byte("\x00\x01raw")) {
		t.Fatalf("unexpected data %q", data)
	}
	if ct != "" {
		t.Fatalf("expected no Content-Type, got %q", ct)
	}
}

func TestForm_KeepsOrderAndRepeats(t *testing.T) {
	f := Form{{"b", "2"}, {"a", "x y"}, {"b", "&"}}
	data, ct, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if ct != ContentTypeForm {
		t.Fatalf("expected Content-Type %q, got %q", ContentTypeForm, ct)
	}
	if got, want := string(data), "b=2&a=x+y&b=%26"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCBOR_RoundTripAndDeterministic(t *testing.T) {
	v := map[string]int{"z": 1, "a": 2, "m": 3}
	first, ct, err := CBOR{Value: v}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if ct != ContentTypeCBOR {
		t.Fatalf("expected Content-Type %q, got %q", ContentTypeCBOR, ct)
	}
	for i := 0; i < 10; i++ {
		again, _, _ := CBOR{Value: v}.Encode()
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding %d differs", i)
		}
	}

	var decoded map[string]int
	if err := cbor.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded["a"] != 2 || decoded["z"] != 1 || decoded["m"] != 3 {
		t.Fatalf("unexpected decoded value %v", decoded)
	}
}

func TestCBOR_EncodeError(t *testing.T) {
	_, _, err := CBOR{Value: make(chan int)}.Encode()
	if !IsBuildError(err) {
		t.Fatalf("expected BuildError, got %v", err)
	}
}
