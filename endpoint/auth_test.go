package endpoint

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/oauth2"
)

func TestAuth_Headers(t *testing.T) {
	tests := []struct {
		name   string
		auth   Auth
		header string
		want   string
	}{
		{"Bearer", Bearer("tok"), "Authorization", "Bearer tok"},
		// base64("user:pass")
		{"Basic", Basic{Username: "user", Password: "pass"}, "Authorization", "Basic dXNlcjpwYXNz"},
		// base64("user:")
		{"Basic without password", Basic{Username: "user"}, "Authorization", "Basic dXNlcjo="},
		{"Header", Header{Name: "X-Api-Key", Value: "k"}, "X-Api-Key", "k"},
		{"APIKey", APIKey("x-token", "secret"), "X-Token", "secret"},
		{"TokenSource", TokenSource{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "oauth"})}, "Authorization", "Bearer oauth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if err := tt.auth.Apply(h); err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if got := h.Get(tt.header); got != tt.want {
				t.Errorf("expected %s %q, got %q", tt.header, tt.want, got)
			}
		})
	}
}

func TestAuth_OverwritesExistingHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "X")
	if err := Bearer("Y").Apply(h); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := h.Values("Authorization"); len(got) != 1 || got[0] != "Bearer Y" {
		t.Fatalf("expected single %q, got %v", "Bearer Y", got)
	}
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("no token") }

func TestAuth_Errors(t *testing.T) {
	tests := []struct {
		name string
		auth Auth
	}{
		{"empty header name", Header{Value: "v"}},
		{"nil token source", TokenSource{}},
		{"failing token source", TokenSource{Source: failingSource{}}},
		{"empty token", TokenSource{Source: oauth2.StaticTokenSource(&oauth2.Token{})}},
		{"short JWT secret", JWT{Secret: []byte("short")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auth.Apply(http.Header{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !IsBuildError(err) {
				t.Fatalf("expected BuildError, got %T", err)
			}
		})
	}
}

func TestJWT_SignsVerifiableToken(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	issued := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	auth := JWT{Secret: secret, TTL: time.Minute, Now: func() time.Time { return issued }}

	h := http.Header{}
	if err := auth.Apply(h); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	value := h.Get("Authorization")
	raw, ok := strings.CutPrefix(value, "Bearer ")
	if !ok {
		t.Fatalf("expected Bearer token, got %q", value)
	}

	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		t.Fatalf("ParseSigned returned error: %v", err)
	}
	var claims jwt.Claims
	if err := tok.Claims(secret, &claims); err != nil {
		t.Fatalf("Claims returned error: %v", err)
	}
	if !claims.IssuedAt.Time().Equal(issued) {
		t.Errorf("expected iat %v, got %v", issued, claims.IssuedAt.Time())
	}
	if !claims.Expiry.Time().Equal(issued.Add(time.Minute)) {
		t.Errorf("expected exp %v, got %v", issued.Add(time.Minute), claims.Expiry.Time())
	}

	var wrong jwt.Claims
	if err := tok.Claims([]byte(strings.Repeat("x", 32)), &wrong); err == nil {
		t.Error("expected verification with the wrong key to fail")
	}
}

func TestJWT_NoExpiryWithoutTTL(t *testing.T) {
	raw, err := JWT{Secret: []byte(strings.Repeat("s", 32))}.Token()
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		t.Fatalf("ParseSigned returned error: %v", err)
	}
	var claims jwt.Claims
	if err := tok.UnsafeClaimsWithoutVerification(&claims); err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims.Expiry != nil {
		t.Errorf("expected no exp claim, got %v", claims.Expiry.Time())
	}
	if claims.IssuedAt == nil {
		t.Error("expected iat claim")
	}
}
