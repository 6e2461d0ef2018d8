package endpoint

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/oauth2"
)

// HeaderAuthorization is the header written by Bearer, Basic, TokenSource
// and JWT.
const HeaderAuthorization = "Authorization"

// Auth is an authentication scheme applied to an outgoing request.
//
// Apply is called after the target's headers have been set, so it overwrites
// any header of the same name.
type Auth interface {
	Apply(h http.Header) error
}

// Bearer is a bearer token: "Authorization: Bearer <token>".
type Bearer string

// Apply implements Auth.
func (b Bearer) Apply(h http.Header) error {
	h.Set(HeaderAuthorization, "Bearer "+string(b))
	return nil
}

// Basic is HTTP Basic authentication. Password may be empty.
type Basic struct {
	Username string
	Password string
}

// Apply implements Auth.
func (b Basic) Apply(h http.Header) error {
	cred := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	h.Set(HeaderAuthorization, "Basic "+cred)
	return nil
}

// Header is a custom, header-based scheme: the header Name is set to Value.
type Header struct {
	Name  string
	Value string
}

// Apply implements Auth.
func (a Header) Apply(h http.Header) error {
	if a.Name == "" {
		return Errorf(nil, "auth: empty header name")
	}
	h.Set(a.Name, a.Value)
	return nil
}

// APIKey returns a Header scheme sending key in the named header.
func APIKey(name, key string) Header {
	return Header{Name: name, Value: key}
}

// TokenSource authenticates with OAuth2 access tokens. The token is fetched
// from Source each time the scheme is applied; use oauth2.ReuseTokenSource
// to cache tokens between requests.
type TokenSource struct {
	Source oauth2.TokenSource
}

// Apply implements Auth.
func (ts TokenSource) Apply(h http.Header) error {
	if ts.Source == nil {
		return Errorf(nil, "auth: nil token source")
	}
	tok, err := ts.Source.Token()
	if err != nil {
		return Errorf(err, "auth: fetch token")
	}
	if !tok.Valid() {
		return Errorf(errors.New("token expired or empty"), "auth: fetch token")
	}
	h.Set(HeaderAuthorization, tok.Type()+" "+tok.AccessToken)
	return nil
}

// JWT authenticates with an HS256 JSON Web Token minted on every Apply,
// carrying an "iat" claim and, when TTL is positive, an "exp" claim.
//
// This is the scheme used by Ethereum execution clients on the Engine API.
// The token depends on the current time, so requests built with JWT are
// not byte-identical across builds.
type JWT struct {
	// Secret is the shared HMAC key. It must be at least 32 bytes.
	Secret []byte
	TTL    time.Duration

	// Now returns the issue time. When nil, time.Now is used.
	Now func() time.Time
}

// Apply implements Auth.
func (j JWT) Apply(h http.Header) error {
	raw, err := j.Token()
	if err != nil {
		return err
	}
	h.Set(HeaderAuthorization, "Bearer "+raw)
	return nil
}

// Token mints a signed token.
func (j JWT) Token() (string, error) {
	if len(j.Secret) < 32 {
		return "", Errorf(nil, "auth: JWT secret must be at least 32 bytes")
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: j.Secret}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", Errorf(err, "auth: JWT signer")
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	issued := now()
	claims := jwt.Claims{IssuedAt: jwt.NewNumericDate(issued)}
	if j.TTL > 0 {
		claims.Expiry = jwt.NewNumericDate(issued.Add(j.TTL))
	}
	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	if err != nil {
		return "", Errorf(err, "auth: sign JWT")
	}
	return raw, nil
}
