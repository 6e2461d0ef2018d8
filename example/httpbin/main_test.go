package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mnehpets/oneclient/endpoint"
	"github.com/mnehpets/oneclient/provider"
	"github.com/rs/zerolog"
)

// fakeBin echoes requests the way httpbin.org does.
func fakeBin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Path, "/basic-auth/") {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "user" || pass != "passwd" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(AuthResult{Authenticated: true, User: user})
			return
		}

		echo := Echo{Args: map[string]string{}, Form: map[string]string{}, Headers: map[string]string{}, URL: r.URL.String()}
		for k := range r.URL.Query() {
			echo.Args[k] = r.URL.Query().Get(k)
		}
		for k := range r.Header {
			echo.Headers[k] = r.Header.Get(k)
		}
		body, _ := io.ReadAll(r.Body)
		switch r.Header.Get("Content-Type") {
		case endpoint.ContentTypeJSON:
			json.Unmarshal(body, &echo.JSON)
		case endpoint.ContentTypeForm:
			form, _ := url.ParseQuery(string(body))
			for k := range form {
				echo.Form[k] = form.Get(k)
			}
		}
		json.NewEncoder(w).Encode(echo)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPBin_Endpoints(t *testing.T) {
	srv := fakeBin(t)
	p := newProvider(srv.URL, zerolog.Nop())
	ctx := context.Background()

	echo, err := provider.JSON[Echo](ctx, p, Get(map[string]string{"q": "one client"}))
	if err != nil {
		t.Fatalf("GET returned error: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"q": "one client"}, echo.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if echo.Headers["User-Agent"] != "oneclient-httpbin" || echo.Headers["Accept"] != endpoint.ContentTypeJSON {
		t.Errorf("unexpected headers %v", echo.Headers)
	}

	echo, err = provider.JSON[Echo](ctx, p, Post(map[string]any{"stars": 42}))
	if err != nil {
		t.Fatalf("POST returned error: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"stars": float64(42)}, echo.JSON); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}

	echo, err = provider.JSON[Echo](ctx, p, Form(endpoint.Field{Key: "b", Value: "x y"}))
	if err != nil {
		t.Fatalf("form POST returned error: %v", err)
	}
	if echo.Form["b"] != "x y" {
		t.Errorf("unexpected form %v", echo.Form)
	}
}

func TestHTTPBin_BasicAuth(t *testing.T) {
	srv := fakeBin(t)
	p := newProvider(srv.URL, zerolog.Nop())

	auth, err := provider.JSON[AuthResult](context.Background(), p, BasicAuth("user", "passwd"))
	if err != nil {
		t.Fatalf("basic auth returned error: %v", err)
	}
	if !auth.Authenticated || auth.User != "user" {
		t.Fatalf("unexpected result %+v", auth)
	}

	_, err = provider.JSON[AuthResult](context.Background(), p, BasicAuth("user", "wrong"))
	var se *provider.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestRun(t *testing.T) {
	srv := fakeBin(t)
	if err := run(context.Background(), newProvider(srv.URL, zerolog.Nop()), "user", "passwd"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}
