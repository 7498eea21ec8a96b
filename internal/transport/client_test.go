package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testClient(cfg Config, cache *Cache) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	return New(cfg, cache, zerolog.Nop())
}

func TestCall_InjectsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(Config{Username: "user", Password: "pass"}, nil)
	if _, err := c.Call(context.Background(), srv.URL, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "user" || gotPass != "pass" {
		t.Fatalf("expected basic auth user/pass, got %q/%q", gotUser, gotPass)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected Accept application/json, got %q", gotAccept)
	}
}

func TestCall_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := testClient(Config{}, nil)
	body, err := c.Call(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestCall_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(Config{}, nil)
	_, err := c.Call(context.Background(), srv.URL, Options{})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *transport.Error, got %T", err)
	}
	if terr.Kind != KindRequestFailed || terr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected error: %+v", terr)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

// The policy retries 4xx like everything else; the one carve-out is 404 with
// StopOnNotFound set.
func TestCall_ClientErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(Config{}, nil)
	_, err := c.Call(context.Background(), srv.URL, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 403 to burn the full retry budget (3 attempts), got %d", calls.Load())
	}
}

func TestCall_NotFoundIsTerminalWhenOpted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(Config{}, nil)
	_, err := c.Call(context.Background(), srv.URL, Options{StopOnNotFound: true})
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCall_TimeoutKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := testClient(Config{Timeout: 20 * time.Millisecond, MaxRetries: 1}, nil)
	_, err := c.Call(context.Background(), srv.URL, Options{})
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindTimeout {
		t.Fatalf("expected KindTimeout, got %v", err)
	}
}

func TestCall_LinearBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	unit := 30 * time.Millisecond
	c := testClient(Config{RetryDelay: unit}, nil)
	start := time.Now()
	_, _ = c.Call(context.Background(), srv.URL, Options{})
	elapsed := time.Since(start)

	// attempt 1, wait 1×unit, attempt 2, wait 2×unit, attempt 3
	if elapsed < 3*unit {
		t.Fatalf("expected at least %v of linear backoff, ran in %v", 3*unit, elapsed)
	}
}
