package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

func configWithBase(base string) config.UpstreamConfig {
	return config.UpstreamConfig{BaseURL: base, Timeout: time.Second}
}

type stubDoer struct {
	status  int
	body    string
	err     error
	gotReq  *http.Request
	gotBody string
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	d.gotReq = req
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		d.gotBody = string(raw)
	}
	if d.err != nil {
		return nil, d.err
	}
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func newTestClient(t *testing.T, doer Doer) *Client {
	t.Helper()
	client, err := NewWithDoer("https://upstream.example.com", doer, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestDoSendsBearerAndBody(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{status: http.StatusOK, body: `{"ok":true}`}
	client := newTestClient(t, doer)

	var out map[string]bool
	err := client.Do(context.Background(), http.MethodPost, "/orders", "tok", map[string]string{"a": "b"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doer.gotReq.Header.Get("Authorization") != "Bearer tok" {
		t.Fatalf("unexpected auth header: %q", doer.gotReq.Header.Get("Authorization"))
	}
	if doer.gotReq.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type: %q", doer.gotReq.Header.Get("Content-Type"))
	}
	var sent map[string]string
	if err := json.Unmarshal([]byte(doer.gotBody), &sent); err != nil || sent["a"] != "b" {
		t.Fatalf("unexpected request body: %q", doer.gotBody)
	}
	if !out["ok"] {
		t.Fatalf("expected decoded response, got %v", out)
	}
}

func TestDoOmitsAuthWithoutToken(t *testing.T) {
	t.Parallel()

	doer := &stubDoer{status: http.StatusOK, body: `{}`}
	client := newTestClient(t, doer)

	if err := client.Do(context.Background(), http.MethodGet, "/products", "", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doer.gotReq.Header.Get("Authorization") != "" {
		t.Fatal("expected no auth header")
	}
}

func TestDoMapsStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnprocessableEntity, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		client := newTestClient(t, &stubDoer{status: tc.status, body: `{"message":"nope"}`})
		err := client.Do(context.Background(), http.MethodGet, "/products", "", nil, nil)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Fatalf("status %d: expected code %s, got %v", tc.status, tc.code, err)
		}
		if typed.Message() != "nope" {
			t.Fatalf("status %d: expected upstream message surfaced, got %q", tc.status, typed.Message())
		}
	}
}

func TestDoTransportFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &stubDoer{err: io.ErrUnexpectedEOF})
	err := client.Do(context.Background(), http.MethodGet, "/products", "", nil, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &stubDoer{status: http.StatusBadRequest, body: `{"message":"stock insuficiente"}`})
	err := client.Do(context.Background(), http.MethodGet, "/products", "", nil, nil)
	if got := Message(err); got != "stock insuficiente" {
		t.Fatalf("expected upstream message, got %q", got)
	}
	if got := Message(io.ErrUnexpectedEOF); got != "" {
		t.Fatalf("expected empty message for untyped error, got %q", got)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test"})
	if _, err := New(configWithBase("/relative"), logg); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
