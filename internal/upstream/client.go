// Package upstream is the boundary to the remote storefront REST API. Every
// outbound call the gateway makes (catalog reads, login, order creation,
// back-office writes) goes through this client.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

// Doer lets tests substitute the transport.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL *url.URL
	http    Doer
	logg    *logger.Logger
}

// New builds a client for the configured upstream API.
func New(cfg config.UpstreamConfig, logg *logger.Logger) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url %q: %w", cfg.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", cfg.BaseURL)
	}
	return &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

// NewWithDoer wires a custom transport, used by tests.
func NewWithDoer(baseURL string, doer Doer, logg *logger.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url %q: %w", baseURL, err)
	}
	return &Client{baseURL: parsed, http: doer, logg: logg}, nil
}

// errorBody is the upstream's error envelope.
type errorBody struct {
	Message string `json:"message"`
}

// StatusError surfaces a non-2xx upstream response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// Do issues a JSON request against the upstream API. A non-empty token is sent
// as a bearer credential. The response body is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path, token string, in, out any) error {
	rel := &url.URL{Path: path}
	target := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode upstream request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upstream unreachable")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upstream response")
		}
	}
	return nil
}

// Ping verifies the upstream is reachable; used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping upstream: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func statusError(resp *http.Response) error {
	cause := &StatusError{Status: resp.StatusCode}
	var envelope errorBody
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		cause.Message = strings.TrimSpace(envelope.Message)
	}

	message := cause.Message
	if message == "" {
		message = "upstream request rejected"
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, message)
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, cause, message)
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, message)
	}
}

// Message extracts the upstream-provided message from an error chain, or ""
// when the failure carried none.
func Message(err error) string {
	var typed *StatusError
	if errors.As(err, &typed) {
		return typed.Message
	}
	return ""
}
