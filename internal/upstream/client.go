// Package upstream is the REST client for the attendance platform API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/lee-tech/workforce-admin/internal/models"
)

const maxResponseBytes = 8 << 20

type tokenKey struct{}

// WithToken returns a context whose upstream calls carry token as a bearer
// credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token stored by WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Observer records call outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveUpstream(method string, status int, elapsed time.Duration)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(c *Client) {
		if observer != nil {
			c.observer = observer
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, int, time.Duration) {}

// Client issues JSON requests against the platform API and unwraps its
// response envelope. Calls are never retried.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", baseURL)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	c := &Client{
		baseURL:  parsed,
		http:     httpClient,
		observer: nopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one request. The envelope's data member is decoded into out when
// out is non-nil; a body without a data member is decoded whole.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observer.ObserveUpstream(method, 0, time.Since(start))
		c.logger.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &APIError{Message: "platform API unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observer.ObserveUpstream(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "failed to read platform response", Err: err}
	}

	var env models.Envelope
	hasEnvelope := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil

	if apiErr := errorFor(resp.StatusCode, env, hasEnvelope); apiErr != nil {
		c.logger.Warn("upstream request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	data := dataMember(raw)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "unexpected platform response", Err: err}
	}
	return nil
}

// dataMember returns the envelope's data member, or the whole body when the
// body is not an object carrying one.
func dataMember(raw []byte) []byte {
	var members map[string]json.RawMessage
	if json.Unmarshal(raw, &members) != nil {
		return raw
	}
	if data, ok := members["data"]; ok {
		return bytes.TrimSpace(data)
	}
	return raw
}

// resolve joins path onto the base URL. path is expected to be escaped
// already.
func (c *Client) resolve(path string, query url.Values) string {
	target := strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func errorFor(httpStatus int, env models.Envelope, hasEnvelope bool) *APIError {
	status := httpStatus
	if hasEnvelope && env.StatusCode >= http.StatusBadRequest && status < http.StatusBadRequest {
		status = env.StatusCode
	}
	if status < http.StatusBadRequest {
		return nil
	}

	apiErr := &APIError{Status: status}
	if hasEnvelope {
		apiErr.Code, apiErr.Message = normalizeError(env.Error)
		if msg := strings.TrimSpace(env.Message); msg != "" {
			apiErr.Message = msg
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// normalizeError turns the envelope's error member, which may be a string, a
// boolean or an object, into a code and a message.
func normalizeError(raw json.RawMessage) (code, message string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ""
	}

	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text, text
	}

	var flag bool
	if json.Unmarshal(raw, &flag) == nil {
		return "", ""
	}

	var obj struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		message = obj.Message
		if message == "" {
			message = obj.Error
		}
		return obj.Code, message
	}
	return "", string(raw)
}
