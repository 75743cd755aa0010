package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-call identifier for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// RequestOptions describes a single Gateway call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON encoded unless it is a RawBody or json.RawMessage.
	Body any
	// Header is merged into the request. Authorization is never taken from here.
	Header http.Header
}

// RawBody is sent to the server byte-for-byte with the given content type.
type RawBody struct {
	ContentType string
	Reader      io.Reader
}

// Gateway is the single path through which protected API calls are made.
// It attaches the stored bearer token and clears the store when the server
// rejects it.
type Gateway struct {
	baseURL    string
	store      CredentialStore
	httpClient *http.Client
	logger     *zap.Logger

	mu             sync.RWMutex
	onUnauthorized []func()
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayHTTPClient overrides the HTTP client used for API calls.
func WithGatewayHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithGatewayLogger sets the logger used for request diagnostics.
func WithGatewayLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithUnauthorizedHandler registers fn to run after the store is cleared on a 401.
// It does not run when the rejected token was already replaced in the store.
func WithUnauthorizedHandler(fn func()) GatewayOption {
	return func(g *Gateway) {
		g.onUnauthorized = append(g.onUnauthorized, fn)
	}
}

// NewGateway creates a Gateway for the API at baseURL backed by store.
func NewGateway(baseURL string, store CredentialStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// BaseURL returns the API origin the Gateway talks to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Store returns the credential store the Gateway reads from.
func (g *Gateway) Store() CredentialStore {
	return g.store
}

// OnUnauthorized registers fn to run after the store is cleared on a 401.
func (g *Gateway) OnUnauthorized(fn func()) {
	g.mu.Lock()
	g.onUnauthorized = append(g.onUnauthorized, fn)
	g.mu.Unlock()
}

// Request performs an authenticated call and returns the response body verbatim.
// The body is guaranteed to be valid JSON; a 2xx response without a body yields "null".
func (g *Gateway) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	token, err := g.store.Get()
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "credential store unavailable", Err: err}
	}
	if token == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: "not logged in"}
	}

	status, body, err := g.send(ctx, path, opts, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		g.invalidate(path, token)
		return nil, &Error{Kind: KindUnauthorized, Status: status, Code: "unauthorized", Message: "session expired or revoked"}
	}

	return interpret(status, body)
}

// PublicRequest performs a call without a bearer token. A 401 here is an
// ordinary failure and does not touch the credential store.
func (g *Gateway) PublicRequest(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	status, body, err := g.send(ctx, path, opts, "")
	if err != nil {
		return nil, err
	}
	return interpret(status, body)
}

// Do performs an authenticated call and decodes the JSON body into T.
func Do[T any](ctx context.Context, g *Gateway, path string, opts RequestOptions) (T, error) {
	var out T
	raw, err := g.Request(ctx, path, opts)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &Error{Kind: KindInvalidResponse, Message: "unexpected response shape", Body: string(raw), Err: err}
	}
	return out, nil
}

// invalidate clears the store and notifies the handlers, unless the store
// already holds a credential other than the rejected one.
func (g *Gateway) invalidate(path, rejected string) {
	current, err := g.store.Get()
	if err == nil && current != rejected {
		g.logger.Debug("ignoring rejection of a replaced credential", zap.String("path", path))
		return
	}
	if err := g.store.Clear(); err != nil {
		g.logger.Error("failed to clear rejected credential", zap.String("path", path), zap.Error(err))
	}

	g.mu.RLock()
	handlers := append([]func(){}, g.onUnauthorized...)
	g.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

func (g *Gateway) send(ctx context.Context, path string, opts RequestOptions, token string) (int, []byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, g.url(path), body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range opts.Header {
		if http.CanonicalHeaderKey(key) == "Authorization" {
			continue
		}
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := g.httpClient
	if token != "" {
		authed := *g.httpClient
		authed.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   g.httpClient.Transport,
		}
		client = &authed
	}

	log := g.logger.With(zap.String("request_id", requestID), zap.String("method", method), zap.String("path", path))
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return 0, nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("reading response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return 0, nil, &Error{Kind: KindNetwork, Message: "failed to read response", Err: err}
	}

	log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	return resp.StatusCode, data, nil
}

func (g *Gateway) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.baseURL + path
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case RawBody:
		return b.Reader, b.ContentType, nil
	case *RawBody:
		return b.Reader, b.ContentType, nil
	case json.RawMessage:
		return bytes.NewReader(b), "application/json", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// interpret maps a received response onto the Gateway's result contract.
func interpret(status int, body []byte) (json.RawMessage, error) {
	ok := status >= 200 && status < 300

	if len(bytes.TrimSpace(body)) == 0 {
		if ok {
			return json.RawMessage("null"), nil
		}
		return nil, &Error{Kind: KindRequestFailed, Status: status, Code: string(KindRequestFailed), Message: http.StatusText(status)}
	}

	if !json.Valid(body) {
		return nil, &Error{Kind: KindInvalidResponse, Status: status, Message: "invalid server response", Body: string(body)}
	}

	if !ok {
		code, message := errorFields(body)
		return nil, &Error{Kind: KindRequestFailed, Status: status, Code: code, Message: message}
	}

	return json.RawMessage(body), nil
}

// errorFields reads the server's error code and message when the body is an object.
func errorFields(body []byte) (string, string) {
	var payload struct {
		Error   any    `json:"error"`
		Code    any    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	code := string(KindRequestFailed)
	if s, ok := payload.Error.(string); ok && s != "" {
		code = s
	} else if s, ok := payload.Code.(string); ok && s != "" {
		code = s
	}

	return code, payload.Message
}
