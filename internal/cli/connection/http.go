package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/telemetry/logger"
	"github.com/yndnr/cricket-go/internal/telemetry/tracer"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://10.0.2.2:5000"

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 10 << 20

// RequestObserver receives one observation per call. status is 0 when
// no response arrived.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}

// HTTPClient provides HTTP communication with the backend.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
	logger    logger.Logger
	metrics   RequestObserver
	tracer    trace.Tracer
	requestID func() string

	mu        sync.RWMutex
	authToken string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// WithMetrics reports every call to o.
func WithMetrics(o RequestObserver) Option {
	return func(c *HTTPClient) {
		if o != nil {
			c.metrics = o
		}
	}
}

// WithTracer sets the tracer used for call spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *HTTPClient) {
		c.tracer = t
	}
}

// WithRequestIDFunc overrides X-Request-ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *HTTPClient) {
		c.requestID = fn
	}
}

// NewHTTPClient creates a new HTTP client for server. An empty server
// means DefaultBaseURL.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{},
		userAgent: "cricket-cli/dev",
		logger:    logger.Default(),
		metrics:   nopObserver{},
		tracer:    tracer.Global(),
		requestID: func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthToken sets the default Authorization header. An empty token
// removes it.
func (c *HTTPClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// HasAuthToken reports whether calls currently carry a Bearer token.
func (c *HTTPClient) HasAuthToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken != ""
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Call performs the request described by ep. args fill the path
// placeholders in order. body, if non-nil, is sent as JSON; a 2xx JSON
// response is decoded into out, if non-nil.
func (c *HTTPClient) Call(ctx context.Context, ep domain.Endpoint, args []string, body, out any) error {
	path, err := ep.Expand(args...)
	if err != nil {
		return err
	}
	return c.do(ctx, ep.Name, ep.Method, path, body, out)
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, "GET "+path, http.MethodGet, path, nil, out)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, "POST "+path, http.MethodPost, path, body, out)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, "DELETE "+path, http.MethodDelete, path, nil, out)
}

func (c *HTTPClient) do(ctx context.Context, name, method, path string, body, out any) (err error) {
	reqID := c.requestID()
	ctx = logger.WithRequestID(ctx, reqID)
	ctx, span := c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("cricket.request_id", reqID),
		))

	start := time.Now()
	status := 0
	log := c.logger.WithContext(ctx)
	defer func() {
		elapsed := time.Since(start)
		c.metrics.ObserveRequest(name, status, elapsed)
		if status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		tracer.End(span, err)
		if err != nil {
			log.Debug("backend call failed", "endpoint", name, "status", status, "elapsed", elapsed, "error", err)
		} else {
			log.Debug("backend call", "endpoint", name, "status", status, "elapsed", elapsed)
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.ErrEncodeRequest.WithCause(err)
		}
		bodyReader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if cerr := contextError(ctx); cerr != nil {
			return cerr
		}
		return domain.NewNetworkError(method, url, err)
	}
	status = resp.StatusCode

	err = ParseResponse(resp, out)
	if cerr := contextError(ctx); cerr != nil {
		// The caller is gone; whatever arrived is stale.
		return cerr
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		netErr.Op, netErr.URL = method, url
	}
	return err
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, reqID string) {
	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
}

func contextError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrRequestTimeout.WithCause(err)
	default:
		return domain.ErrRequestCanceled.WithCause(err)
	}
}

// ParseResponse reads and closes the response body. A 2xx JSON body is
// decoded into target (if non-nil and the body is not empty); any other
// status becomes a *domain.HTTPError carrying the backend message.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.NewNetworkError("", "", fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewHTTPError(resp.StatusCode, errorMessage(data), data)
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return domain.ErrDecodeResponse.WithCause(err)
	}
	return nil
}

// errorMessage extracts the backend message from an error body shaped
// {"error": "..."}, falling back to {"message": "..."}.
func errorMessage(data []byte) string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok && s != "" {
		return s
	}
	return body.Message
}
