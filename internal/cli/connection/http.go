package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/infra/buildinfo"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 30 * time.Second

// Header names sent with every request.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderClientID  = "X-Client-ID"
)

// Observer receives one observation per backend call.
type Observer interface {
	ObserveRemote(op, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRemote(string, string, time.Duration) {}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTLSConfig sets the transport TLS configuration.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = cfg
		c.client.Transport = t
	}
}

// WithRateLimit limits outgoing requests to r per second with the given
// burst. A zero r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *HTTPClient) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(c *HTTPClient) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

// WithClientID overrides the per-process client ID.
func WithClientID(id string) Option {
	return func(c *HTTPClient) {
		c.clientID = id
	}
}

// HTTPClient provides HTTP communication with the backend.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	observer Observer
	logger   logger.Logger
	clientID string
}

// NewHTTPClient creates a client for the API rooted at baseURL. A missing
// scheme defaults to http.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	c := &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: DefaultTimeout},
		observer: nopObserver{},
		logger:   logger.Default(),
		clientID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ClientID returns the value sent in the X-Client-ID header.
func (c *HTTPClient) ClientID() string {
	return c.clientID
}

// Call sends a JSON request and decodes a JSON reply into out. in and out
// may be nil. token, when set, is sent as a bearer credential. op names the
// call in logs and metrics.
func (c *HTTPClient) Call(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, op, method, path, token, body, contentType, out)
}

// Upload is a file part of a multipart request.
type Upload struct {
	Field    string
	FileName string
	Content  io.Reader
}

// CallMultipart posts fields and file as multipart/form-data.
func (c *HTTPClient) CallMultipart(ctx context.Context, op, path, token string, fields map[string]string, file Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(file.Field, file.FileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("copy %s: %w", file.FileName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.send(ctx, op, http.MethodPost, path, token, &buf, w.FormDataContentType(), out)
}

func (c *HTTPClient) send(ctx context.Context, op, method, path, token string, body io.Reader, contentType string, out any) error {
	start := time.Now()
	log := c.logger.With("op", op, "method", method, "path", path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.observer.ObserveRemote(op, outcomeOf(err), time.Since(start))
			return domain.ErrNetworkFailure.WithCause(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.requestID(ctx)
	c.addHeaders(req, token, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		err = domain.ErrNetworkFailure.WithCause(err)
		c.observer.ObserveRemote(op, outcomeOf(err), time.Since(start))
		log.Debug("request failed", "request_id", requestID, "error", err)
		return err
	}

	err = ParseResponse(resp, out)
	elapsed := time.Since(start)
	c.observer.ObserveRemote(op, outcomeOf(err), elapsed)
	log.Debug("request done", "request_id", requestID, "status", resp.StatusCode, "elapsed", elapsed)
	return err
}

// requestID reuses the ID carried by ctx or mints a new ULID.
func (c *HTTPClient) requestID(ctx context.Context) string {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return NewRequestID()
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, token, requestID string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set(HeaderClientID, c.clientID)
}

// NewRequestID returns a fresh ULID string.
func NewRequestID() string {
	return ulid.Make().String()
}
