package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Backend routes.
const (
	PathOutline = "/process-outline"
	PathSlides  = "/process-ppt"
	PathChat    = "/process-chat"
)

// ErrUnreachable wraps transport failures talking to the backend.
var ErrUnreachable = errors.New("processing backend unreachable")

// File is a multipart file part forwarded to the backend.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// ChatTurn is one transcript entry in the backend's history format.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is the /process-chat payload.
type ChatRequest struct {
	Message     string     `json:"message"`
	Topic       string     `json:"topic"`
	ModuleID    string     `json:"moduleId"`
	ChatHistory []ChatTurn `json:"chatHistory"`
}

// Observer receives one observation per backend call.
type Observer interface {
	ObserveBackendCall(operation string, kind string, status int, duration time.Duration)
}

// Client talks to the extraction and chat backend. Calls are made once;
// nothing is retried and no timeout beyond the transport's is applied.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver records call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New constructs a backend client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// ProcessOutline forwards a course outline for extraction.
func (c *Client) ProcessOutline(ctx context.Context, moduleID string, file File) (Result, error) {
	return c.postMultipart(ctx, "outline", PathOutline, file, map[string]string{"moduleId": moduleID})
}

// ProcessSlides forwards a topic's slide deck.
func (c *Client) ProcessSlides(ctx context.Context, moduleID, topic string, file File) (Result, error) {
	return c.postMultipart(ctx, "slides", PathSlides, file, map[string]string{"moduleId": moduleID, "topic": topic})
}

// Chat forwards a question with its trimmed history.
func (c *Client) Chat(ctx context.Context, payload ChatRequest) (Result, error) {
	if payload.ChatHistory == nil {
		payload.ChatHistory = []ChatTurn{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode chat request: %w", err)
	}
	return c.do(ctx, "chat", PathChat, "application/json", bytes.NewReader(body))
}

func (c *Client) postMultipart(ctx context.Context, op, path string, file File, fields map[string]string) (Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, file, fields))
	}()

	res, err := c.do(ctx, op, path, mw.FormDataContentType(), pr)
	// The backend may answer before draining the body; the writer must stop
	// reading file.Content before the caller reuses it.
	_ = pr.Close()
	<-done
	return res, err
}

func writeForm(mw *multipart.Writer, file File, fields map[string]string) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return err
	}
	for _, name := range []string{"moduleId", "topic"} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "transport_error", http.StatusBadGateway, time.Since(start))
		c.logger.Warn("processing backend unreachable", zap.String("operation", op), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(op, "transport_error", http.StatusBadGateway, time.Since(start))
		return Result{}, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	result := Decode(resp.StatusCode, raw)
	c.observe(op, result.Kind.String(), resp.StatusCode, time.Since(start))
	if !result.OK() {
		c.logger.Info("processing backend returned error",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.Stringer("kind", result.Kind),
		)
	}
	return result, nil
}

func (c *Client) observe(op, kind string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, kind, status, d)
	}
}
