// Package client is a typed HTTP client for the course portal API.
package client

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
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
)

var (
	// ErrNotFound matches any 404 answer; a missing outline or slide deck is
	// a normal state, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrUnreachable wraps transport failures.
	ErrUnreachable = errors.New("portal unreachable")
)

// APIError is a non-2xx answer from the portal.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NotFoundCode is the error code the portal sends with missing records.
const NotFoundCode = "NOT_FOUND"

// Is lets errors.Is(err, ErrNotFound) match the portal's own not-found
// answers. A bare 404 (wrong base URL, unknown route) is a plain error.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound && e.Code == NotFoundCode
}

// File is an upload part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Client talks to the portal API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for transport diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
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

// ListModules returns the modules matching filter.
func (c *Client) ListModules(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	q := url.Values{}
	if filter.Year != "" {
		q.Set("year", filter.Year)
	}
	if filter.Term != "" {
		q.Set("term", filter.Term)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := "/modules"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out dto.ModuleListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Modules, nil
}

// CreateModule adds a module.
func (c *Client) CreateModule(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error) {
	var out dto.ModuleCreatedResponse
	if err := c.doJSON(ctx, http.MethodPost, "/modules", req, &out); err != nil {
		return nil, err
	}
	return &out.Module, nil
}

// DeleteModule removes a module together with its outline and slides.
func (c *Client) DeleteModule(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/modules/"+url.PathEscape(id), nil, nil)
}

// Terms lists the year/term filter options.
func (c *Client) Terms(ctx context.Context) ([]models.TermOption, error) {
	var out dto.TermOptionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/modules/terms", nil, &out); err != nil {
		return nil, err
	}
	return out.Terms, nil
}

// Outline fetches the stored extraction result. A module without one yields
// an error matching ErrNotFound.
func (c *Client) Outline(ctx context.Context, moduleID string) (*dto.OutlineResponse, error) {
	var out dto.OutlineResponse
	if err := c.doJSON(ctx, http.MethodGet, "/modules/"+url.PathEscape(moduleID)+"/outline", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SlideLink returns a fresh signed link to the topic's deck.
func (c *Client) SlideLink(ctx context.Context, moduleID, topic string) (*models.SlideReference, error) {
	var out models.SlideReference
	path := "/modules/" + url.PathEscape(moduleID) + "/topics/" + url.PathEscape(topic) + "/slides"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	out.URL = c.absolute(out.URL)
	return &out, nil
}

// absolute resolves links the portal serves itself against the base URL.
func (c *Client) absolute(link string) string {
	if !strings.HasPrefix(link, "/") {
		return link
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

// UploadOutline submits a course outline. The response body is discarded;
// callers re-fetch the stored result.
func (c *Client) UploadOutline(ctx context.Context, moduleID string, file File) error {
	return c.upload(ctx, "/upload", file, map[string]string{"moduleId": moduleID})
}

// UploadSlides submits a topic's slide deck.
func (c *Client) UploadSlides(ctx context.Context, moduleID, topic string, file File) error {
	return c.upload(ctx, "/uploadppt", file, map[string]string{"moduleId": moduleID, "topic": topic})
}

// Chat asks the topic assistant.
func (c *Client) Chat(ctx context.Context, req dto.ChatRequest) (string, error) {
	if req.ChatHistory == nil {
		empty := []models.ChatMessage{}
		req.ChatHistory = &empty
	}
	var out dto.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat", req, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

func (c *Client) upload(ctx context.Context, path string, file File, fields map[string]string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	header.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("portal request failed", zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeError prefers the server-supplied message and falls back to a
// generic one carrying only the status.
func decodeError(status int, raw []byte) *APIError {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return &APIError{Status: status, Code: body.Code, Message: body.Error}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("Request failed (status: %d)", status)}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
