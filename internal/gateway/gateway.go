// Package gateway is the single entry point for every call to the J-Tracker backend.
// It builds the request, attaches the bearer token, decodes the response, and maps
// failures to *Error. A 401 clears the stored session as a side effect.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:5000"

// maxErrorBody bounds how much of a non-JSON error body is kept in Error.Message.
const maxErrorBody = 200

// Session is the part of the session store the gateway needs.
type Session interface {
	Token(ctx context.Context) string
	Clear(ctx context.Context) error
}

// Request describes one backend call.
type Request struct {
	Method  string
	URL     string // path suffix, e.g. "/applications/3"
	Headers map[string]string
	Params  url.Values
	Body    any // JSON encoded, unless it is a *Multipart
}

// FilePart is one file in a multipart upload.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Files  []FilePart
	Fields map[string]string
}

// Response is the raw result of a successful call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Error is returned for every failed call. Status is 0 when the request never
// got a response.
type Error struct {
	Method  string
	URL     string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    Session
	Logger     *zap.Logger
	Metrics    *Metrics
}

// Client performs backend calls.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
	logger  *zap.Logger
	metrics *Metrics
}

// New creates a Client. A nil Session means calls are sent without a token.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		session: opts.Session,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs the call and decodes a 2xx JSON payload into out. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &Error{
			Method:  req.Method,
			URL:     req.URL,
			Status:  resp.Status,
			Message: "failed to decode response",
			Cause:   err,
		}
	}
	return nil
}

// DoRaw performs the call and returns the undecoded response on 2xx.
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
		req.Method = method
	}

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(req, 0, elapsed)
		c.logger.Debug("gateway request failed",
			zap.String("method", method),
			zap.String("path", req.URL),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, &Error{Method: method, URL: req.URL, Message: "request failed", Cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	c.observe(req, httpResp.StatusCode, elapsed)
	c.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", req.URL),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", elapsed))
	if err != nil {
		return nil, &Error{
			Method:  method,
			URL:     req.URL,
			Status:  httpResp.StatusCode,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		if httpResp.StatusCode == http.StatusUnauthorized {
			c.invalidate(context.WithoutCancel(ctx))
		}
		return nil, &Error{
			Method:  method,
			URL:     req.URL,
			Status:  httpResp.StatusCode,
			Message: errorMessage(httpResp.StatusCode, body),
		}
	}

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	target, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(req.URL, "/"))
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Message: "invalid URL", Cause: err}
	}
	if len(req.Params) > 0 {
		q := target.Query()
		for key, values := range req.Params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Message: "failed to encode body", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, &Error{Method: req.Method, URL: req.URL, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.session != nil {
		if token := c.session.Token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

func (c *Client) invalidate(ctx context.Context) {
	if c.session == nil {
		return
	}
	if err := c.session.Clear(ctx); err != nil {
		c.logger.Error("failed to clear session after 401", zap.Error(err))
		return
	}
	c.logger.Info("session cleared after unauthorized response")
}

func (c *Client) observe(req Request, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.observe(req.Method, req.URL, status, elapsed)
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return encodeMultipart(b)
	case []byte:
		return bytes.NewReader(b), "application/json", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func encodeMultipart(m *Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range m.Fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy %s: %w", f.FileName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// errorMessage prefers the backend's {"error": "..."} body, then the raw body,
// then the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text != "" && !strings.HasPrefix(text, "<") {
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody] + "..."
		}
		return text
	}
	return http.StatusText(status)
}
