// Package client submits a main document and its comparison folder to a plagiarism-check
// endpoint and decodes the per-file results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"plagcheck/internal/model"
	"plagcheck/internal/upload"
)

const (
	// CheckPath is the endpoint path that accepts a check.
	CheckPath = "/check-plagiarism-folder"

	// MainField and FolderField are the multipart field names the endpoint reads.
	MainField   = "doc1"
	FolderField = "folder"
)

var (
	ErrMainDocumentRequired = errors.New("please select a main document")
	ErrCheckInProgress      = errors.New("a check is already in progress")
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d - %s", e.Code, e.Text)
}

// Client talks to one endpoint. At most one check runs at a time per Client.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
	busy    atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each check, independent of the HTTP client in use. Zero means no
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for the endpoint at base. The check path is appended unless
// base already ends with it.
func New(base string, opts ...Option) *Client {
	c := &Client{
		url:  checkURL(base),
		http: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL is the full address checks are posted to.
func (c *Client) URL() string {
	return c.url
}

func checkURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, CheckPath) {
		return base
	}
	return base + CheckPath
}

// Check uploads the selection and returns the results in the order the server sent them.
// Without a main document it fails before any request is made.
func (c *Client) Check(ctx context.Context, sel upload.Selection) ([]model.FileResult, error) {
	if sel.Main == nil {
		return nil, ErrMainDocumentRequired
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer c.busy.Store(false)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := buildForm(sel)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	c.log.Debug("check response",
		zap.String("url", c.url),
		zap.Int("status", resp.StatusCode),
		zap.Int("folder_files", len(sel.Folder)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	files, err := decodeResults(raw)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return files, nil
}

func buildForm(sel upload.Selection) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writePart(w, MainField, *sel.Main); err != nil {
		return nil, "", err
	}
	for _, f := range sel.Folder {
		if err := writePart(w, FolderField, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, field string, f upload.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", contentTypeOf(f.Name))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

var knownTypes = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func contentTypeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := knownTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// decodeResults accepts both the {"files": [...]} envelope and a bare array.
func decodeResults(raw []byte) ([]model.FileResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var files []model.FileResult
		if err := json.Unmarshal(trimmed, &files); err != nil {
			return nil, err
		}
		return files, nil
	}

	var env model.CheckResponse
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return env.Files, nil
}
