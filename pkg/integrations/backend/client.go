package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/build"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/integrations"
)

const (
	// DefaultURL is where a locally started backend listens.
	DefaultURL = "http://localhost:8000"

	// DefaultStyle is the art style sent when none is given.
	DefaultStyle = "ghibli"

	// MaxImageSize is the largest image the backend accepts.
	MaxImageSize = 10 << 20

	defaultTimeout = 2 * time.Minute
)

// Styles lists the art styles the generator understands.
var Styles = []string{"ghibli", "medieval", "modern", "fantasy"}

// ValidateStyle rejects styles the generator does not know. An empty style
// is valid and selects [DefaultStyle].
func ValidateStyle(style string) error {
	if style == "" || slices.Contains(Styles, style) {
		return nil
	}
	return bperrors.New(bperrors.ErrCodeInvalidInput,
		"invalid style: %q (must be one of: %s)", style, strings.Join(Styles, ", "))
}

// Health is the backend's answer to a health check.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// BlueprintResult is a generated, normalized blueprint.
type BlueprintResult struct {
	Blueprint *blueprint.Blueprint
	// Warnings lists repairs made by the backend and by normalization.
	Warnings []string
	// RawAIJSON is the generator's unprocessed output, when the backend
	// returned it.
	RawAIJSON json.RawMessage
}

type blueprintResponse struct {
	Success   bool            `json:"success"`
	Blueprint map[string]any  `json:"blueprint"`
	Warnings  []string        `json:"warnings"`
	RawAIJSON json.RawMessage `json:"raw_ai_json,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds health checks and blueprint generation. Build streams
// are bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets retry attempts and initial delay for health checks.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to one backend.
type Client struct {
	base       string
	http       *integrations.Client
	httpClient *http.Client
	timeout    time.Duration
	attempts   int
	delay      time.Duration
	logger     *log.Logger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := bperrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		base:     baseURL,
		timeout:  defaultTimeout,
		attempts: 3,
		delay:    time.Second,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []integrations.ClientOption{integrations.WithRetry(c.attempts, c.delay)}
	if c.httpClient != nil {
		httpOpts = append(httpOpts, integrations.WithHTTPClient(c.httpClient))
	}
	// Build streams can run for minutes; deadlines come from contexts.
	httpOpts = append(httpOpts, integrations.WithTimeout(0))
	c.http = integrations.NewClient(map[string]string{"Accept": "application/json"}, httpOpts...)
	return c, nil
}

// URL returns the backend base URL.
func (c *Client) URL() string { return c.base }

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var h Health
	if err := c.http.Get(ctx, integrations.JoinURL(c.base, "/api/health"), &h); err != nil {
		c.logger.Debug("health check failed", "url", c.base, "err", err)
		return nil, bperrors.Wrap(bperrors.ErrCodeNetwork, err, "%s", msgBackendDown)
	}
	return &h, nil
}

// GenerateBlueprint uploads an image and returns the blueprint the backend
// derived from it. An empty style selects [DefaultStyle].
func (c *Client) GenerateBlueprint(ctx context.Context, image io.Reader, filename, style string) (*BlueprintResult, error) {
	if err := ValidateStyle(style); err != nil {
		return nil, err
	}
	if style == "" {
		style = DefaultStyle
	}
	body, contentType, err := multipartImage(image, filename, style)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, integrations.JoinURL(c.base, "/api/blueprint"), body)
	if err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInternal, err, "create request")
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, blueprintError(err)
	}
	defer resp.Body.Close()

	var out blueprintResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeNetwork, err, "decode blueprint response")
	}
	if !out.Success || out.Blueprint == nil {
		return nil, bperrors.New(bperrors.ErrCodeInvalidBlueprint, "%s", msgAnalyzeFailed)
	}

	bp, warnings, err := blueprint.Normalize(out.Blueprint)
	if err != nil {
		return nil, err
	}
	c.logger.Info("generated blueprint",
		"style", style,
		"segments", len(bp.Segments()),
		"warnings", len(out.Warnings)+len(warnings),
		"duration", time.Since(start))

	return &BlueprintResult{
		Blueprint: bp,
		Warnings:  append(out.Warnings, warnings...),
		RawAIJSON: out.RawAIJSON,
	}, nil
}

// Stream starts a build and returns the raw NDJSON progress stream. The
// caller must close it.
func (c *Client) Stream(ctx context.Context, req build.Request) (io.ReadCloser, error) {
	if err := req.Blueprint.Validate(); err != nil {
		return nil, err
	}
	resp, err := c.http.PostJSON(ctx, integrations.JoinURL(c.base, "/api/build"), req)
	if err != nil {
		return nil, buildError(err)
	}
	c.logger.Info("build started", "origin", req.Origin)
	return resp.Body, nil
}

// Build starts a build and calls onProgress for every event until the
// stream ends. Malformed lines are skipped.
func (c *Client) Build(ctx context.Context, req build.Request, onProgress func(build.Status)) error {
	body, err := c.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer body.Close()

	dec := build.NewDecoder(body, c.logger)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return bperrors.Wrap(bperrors.ErrCodeNetwork, err, "read build progress")
		}
		if onProgress != nil {
			onProgress(ev)
		}
	}
}

// Track runs a build and folds its progress into t. Failures to start the
// build are recorded on t as well as returned.
func (c *Client) Track(ctx context.Context, req build.Request, t *build.Tracker) error {
	ctx = t.Start(ctx)
	body, err := c.Stream(ctx, req)
	if err != nil {
		t.Fail(ctx, userError(err))
		return err
	}
	defer body.Close()
	return t.Consume(ctx, body)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func multipartImage(image io.Reader, filename, style string) (io.Reader, string, error) {
	if filename == "" {
		filename = "image.png"
	}
	if err := bperrors.ValidateFilename(filepath.Base(filename)); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, "", bperrors.Wrap(bperrors.ErrCodeInternal, err, "create form")
	}
	n, err := io.Copy(part, io.LimitReader(image, MaxImageSize+1))
	if err != nil {
		return nil, "", bperrors.Wrap(bperrors.ErrCodeInvalidInput, err, "read image")
	}
	if n > MaxImageSize {
		return nil, "", bperrors.New(bperrors.ErrCodeInvalidInput, "%s", msgInvalidImage)
	}
	if err := w.WriteField("style", style); err != nil {
		return nil, "", bperrors.Wrap(bperrors.ErrCodeInternal, err, "create form")
	}
	if err := w.Close(); err != nil {
		return nil, "", bperrors.Wrap(bperrors.ErrCodeInternal, err, "create form")
	}
	return &buf, w.FormDataContentType(), nil
}
