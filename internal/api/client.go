package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Folio/1.0"

	// ViewerHeader carries the anonymous viewer id
	ViewerHeader = "X-Folio-Viewer"

	tracerName = "github.com/mmcdole/folio/internal/api"
)

// Client implements domain.GalleryClient against the portfolio HTTP API
type Client struct {
	baseURL    *url.URL
	viewerID   string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewClient creates a new API client. timeout <= 0 uses the default.
func NewClient(baseURL, viewerID string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	u, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:  u,
		viewerID: viewerID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}, nil
}

// ParseBaseURL validates and normalizes an API base URL
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("api url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid api url: missing host")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the normalized API base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient exposes the underlying client so asset downloads share its transport
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// doRequest performs an HTTP request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	reqURL := c.baseURL.String() + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", reqURL),
	)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.viewerID != "" {
		req.Header.Set(ViewerHeader, c.viewerID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Error("api request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		c.logger.Error("api request error", "status", resp.StatusCode, "body", truncate(string(data), 512))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "path", path, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchItems returns one page of images in server order
func (c *Client) FetchItems(ctx context.Context, params domain.QueryParams) (domain.PageResult, error) {
	var resp ImageListResponse
	if err := c.getJSON(ctx, "/api/images", encodeQuery(params), &resp); err != nil {
		return domain.PageResult{}, err
	}

	result := domain.PageResult{
		Items:      MapImages(resp.Data, c.baseURL),
		Pagination: MapPagination(resp.Pagination),
	}
	if result.Pagination.Page == 0 {
		result.Pagination.Page = params.Page
	}
	return result, nil
}

// LikeItem records a like for the image
func (c *Client) LikeItem(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/images/%s/like", url.PathEscape(id))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil, []byte("{}"))
	return err
}

// FetchCategories returns all categories
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var resp CategoryListResponse
	if err := c.getJSON(ctx, "/api/categories", nil, &resp); err != nil {
		return nil, err
	}
	return MapCategories(resp.Data), nil
}

// FetchSeriesBySlug returns a series and its images
func (c *Client) FetchSeriesBySlug(ctx context.Context, slug string) (*domain.Series, error) {
	var resp SeriesResponse
	path := fmt.Sprintf("/api/series/%s", url.PathEscape(slug))
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return MapSeries(resp.Data, c.baseURL), nil
}

// Ping checks that the API answers its health endpoint
func (c *Client) Ping(ctx context.Context) error {
	var resp HealthResponse
	if err := c.getJSON(ctx, "/api/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "ok") {
		return fmt.Errorf("api unhealthy: %s", resp.Status)
	}
	return nil
}

func encodeQuery(p domain.QueryParams) url.Values {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.PageSize))
	q.Set("sortBy", p.SortField)
	q.Set("sortOrder", string(p.SortDir))
	if p.CategoryID != "" {
		q.Set("category", p.CategoryID)
	}
	if p.Featured != nil {
		q.Set("featured", strconv.FormatBool(*p.Featured))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.SeriesSlug != "" {
		q.Set("series", p.SeriesSlug)
	}
	return q
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
