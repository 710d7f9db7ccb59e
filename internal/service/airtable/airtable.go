package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/models"
)

const pageSize = 100

// ErrRecordNotFound is returned by Get when the record id does not exist.
var ErrRecordNotFound = errors.New("record not found")

type (
	listResponse struct {
		Records []models.Record `json:"records"`
		Offset  string          `json:"offset"`
	}

	updateRequest struct {
		Fields map[string]any `json:"fields"`
	}
)

// APIError is a non-2xx response from the record store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable API returned status %d: %s", e.StatusCode, e.Body)
}

// ListOptions narrows a List call. Formula is evaluated server side.
type ListOptions struct {
	Formula    string
	MaxRecords int
}

type Client struct {
	config  *config.AirtableConfig
	logger  *zap.Logger
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewClient(cfg *config.AirtableConfig, logger *zap.Logger) *Client {
	tr := &http.Transport{
		IdleConnTimeout:       120 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Transport: tr,
			Timeout:   config.Duration(cfg.Timeout, 30*time.Second),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.config.APIKey != "" && c.config.BaseID != ""
}

// Table returns a handle on one table of the configured base.
func (c *Client) Table(name string) *Table {
	return &Table{client: c, name: name}
}

type Table struct {
	client *Client
	name   string
}

// List fetches every record matching opts, following pagination offsets.
func (t *Table) List(ctx context.Context, opts ListOptions) ([]models.Record, error) {
	var records []models.Record
	offset := ""
	for {
		query := url.Values{}
		size := pageSize
		if opts.MaxRecords > 0 {
			query.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
			if opts.MaxRecords < size {
				size = opts.MaxRecords
			}
		}
		query.Set("pageSize", strconv.Itoa(size))
		if opts.Formula != "" {
			query.Set("filterByFormula", opts.Formula)
		}
		if offset != "" {
			query.Set("offset", offset)
		}

		var response listResponse
		if err := t.client.do(ctx, t.name, "list", http.MethodGet, t.url("")+"?"+query.Encode(), nil, &response); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
		}
		records = append(records, response.Records...)

		if response.Offset == "" || (opts.MaxRecords > 0 && len(records) >= opts.MaxRecords) {
			break
		}
		offset = response.Offset
	}

	t.client.logger.Debug("Listed records",
		zap.String("table", t.name),
		zap.String("formula", opts.Formula),
		zap.Int("count", len(records)))

	return records, nil
}

// Get fetches one record by its record id.
func (t *Table) Get(ctx context.Context, id string) (*models.Record, error) {
	if id == "" {
		return nil, ErrRecordNotFound
	}

	var record models.Record
	if err := t.client.do(ctx, t.name, "get", http.MethodGet, t.url(id), nil, &record); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", t.name, id, err)
	}
	return &record, nil
}

// Update patches the given fields of one record and returns the stored result.
func (t *Table) Update(ctx context.Context, id string, fields map[string]any) (*models.Record, error) {
	var record models.Record
	if err := t.client.do(ctx, t.name, "update", http.MethodPatch, t.url(id), updateRequest{Fields: fields}, &record); err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", t.name, id, err)
	}

	t.client.logger.Debug("Updated record",
		zap.String("table", t.name),
		zap.String("record_id", id))

	return &record, nil
}

func (t *Table) url(id string) string {
	u := fmt.Sprintf("%s/%s/%s", t.client.baseURL, url.PathEscape(t.client.config.BaseID), url.PathEscape(t.name))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}
