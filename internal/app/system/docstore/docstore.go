// internal/app/system/docstore/docstore.go
//
// Package docstore reads compute-experiment records from a hosted JSON
// document store, either directly (JSONBin v3) or through a proxy that
// answers {success, data}.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/labcarbon/internal/app/system/htmlsanitize"
	"github.com/dalemusser/labcarbon/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultJSONBinURL is the JSONBin v3 API root.
const DefaultJSONBinURL = "https://api.jsonbin.io/v3"

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

var (
	// ErrNotConfigured is returned when no base URL is set.
	ErrNotConfigured = errors.New("docstore: not configured")
	// ErrUpstream is wrapped around non-2xx answers and {success:false} bodies.
	ErrUpstream = errors.New("docstore: upstream error")
)

// Config selects the upstream. With BinID set the client talks to JSONBin
// at BaseURL (DefaultJSONBinURL when empty); otherwise BaseURL is a proxy
// endpoint returning {success, data}.
type Config struct {
	BaseURL   string
	BinID     string
	MasterKey string
	Timeout   time.Duration
}

// Enabled reports whether the config names an upstream.
func (c Config) Enabled() bool {
	return c.BinID != "" || c.BaseURL != ""
}

// Client fetches experiments.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a Client. A nil httpClient gets one with cfg.Timeout
// (15s when unset).
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if cfg.BinID != "" && cfg.BaseURL == "" {
		cfg.BaseURL = DefaultJSONBinURL
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Enabled reports whether the client has an upstream.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled()
}

type binResponse struct {
	Record []models.Experiment `json:"record"`
}

// ProxyResponse is the proxy wire shape. The service also serves it.
type ProxyResponse struct {
	Success bool                `json:"success"`
	Data    []models.Experiment `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// FetchExperiments returns the upstream records with their free text
// fields sanitized.
func (c *Client) FetchExperiments(ctx context.Context) ([]models.Experiment, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/")
	if c.cfg.BinID != "" {
		url = fmt.Sprintf("%s/b/%s/latest", url, c.cfg.BinID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("docstore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.MasterKey != "" {
		req.Header.Set("X-Master-Key", c.cfg.MasterKey)
		req.Header.Set("X-Access-Key", c.cfg.MasterKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docstore: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("docstore: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var experiments []models.Experiment
	if c.cfg.BinID != "" {
		var br binResponse
		if err := json.Unmarshal(body, &br); err != nil {
			return nil, fmt.Errorf("docstore: decode: %w", err)
		}
		experiments = br.Record
	} else {
		var pr ProxyResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("docstore: decode: %w", err)
		}
		if !pr.Success {
			return nil, fmt.Errorf("%w: %s", ErrUpstream, pr.Error)
		}
		experiments = pr.Data
	}

	for i := range experiments {
		e := &experiments[i]
		htmlsanitize.Fields(&e.ProjectName, &e.ExperimentDescription, &e.CPUName, &e.GPUName, &e.OS, &e.RegionCountry)
	}

	c.logger.Debug("fetched experiments",
		zap.Int("count", len(experiments)),
		zap.Duration("elapsed", time.Since(start)))

	if experiments == nil {
		experiments = []models.Experiment{}
	}
	return experiments, nil
}
