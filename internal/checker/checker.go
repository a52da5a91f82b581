// Package checker probes dataset source URLs for availability before a
// generation run. Each URL is tested at its type-specific metadata endpoint
// with a bounded worker pool and per-URL retries.
package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/erddap-tools/erdgen/internal/dataset"
	"github.com/erddap-tools/erdgen/internal/errors"
	"github.com/erddap-tools/erdgen/internal/event"
	"github.com/erddap-tools/erdgen/internal/logging"
)

// Defaults matching the retry behavior the batch scripts have always used.
const (
	DefaultRetries    = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultTimeout    = 10 * time.Second
	DefaultWorkers    = 4
)

// Config controls one availability run.
type Config struct {
	// Retries is the number of attempts per URL.
	Retries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// Timeout bounds each individual request.
	Timeout time.Duration

	// Workers is the number of URLs probed concurrently.
	Workers int
}

// Result is the outcome of probing one URL.
type Result struct {
	// URL is the dataset source URL as given.
	URL string

	// Endpoint is the metadata URL actually requested.
	Endpoint string

	// Available is true when some attempt returned a 2xx status.
	Available bool

	// Attempts is the number of requests made.
	Attempts int

	// Err describes the last failure when the URL is unavailable.
	Err error
}

// Report aggregates a whole run.
type Report struct {
	Results   []Result
	Available int
}

// Checker probes URLs with retries through a bounded pool.
type Checker struct {
	cfg    Config
	client *http.Client
	bus    *event.Bus
	logger *logging.Logger
}

// New creates a Checker, filling in zero config fields with defaults.
func New(cfg Config, bus *event.Bus, logger *logging.Logger) *Checker {
	if cfg.Retries < 1 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if bus == nil {
		bus = event.NewBus()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Checker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		bus:    bus,
		logger: logger,
	}
}

// Endpoint derives the metadata endpoint for a bare URL, inferring the
// dataset type from the path when possible. URLs that carry no griddap or
// tabledap segment are treated as griddap.
func Endpoint(url string) string {
	if strings.Contains(url, "/tabledap/") {
		return url + dataset.TabledapSuffix
	}
	return url + dataset.GriddapSuffix
}

// Target is one URL to probe together with the endpoint to request.
type Target struct {
	URL      string
	Endpoint string
}

// Targets derives probe targets from manifest datasets, using each
// dataset's declared type to pick the endpoint.
func Targets(datasets []dataset.Dataset) []Target {
	targets := make([]Target, len(datasets))
	for i, d := range datasets {
		targets[i] = Target{URL: d.URL, Endpoint: d.CheckEndpoint()}
	}
	return targets
}

// CheckAll probes every URL through the worker pool and returns one result
// per input, in input order. Endpoints are inferred from the URL paths.
func (c *Checker) CheckAll(ctx context.Context, urls []string) *Report {
	targets := make([]Target, len(urls))
	for i, url := range urls {
		targets[i] = Target{URL: url, Endpoint: Endpoint(url)}
	}
	return c.CheckTargets(ctx, targets)
}

// CheckTargets probes every target through the worker pool and returns one
// result per input, in input order.
func (c *Checker) CheckTargets(ctx context.Context, targets []Target) *Report {
	results := make([]Result, len(targets))

	p := pool.New().WithMaxGoroutines(c.cfg.Workers)
	for i, target := range targets {
		p.Go(func() {
			results[i] = c.checkOne(ctx, target)
		})
	}
	p.Wait()

	report := &Report{Results: results}
	for _, r := range results {
		if r.Available {
			report.Available++
		}
	}
	c.logger.Info("availability run completed", "total", len(targets), "available", report.Available)
	c.bus.Publish(event.NewCheckCompletedEvent(len(targets), report.Available))
	return report
}

// checkOne probes a single URL with retries. A 2xx response on any attempt
// makes the URL available; everything else is retried until attempts run out.
func (c *Checker) checkOne(ctx context.Context, target Target) Result {
	url, endpoint := target.URL, target.Endpoint
	result := Result{URL: url, Endpoint: endpoint}

	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		result.Attempts = attempt

		ok, err := c.head(ctx, endpoint)
		if ok {
			result.Available = true
			result.Err = nil
			break
		}
		result.Err = err

		if attempt < c.cfg.Retries {
			c.logger.Debug("attempt failed, retrying",
				"url", url, "attempt", attempt, "error", err)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				result.Err = errors.ErrCanceled
				attempt = c.cfg.Retries
			}
		}
	}

	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}
	c.bus.Publish(event.NewCheckResultEvent(url, endpoint, result.Available, result.Attempts, errMsg))
	return result
}

// head issues one HEAD request and reports whether it returned a 2xx status.
func (c *Checker) head(ctx context.Context, endpoint string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}
	return false, fmt.Errorf("status code %d", resp.StatusCode)
}

// urlEntry is one element of the JSON catalog form: an array of objects each
// carrying at least a "url" key.
type urlEntry struct {
	URL string `json:"url"`
}

// LoadURLs reads dataset URLs from a JSON array of {"url": ...} objects.
func LoadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("url file", path)
		}
		return nil, err
	}

	var entries []urlEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewValidationError("url file", path, "expected a JSON array of {url} objects")
	}

	urls := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.URL == "" {
			return nil, errors.NewValidationError("url file", path, fmt.Sprintf("entry %d has no url", i))
		}
		urls = append(urls, e.URL)
	}
	return urls, nil
}
