package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"nregadash/internal/log"
)

// OpenDataClient fetches monthly performance records from the
// data.gov.in resource API.
type OpenDataClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limit      int
	retries    int
	retryDelay time.Duration
	logger     *log.Logger
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Limit      int
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	Logger     *log.Logger
}

func NewOpenDataClient(cfg ClientConfig) *OpenDataClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentIngest)
	}
	return &OpenDataClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		limit:      cfg.Limit,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// apiResponse is the envelope the platform wraps record lists in.
type apiResponse struct {
	Total   int                        `json:"total"`
	Count   int                        `json:"count"`
	Records []map[string]json.RawMessage `json:"records"`
}

// FetchYear retrieves all records for one state and financial year. It
// retries transient failures, waiting delay*attempt between tries and
// doubling the wait when the platform answers 429.
func (c *OpenDataClient) FetchYear(ctx context.Context, stateName, finYear string) ([]map[string]json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		records, err := c.fetchOnce(ctx, stateName, finYear)
		if err == nil {
			return records, nil
		}
		lastErr = err

		if attempt == c.retries {
			break
		}

		wait := c.retryDelay * time.Duration(attempt)
		if isRateLimited(err) {
			wait *= 2
		}
		c.logger.WarnContext(ctx, "fetch attempt failed, retrying",
			log.FieldOperation, log.OpFetch,
			log.FieldFinYear, finYear,
			"attempt", attempt,
			"wait", wait.String(),
			log.FieldError, err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("fetching %s after %d attempts: %w", finYear, c.retries, lastErr)
}

func (c *OpenDataClient) fetchOnce(ctx context.Context, stateName, finYear string) ([]map[string]json.RawMessage, error) {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", fmt.Sprintf("%d", c.limit))
	params.Set("filters[state_name]", stateName)
	params.Set("filters[fin_year]", finYear)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return payload.Records, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isRateLimited(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusTooManyRequests
}
