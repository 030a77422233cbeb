package orderservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TooManyRequestsError signals the external service kept rate limiting after
// the per-call retry cap was exhausted.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// TokenPair is the credential set returned by the refresh endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// OrderSummary is the slice of an external order used for numbering.
type OrderSummary struct {
	ID     int64 `json:"id"`
	Number int64 `json:"number"`
}

// CreatedOrder is the outcome of a successful create call, including retry
// accounting from the underlying HTTP loop.
type CreatedOrder struct {
	ID           int64
	Number       int64
	Retries      int
	HadRateLimit bool
}

// Client exposes the external order service operations the core depends on.
type Client interface {
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	ListOrders(ctx context.Context, token string, from, to time.Time) ([]OrderSummary, error)
	CreateOrder(ctx context.Context, token string, payload OrderPayload) (*CreatedOrder, error)
	ReversePayables(ctx context.Context, token string, externalID int64) error
}

// HTTPClient implements Client against the vendor REST API. Transient
// failures and rate limiting are retried per call up to the configured caps;
// business errors come back as *APIError for the caller to classify.
type HTTPClient struct {
	baseURL          *url.URL
	httpClient       *http.Client
	logger           *slog.Logger
	createAttempts   int
	reversalAttempts int
	backoff          time.Duration
}

// NewHTTPClient creates an order service client with default timeout.
func NewHTTPClient(baseURL string, createAttempts, reversalAttempts int, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse order service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("order service url must be absolute")
	}
	if createAttempts <= 0 {
		createAttempts = 5
	}
	if reversalAttempts <= 0 {
		reversalAttempts = 3
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		createAttempts:   createAttempts,
		reversalAttempts: reversalAttempts,
		backoff:          500 * time.Millisecond,
	}, nil
}

// callResult is the single read of one settled HTTP exchange. The body is
// consumed exactly once; everything downstream works from this value.
type callResult struct {
	status       int
	body         []byte
	retries      int
	hadRateLimit bool
}

// doWithRetry drives one logical call through bounded attempts. Network
// errors, 5xx responses and 429 responses are retried; anything else settles
// immediately.
func (c *HTTPClient) doWithRetry(ctx context.Context, attempts int, build func() (*http.Request, error)) (*callResult, error) {
	var (
		lastErr      error
		retryAfter   time.Duration
		hadRateLimit bool
	)

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(attempt)
			if retryAfter > 0 {
				wait = retryAfter
				retryAfter = 0
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			hadRateLimit = true
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			lastErr = TooManyRequestsError{RetryAfter: retryAfter}
			c.logger.Warn("order service rate limited",
				slog.Int("attempt", attempt+1),
				slog.Duration("retry_after", retryAfter),
			)
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("order service unavailable: %s", resp.Status)
		default:
			return &callResult{
				status:       resp.StatusCode,
				body:         body,
				retries:      attempt,
				hadRateLimit: hadRateLimit,
			}, nil
		}
	}

	return nil, lastErr
}

// RefreshToken exchanges a refresh token for a fresh credential pair.
func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}

	result, err := c.doWithRetry(ctx, c.createAttempts, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/auth/refresh"), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	if result.status != http.StatusOK {
		return nil, parseAPIError(result.status, result.body)
	}

	var pair TokenPair
	if err := json.Unmarshal(result.body, &pair); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	return &pair, nil
}

type listResponse struct {
	Items    []OrderSummary `json:"items"`
	NextPage int            `json:"next_page"`
}

// ListOrders pages through orders issued within the date range.
func (c *HTTPClient) ListOrders(ctx context.Context, token string, from, to time.Time) ([]OrderSummary, error) {
	var orders []OrderSummary
	page := 1

	for {
		currentPage := page
		result, err := c.doWithRetry(ctx, c.createAttempts, func() (*http.Request, error) {
			endpoint := *c.baseURL
			endpoint.Path = "/api/v1/orders"
			query := endpoint.Query()
			query.Set("issued_from", from.Format("2006-01-02"))
			query.Set("issued_to", to.Format("2006-01-02"))
			query.Set("page", strconv.Itoa(currentPage))
			endpoint.RawQuery = query.Encode()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			return req, nil
		})
		if err != nil {
			return nil, err
		}
		if result.status != http.StatusOK {
			return nil, parseAPIError(result.status, result.body)
		}

		var data listResponse
		if err := json.Unmarshal(result.body, &data); err != nil {
			return nil, fmt.Errorf("decode order list: %w", err)
		}
		orders = append(orders, data.Items...)

		if data.NextPage <= currentPage {
			return orders, nil
		}
		page = data.NextPage
	}
}

type createResponse struct {
	ID     int64 `json:"id"`
	Number int64 `json:"number"`
}

// CreateOrder submits a purchase order payload.
func (c *HTTPClient) CreateOrder(ctx context.Context, token string, payload OrderPayload) (*CreatedOrder, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	result, err := c.doWithRetry(ctx, c.createAttempts, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/orders"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	if result.status != http.StatusCreated && result.status != http.StatusOK {
		return nil, parseAPIError(result.status, result.body)
	}

	var data createResponse
	if err := json.Unmarshal(result.body, &data); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	return &CreatedOrder{
		ID:           data.ID,
		Number:       data.Number,
		Retries:      result.retries,
		HadRateLimit: result.hadRateLimit,
	}, nil
}

// ReversePayables undoes the payable records generated by order creation.
// Uses the smaller reversal retry cap.
func (c *HTTPClient) ReversePayables(ctx context.Context, token string, externalID int64) error {
	result, err := c.doWithRetry(ctx, c.reversalAttempts, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
			c.endpoint(fmt.Sprintf("/api/v1/orders/%d/payables", externalID)), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return err
	}
	if result.status != http.StatusOK && result.status != http.StatusNoContent {
		return parseAPIError(result.status, result.body)
	}
	return nil
}

func (c *HTTPClient) endpoint(path string) string {
	endpoint := *c.baseURL
	endpoint.Path = path
	return endpoint.String()
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
