package twelvedata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/payraan/twelvedata/internal/common"
)

// maxErrorBody caps how much of an unexpected upstream body is echoed back.
const maxErrorBody = 200

// APIError carries an upstream failure back to the handler layer with the
// status code the gateway should answer with.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Twelve Data REST API. The API key is injected into
// every request, callers never pass it.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(cfg common.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpc: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Fetch performs a GET against the given upstream endpoint and returns the
// response body on 200. Any other outcome is an *APIError mirroring the
// upstream status.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	log.Debug("Sending upstream request", "endpoint", endpoint)

	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Error("Upstream request failed", "endpoint", endpoint, "error", err)
		return nil, &APIError{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("connection error: %s", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	log.Debug("Upstream response received", "endpoint", endpoint, "status", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusBadRequest:
		return nil, &APIError{
			StatusCode: http.StatusBadRequest,
			Message:    "bad request: " + string(body),
		}
	case http.StatusUnauthorized:
		return nil, &APIError{
			StatusCode: http.StatusUnauthorized,
			Message:    "invalid API key or unauthorized access",
		}
	case http.StatusTooManyRequests:
		return nil, &APIError{
			StatusCode: http.StatusTooManyRequests,
			Message:    "rate limit exceeded, please try again later",
		}
	default:
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "unexpected upstream error: " + msg,
		}
	}
}
