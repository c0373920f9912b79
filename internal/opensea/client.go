// Package opensea talks to the exchange through the nfttools proxy: market
// data (floor listings, bids, collection fees), the cookie-session auth
// flow, order submission, and bid fulfillment.
//
// Transient provider failures are absorbed here per the bot's error policy:
// market-data reads degrade to safe defaults (zero floor, no bids, unknown
// fees) instead of failing the evaluation cycle.
package opensea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ayenisholah/nft-listing-bot/internal/retry"
)

const (
	DefaultBaseURL = "https://nfttools.pro/opensea"

	graphqlPath = "/__api/graphql/"

	// DefaultRateLimit is the shared outbound request budget in calls per
	// second; the scheduler derives its concurrency bound from the same
	// constant.
	DefaultRateLimit = 2
)

// MessageSigner is the subset of the wallet the auth flow needs.
type MessageSigner interface {
	Address() common.Address
	SignMessage(msg string) (string, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// limiter enforces minimum spacing between all outbound calls, shared
	// across every cycle and task.
	limiter *rate.Limiter
	retry   retry.Policy
	signer  MessageSigner
	// deviceID identifies this process to the auth endpoint; generated once
	// at startup.
	deviceID string
}

type Options struct {
	BaseURL   string
	RateLimit float64
	Retry     retry.Policy
	Timeout   time.Duration
}

func NewClient(apiKey string, signer MessageSigner, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key required")
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http") {
		return nil, fmt.Errorf("base url must be http(s), got %q", baseURL)
	}

	rps := opts.RateLimit
	if rps <= 0 {
		rps = DefaultRateLimit
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		retry:      opts.Retry,
		signer:     signer,
		deviceID:   uuid.NewString(),
	}, nil
}

// getJSON performs a rate-limited GET against a REST path and decodes the
// response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-NFT-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	})
}

type graphqlRequest struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Variables any    `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// postGraphQL sends one GraphQL document with its fixed integrity signature.
// Mutations ride through here too, so requests are never auto-retried: a
// failed call surfaces to the caller rather than being replayed.
// session is set only on privileged calls; GraphQL errors in the payload are
// returned as Go errors.
func (c *Client) postGraphQL(ctx context.Context, id, query, signedQuery string, variables any, session string, out any) (http.Header, error) {
	body, err := json.Marshal(graphqlRequest{ID: id, Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", id, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+graphqlPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-NFT-API-Key", c.apiKey)
	req.Header.Set("x-signed-query", signedQuery)
	if session != "" {
		req.Header.Set("Cookie", session)
		req.Header.Set("x-auth-address", strings.ToLower(c.signer.Address().Hex()))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: status %d: %s", id, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", id, err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("%s: %s", id, envelope.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", id, err)
		}
	}
	return resp.Header, nil
}

// postJSON POSTs a JSON payload to a REST path. Like postGraphQL it runs
// exactly once; submission endpoints are not idempotent.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-NFT-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
