package sugar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client defines the token registry, quoting and planning capability of the
// Sugar swap service.
type Client interface {
	// ListTokens returns the registry snapshot.
	ListTokens(ctx context.Context) ([]TokenRef, error)
	// GetQuote returns the best quote for amount (base units) or nil when no
	// route exists.
	GetQuote(ctx context.Context, from, to TokenRef, amount *big.Int) (*Quote, error)
	// BuildPlan turns a quote into router commands and inputs.
	BuildPlan(ctx context.Context, quote Quote, slippage float64, account, router string) (*Plan, error)
	// Settings returns the router address and default slippage.
	Settings(ctx context.Context) (Settings, error)
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("sugar http %d", e.StatusCode)
	}
	return fmt.Sprintf("sugar http %d: %s", e.StatusCode, b)
}

type httpClient struct {
	baseURL string
	rpcURL  string
	http    *http.Client
}

// NewClient creates a Client for the Sugar service at baseURL. rpcURL is
// forwarded so the service talks to the same chain endpoint.
func NewClient(baseURL, rpcURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		rpcURL:  rpcURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type quoteRequest struct {
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	Amount    string `json:"amount"`
}

type planRequest struct {
	Quote         Quote   `json:"quote"`
	Slippage      float64 `json:"slippage"`
	Account       string  `json:"account"`
	RouterAddress string  `json:"router_address"`
}

// ListTokens returns the registry snapshot.
func (c *httpClient) ListTokens(ctx context.Context) ([]TokenRef, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/tokens", nil)
	if err != nil {
		return nil, errors.Wrap(err, "c.do")
	}

	var tokens []TokenRef
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal tokens")
	}
	return tokens, nil
}

// GetQuote returns nil, nil on 404 or a null body.
func (c *httpClient) GetQuote(ctx context.Context, from, to TokenRef, amount *big.Int) (*Quote, error) {
	if amount == nil {
		return nil, errors.New("amount is required")
	}

	body, status, err := c.do(ctx, http.MethodPost, "/quote", quoteRequest{
		FromToken: from.Address,
		ToToken:   to.Address,
		Amount:    amount.String(),
	})
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "c.do")
	}
	if isNull(body) {
		return nil, nil
	}

	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal quote")
	}
	return &q, nil
}

// BuildPlan turns a quote into router commands and inputs.
func (c *httpClient) BuildPlan(ctx context.Context, quote Quote, slippage float64, account, router string) (*Plan, error) {
	body, _, err := c.do(ctx, http.MethodPost, "/plan", planRequest{
		Quote:         quote,
		Slippage:      slippage,
		Account:       account,
		RouterAddress: router,
	})
	if err != nil {
		return nil, errors.Wrap(err, "c.do")
	}

	var p Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.Wrap(err, "json.Unmarshal plan")
	}
	return &p, nil
}

// Settings returns the router address and default slippage.
func (c *httpClient) Settings(ctx context.Context) (Settings, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/settings", nil)
	if err != nil {
		return Settings{}, errors.Wrap(err, "c.do")
	}

	var s Settings
	if err := json.Unmarshal(body, &s); err != nil {
		return Settings{}, errors.Wrap(err, "json.Unmarshal settings")
	}
	return s, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, in any) ([]byte, int, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, 0, errors.Wrap(err, "json.Marshal")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, errors.Wrap(err, "http.NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.rpcURL != "" {
		req.Header.Set("X-Rpc-Uri", c.rpcURL)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "c.http.Do")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, errors.Wrap(err, "io.ReadAll")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, res.StatusCode, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}
	return body, res.StatusCode, nil
}
