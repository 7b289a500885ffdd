package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the market-data gateway: spot prices, swap quotes, and name
// resolution. The gateway is an external collaborator; this client only does
// HTTP plumbing.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway client against a base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Price returns the spot price of a token symbol in USD.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	var out struct {
		Price float64 `json:"price"`
	}
	if err := c.get(ctx, "/v1/price", url.Values{"symbol": {symbol}}, &out); err != nil {
		return 0, err
	}
	return out.Price, nil
}

// Quote returns the estimated output amount for a token swap.
func (c *Client) Quote(ctx context.Context, fromToken, toToken string, amount float64) (float64, error) {
	query := url.Values{
		"from":   {fromToken},
		"to":     {toToken},
		"amount": {strconv.FormatFloat(amount, 'f', -1, 64)},
	}
	var out struct {
		AmountOut float64 `json:"amount_out"`
	}
	if err := c.get(ctx, "/v1/quote", query, &out); err != nil {
		return 0, err
	}
	return out.AmountOut, nil
}

// Resolve maps a human-readable name to an address.
func (c *Client) Resolve(ctx context.Context, name string) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := c.get(ctx, "/v1/resolve", url.Values{"name": {name}}, &out); err != nil {
		return "", err
	}
	if out.Address == "" {
		return "", fmt.Errorf("no address found for %q", name)
	}
	return out.Address, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
