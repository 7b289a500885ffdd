package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var weiPerEther = new(big.Float).SetFloat64(1e18)

// Client is a thin JSON-RPC client for node balance lookups. It implements the
// wallet collaborator boundary; contract calls and swap execution live outside
// this service.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a JSON-RPC client against a node endpoint.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Balance returns an address's balance in ether.
func (c *Client) Balance(ctx context.Context, address string) (float64, error) {
	var hexBalance string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &hexBalance); err != nil {
		return 0, err
	}

	wei, ok := new(big.Int).SetString(strings.TrimPrefix(hexBalance, "0x"), 16)
	if !ok {
		return 0, fmt.Errorf("malformed balance %q", hexBalance)
	}
	ether, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return ether, nil
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return err
	}
	if decoded.Error != nil {
		return decoded.Error
	}
	return json.Unmarshal(decoded.Result, result)
}
