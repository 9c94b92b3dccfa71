// Package l1chain is the bridge's native-ledger adapter: the Client the
// Bridge Service drives for hot-wallet sends/receives and hot/cold balance
// reads, and the Watcher that observes the hot wallet for incoming
// receivables via websocket subscription plus a periodic sweep.
package l1chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
	"github.com/chainsafe/wpaw-bridge/pkg/config"
	"github.com/chainsafe/wpaw-bridge/pkg/money"

	"github.com/chainsafe/wpaw-bridge/internal/metrics"
)

var _ bridge.L1Client = (*Client)(nil)

// Receivable is one pending (unreceived) payment to an account, as reported
// by the node's "receivable"-style RPC action.
type Receivable struct {
	Sender    string
	Hash      string
	RawAmount string
}

// RPC is the capability the Client needs from the native node's JSON RPC
// surface (account-based, UTXO-like pending/receive protocol). It is
// treated as already dialed; Client only shapes requests/responses around
// it.
type RPC interface {
	Call(ctx context.Context, action string, params map[string]interface{}, out interface{}) error
}

// httpRPC is the production RPC implementation: a single JSON-RPC-style
// HTTP endpoint taking an {"action": ...} envelope, the convention used by
// account-based ledger nodes of this family.
type httpRPC struct {
	url    string
	client *http.Client
}

func newHTTPRPC(url string) *httpRPC {
	return &httpRPC{url: url, client: &http.Client{Timeout: 15 * time.Second}}
}

func (r *httpRPC) Call(ctx context.Context, action string, params map[string]interface{}, out interface{}) error {
	body := map[string]interface{}{"action": action}
	for k, v := range params {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode rpc request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call %q: %w", action, err)
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	if out == nil {
		return nil
	}
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode rpc response for %q: %w", action, err)
	}
	return nil
}

// Client is the native-ledger adapter: hot-wallet send/receive and
// hot/cold balance reads, implementing bridge.L1Client.
type Client struct {
	cfg    *config.L1Config
	rpc    RPC
	logger *zap.Logger
}

// NewClient builds a Client against the configured RPC endpoint.
func NewClient(cfg *config.L1Config, logger *zap.Logger) *Client {
	return &Client{cfg: cfg, rpc: newHTTPRPC(cfg.RPCURL), logger: logger}
}

// Receive acknowledges a hot-wallet receivable by hash, implementing
// bridge.L1Client. The underlying "receive" action is idempotent on the
// node side: calling it again for an already-pocketed hash is a no-op.
func (c *Client) Receive(ctx context.Context, hash string) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := c.rpc.Call(ctx, "receive", map[string]interface{}{
		"wallet": c.cfg.HotWallet,
		"block":  hash,
	}, &resp); err != nil {
		return fmt.Errorf("receive %s: %w", hash, err)
	}
	if resp.Error != "" && !strings.Contains(strings.ToLower(resp.Error), "already") {
		return fmt.Errorf("receive %s: %s", hash, resp.Error)
	}
	return nil
}

// Send transfers amount from the hot wallet to a native address,
// implementing bridge.L1Client.
func (c *Client) Send(ctx context.Context, to string, amount money.Units) (string, error) {
	var resp struct {
		Block string `json:"block"`
		Error string `json:"error"`
	}
	if err := c.rpc.Call(ctx, "send", map[string]interface{}{
		"wallet":      c.cfg.HotWallet,
		"source":      c.cfg.HotWallet,
		"destination": to,
		"amount":      amount.String(),
	}, &resp); err != nil {
		return "", fmt.Errorf("send to %s: %w", to, err)
	}
	if resp.Error != "" {
		metrics.TransactionsSent.WithLabelValues(metricsChainNative, "failed").Inc()
		return "", fmt.Errorf("send to %s: %s", to, resp.Error)
	}
	metrics.TransactionsSent.WithLabelValues(metricsChainNative, "confirmed").Inc()
	return resp.Block, nil
}

// HotBalance reads the hot wallet's confirmed balance, implementing
// bridge.L1Client.
func (c *Client) HotBalance(ctx context.Context) (money.Units, error) {
	return c.accountBalance(ctx, c.cfg.HotWallet)
}

// ColdBalance reads the cold wallet's confirmed balance, implementing
// bridge.L1Client.
func (c *Client) ColdBalance(ctx context.Context) (money.Units, error) {
	return c.accountBalance(ctx, c.cfg.ColdWallet)
}

func (c *Client) accountBalance(ctx context.Context, account string) (money.Units, error) {
	var resp struct {
		Balance string `json:"balance"`
	}
	if err := c.rpc.Call(ctx, "account_balance", map[string]interface{}{"account": account}, &resp); err != nil {
		return money.Zero(), fmt.Errorf("account_balance %s: %w", account, err)
	}
	units, err := money.ParseUnits(resp.Balance)
	if err != nil {
		return money.Zero(), err
	}
	if f, parseErr := strconv.ParseFloat(units.Decimal(money.NativeDecimals), 64); parseErr == nil {
		metrics.BridgeBalance.WithLabelValues(metricsChainNative, c.cfg.NativeSymbol).Set(f)
	}
	return units, nil
}

// TransferHotToCold moves amount from the hot wallet to the cold wallet,
// implementing bridge.L1Client.
func (c *Client) TransferHotToCold(ctx context.Context, amount money.Units) error {
	_, err := c.Send(ctx, c.cfg.ColdWallet, amount)
	return err
}

// ListReceivable lists the hot wallet's pending (unreceived) receivables,
// used by the Watcher's sweep source to reconcile missed websocket
// messages.
func (c *Client) ListReceivable(ctx context.Context) ([]Receivable, error) {
	var resp struct {
		Blocks map[string]struct {
			Amount string `json:"amount"`
			Source string `json:"source"`
		} `json:"blocks"`
	}
	if err := c.rpc.Call(ctx, "receivable", map[string]interface{}{
		"account": c.cfg.HotWallet,
		"source":  true,
	}, &resp); err != nil {
		return nil, fmt.Errorf("receivable %s: %w", c.cfg.HotWallet, err)
	}

	out := make([]Receivable, 0, len(resp.Blocks))
	for hash, b := range resp.Blocks {
		out = append(out, Receivable{Sender: b.Source, Hash: hash, RawAmount: b.Amount})
	}
	return out, nil
}
