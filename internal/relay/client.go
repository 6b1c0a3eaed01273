package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
	"github.com/baicaiyihao/omni-agent-arena/internal/logging"
)

// ChainConfig is one cross-chain leg: the RPC endpoint plus the local and
// remote messaging contracts.
type ChainConfig struct {
	RPCURL         string `json:"rpc_url"`
	Contract       string `json:"contract"`
	TargetContract string `json:"target_contract"`
}

// Options configures the HTTP relay client. Signing, gas estimation and
// contract ABI live entirely in the relay service; this client only posts
// the message request.
type Options struct {
	BaseURL     string
	PrivateKey  string
	TargetToken string
	Amount      string
	GasLimit    int
	// FallbackChain is used when a combatant names a chain with no
	// configured leg.
	FallbackChain string
	Timeout       time.Duration
	Chains        map[string]ChainConfig
}

// Client submits moves to the external transaction-relay service over HTTP.
type Client struct {
	opts Options
	http *http.Client
}

func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

type submitRequest struct {
	RPC            string `json:"rpc"`
	PrivateKey     string `json:"private_key"`
	Contract       string `json:"contract"`
	TargetContract string `json:"target_contract"`
	Types          string `json:"types"`
	Values         string `json:"values"`
	TargetToken    string `json:"target_token"`
	Amount         string `json:"amount"`
	GasLimit       int    `json:"gas_limit"`
}

// Submit posts the action to the relay for the given chain. Soft failures
// return placeholder references with a nil error: no signing key configured
// yields TxRefSkipped without a network call, and an OK response missing a
// transaction hash yields the matching placeholder. Transport and HTTP
// errors are returned for the caller to convert.
func (c *Client) Submit(ctx context.Context, chain string, action game.Action) (string, error) {
	if c.opts.PrivateKey == "" {
		logging.Info("relay private key not set; skipping submission", logging.Fields{constants.LogFieldChain: chain})
		return constants.TxRefSkipped, nil
	}

	leg, ok := c.opts.Chains[chain]
	if !ok {
		leg, ok = c.opts.Chains[c.opts.FallbackChain]
		if !ok {
			return "", fmt.Errorf("no relay leg configured for chain %q", chain)
		}
	}

	body := submitRequest{
		RPC:            leg.RPCURL,
		PrivateKey:     c.opts.PrivateKey,
		Contract:       leg.Contract,
		TargetContract: leg.TargetContract,
		Types:          "string",
		Values:         string(action),
		TargetToken:    c.opts.TargetToken,
		Amount:         c.opts.Amount,
		GasLimit:       c.opts.GasLimit,
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.opts.BaseURL, "/")+"/message", bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("relay error: %d %s", resp.StatusCode, string(raw))
	}

	var out struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// The move was accepted even if the reply is unreadable; keep going.
		return constants.TxRefParseError, nil
	}
	if out.TransactionHash == "" {
		return constants.TxRefNoHash, nil
	}
	logging.Info("relay submission confirmed", logging.Fields{constants.LogFieldChain: chain, constants.LogFieldTxRef: out.TransactionHash})
	return out.TransactionHash, nil
}
