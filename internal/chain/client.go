// Package chain wraps the go-ethereum RPC client with the few operations the
// bot needs: contract calls, gas price reads, and connectivity health checks.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

// Client is a thin wrapper over ethclient verified against the configured
// chain ID at dial time.
type Client struct {
	ec      *ethclient.Client
	chainID uint64
	logger  *slog.Logger
}

// Dial connects to the configured RPC endpoint and verifies the node reports
// the expected chain ID.
func Dial(ctx context.Context, cfg config.BlockchainConfig, logger *slog.Logger) (*Client, error) {
	log := logger.With(slog.String("component", "chain"))
	log.InfoContext(ctx, "connecting to RPC", slog.String("rpc_url", cfg.RPCURL))

	ec, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("chain: dial %s: %w", cfg.RPCURL, err)
	}

	chainID, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, fmt.Errorf("chain: get chain id: %w", err)
	}
	if chainID.Uint64() != cfg.ChainID {
		ec.Close()
		return nil, fmt.Errorf("chain: %w: expected %d, got %d",
			domain.ErrChainMismatch, cfg.ChainID, chainID.Uint64())
	}

	log.InfoContext(ctx, "connected", slog.Uint64("chain_id", chainID.Uint64()))
	return &Client{ec: ec, chainID: chainID.Uint64(), logger: log}, nil
}

// ChainID returns the verified chain ID.
func (c *Client) ChainID() uint64 { return c.chainID }

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.ec.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("chain: block number: %w", err)
	}
	return n, nil
}

// GasPrice returns the node's suggested gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain: suggest gas price: %w", err)
	}
	return price, nil
}

// EstimateGasCost returns gasLimit × current gas price, in wei.
func (c *Client) EstimateGasCost(ctx context.Context, gasLimit uint64) (*big.Int, error) {
	price, err := c.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(price, new(big.Int).SetUint64(gasLimit)), nil
}

// CallContract performs a read-only eth_call against the given contract with
// pre-packed calldata and returns the raw return bytes.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: call %s: %w", to.Hex(), err)
	}
	return out, nil
}

// HealthCheck verifies the node answers both a block-number and a gas-price
// read.
func (c *Client) HealthCheck(ctx context.Context) error {
	block, err := c.BlockNumber(ctx)
	if err != nil {
		return err
	}
	price, err := c.GasPrice(ctx)
	if err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "health check passed",
		slog.Uint64("block", block),
		slog.String("gas_price_wei", price.String()),
	)
	return nil
}

// Close shuts down the underlying RPC connection.
func (c *Client) Close() {
	c.ec.Close()
}

// ParseAddress validates and parses a hex contract address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("chain: invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// weiPerEther is 1e18, the wei denomination of the native token.
var weiPerEther = decimal.New(1, 18)

// GasCostUSD converts a wei-denominated gas cost to USD using the given
// native-token price. The conversion is a coarse operator aid for refreshing
// the detector's gas estimate, not an accounting figure.
func GasCostUSD(costWei *big.Int, nativeUSD decimal.Decimal) decimal.Decimal {
	wei := decimal.NewFromBigInt(costWei, 0)
	return wei.Div(weiPerEther).Mul(nativeUSD)
}
