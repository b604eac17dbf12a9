package dex

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/dexarb/internal/chain"
	"github.com/alanyoungcy/dexarb/internal/config"
	"github.com/alanyoungcy/dexarb/internal/domain"
)

// routerABIJSON covers the V2-compatible router method used for quoting.
const routerABIJSON = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// factoryABIJSON and pairABIJSON cover the factory/pair reads used for the
// liquidity estimate.
const factoryABIJSON = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenA", "type": "address"},
			{"internalType": "address", "name": "tokenB", "type": "address"}
		],
		"name": "getPair",
		"outputs": [
			{"internalType": "address", "name": "pair", "type": "address"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

const pairABIJSON = `[
	{
		"inputs": [],
		"name": "getReserves",
		"outputs": [
			{"internalType": "uint112", "name": "reserve0", "type": "uint112"},
			{"internalType": "uint112", "name": "reserve1", "type": "uint112"},
			{"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// QuickSwap quotes prices through a Uniswap-V2-compatible router and reports
// pool liquidity from the pair contract's reserves.
type QuickSwap struct {
	chain      *chain.Client
	cfg        config.DexConfig
	router     common.Address
	factory    common.Address
	hasFactory bool
	routerABI  abi.ABI
	factoryABI abi.ABI
	pairABI    abi.ABI
	logger     *slog.Logger
}

// NewQuickSwap creates the adapter.
func NewQuickSwap(chainClient *chain.Client, cfg config.DexConfig, logger *slog.Logger) (*QuickSwap, error) {
	router, err := chain.ParseAddress(cfg.RouterAddress)
	if err != nil {
		return nil, err
	}
	routerABI, err := abi.JSON(strings.NewReader(routerABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse router abi: %w", err)
	}
	factoryABI, err := abi.JSON(strings.NewReader(factoryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	pairABI, err := abi.JSON(strings.NewReader(pairABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse pair abi: %w", err)
	}

	q := &QuickSwap{
		chain:      chainClient,
		cfg:        cfg,
		router:     router,
		routerABI:  routerABI,
		factoryABI: factoryABI,
		pairABI:    pairABI,
		logger:     logger.With(slog.String("dex", cfg.Name)),
	}
	if cfg.FactoryAddress != "" {
		factory, err := chain.ParseAddress(cfg.FactoryAddress)
		if err != nil {
			return nil, err
		}
		q.factory = factory
		q.hasFactory = true
	}
	return q, nil
}

// Name returns the configured venue name.
func (q *QuickSwap) Name() string { return q.cfg.Name }

// GetPrice derives a unit price by routing one token0 through getAmountsOut.
func (q *QuickSwap) GetPrice(ctx context.Context, pair domain.TokenPair) (domain.PriceQuote, error) {
	token0, err := chain.ParseAddress(pair.Token0)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	token1, err := chain.ParseAddress(pair.Token1)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	amounts, err := q.getAmountsOut(ctx, baseQuoteAmount, []common.Address{token0, token1})
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if len(amounts) < 2 {
		return domain.PriceQuote{}, fmt.Errorf("quickswap: short amounts response (%d)", len(amounts))
	}

	price := priceFromAmounts(baseQuoteAmount, amounts[len(amounts)-1])
	if !price.IsPositive() {
		return domain.PriceQuote{}, fmt.Errorf("quickswap: %w for %s", domain.ErrNoQuote, pair.Label())
	}

	quote := domain.PriceQuote{
		DexName:   q.cfg.Name,
		Pair:      pair,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
	if liq, err := q.GetLiquidity(ctx, pair); err == nil {
		quote.Liquidity = liq
	}
	return quote, nil
}

// GetLiquidity reads the pair contract's token1 reserve as the liquidity
// figure. Unknown (no factory configured, missing pool) is reported as an
// invalid NullDecimal, not an error.
func (q *QuickSwap) GetLiquidity(ctx context.Context, pair domain.TokenPair) (decimal.NullDecimal, error) {
	if !q.hasFactory {
		return decimal.NullDecimal{}, nil
	}

	token0, err := chain.ParseAddress(pair.Token0)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	token1, err := chain.ParseAddress(pair.Token1)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	data, err := q.factoryABI.Pack("getPair", token0, token1)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("pack getPair: %w", err)
	}
	out, err := q.chain.CallContract(ctx, q.factory, data)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	results, err := q.factoryABI.Unpack("getPair", out)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("unpack getPair: %w", err)
	}
	pairAddr, ok := results[0].(common.Address)
	if !ok || pairAddr == (common.Address{}) {
		return decimal.NullDecimal{}, nil
	}

	data, err = q.pairABI.Pack("getReserves")
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("pack getReserves: %w", err)
	}
	out, err = q.chain.CallContract(ctx, pairAddr, data)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	results, err = q.pairABI.Unpack("getReserves", out)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("unpack getReserves: %w", err)
	}
	reserve1, ok := results[1].(*big.Int)
	if !ok {
		return decimal.NullDecimal{}, fmt.Errorf("unexpected reserve type %T", results[1])
	}

	return decimal.NullDecimal{
		Decimal: decimal.NewFromBigInt(reserve1, 0),
		Valid:   true,
	}, nil
}

// HealthCheck routes the canonical WETH -> USDC path.
func (q *QuickSwap) HealthCheck(ctx context.Context) error {
	weth := common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	usdc := common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	if _, err := q.getAmountsOut(ctx, baseQuoteAmount, []common.Address{weth, usdc}); err != nil {
		return fmt.Errorf("quickswap: health check: %w", err)
	}
	return nil
}

func (q *QuickSwap) getAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	data, err := q.routerABI.Pack("getAmountsOut", amountIn, path)
	if err != nil {
		return nil, fmt.Errorf("pack getAmountsOut: %w", err)
	}
	out, err := q.chain.CallContract(ctx, q.router, data)
	if err != nil {
		return nil, err
	}
	results, err := q.routerABI.Unpack("getAmountsOut", out)
	if err != nil {
		return nil, fmt.Errorf("unpack getAmountsOut: %w", err)
	}
	amounts, ok := results[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amounts type %T", results[0])
	}
	return amounts, nil
}

var _ Client = (*QuickSwap)(nil)
