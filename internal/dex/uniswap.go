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

// uniswapQuoterAddress is the Uniswap V3 Quoter contract on Polygon.
const uniswapQuoterAddress = "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"

// quoterABIJSON is the single Quoter method the adapter needs.
const quoterABIJSON = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenIn", "type": "address"},
			{"internalType": "address", "name": "tokenOut", "type": "address"},
			{"internalType": "uint24", "name": "fee", "type": "uint24"},
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
		],
		"name": "quoteExactInputSingle",
		"outputs": [
			{"internalType": "uint256", "name": "amountOut", "type": "uint256"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// feeTiers are the Uniswap V3 pool fee tiers probed for the best quote
// (0.05%, 0.3%, 1%).
var feeTiers = []int64{500, 3000, 10000}

// baseQuoteAmount is one whole token in 18-decimal units, the amount-in used
// to derive a unit price.
var baseQuoteAmount = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// UniswapV3 quotes prices through the Uniswap V3 Quoter contract, probing
// every fee tier and keeping the best output.
type UniswapV3 struct {
	chain     *chain.Client
	cfg       config.DexConfig
	quoter    common.Address
	quoterABI abi.ABI
	logger    *slog.Logger
}

// NewUniswapV3 creates the adapter.
func NewUniswapV3(chainClient *chain.Client, cfg config.DexConfig, logger *slog.Logger) (*UniswapV3, error) {
	quoter, err := chain.ParseAddress(uniswapQuoterAddress)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(quoterABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}
	return &UniswapV3{
		chain:     chainClient,
		cfg:       cfg,
		quoter:    quoter,
		quoterABI: parsed,
		logger:    logger.With(slog.String("dex", cfg.Name)),
	}, nil
}

// Name returns the configured venue name.
func (u *UniswapV3) Name() string { return u.cfg.Name }

// GetPrice derives a unit price by quoting one token0 through the Quoter at
// every fee tier and keeping the highest output.
func (u *UniswapV3) GetPrice(ctx context.Context, pair domain.TokenPair) (domain.PriceQuote, error) {
	token0, err := chain.ParseAddress(pair.Token0)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	token1, err := chain.ParseAddress(pair.Token1)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	bestPrice := decimal.Zero
	found := false
	for _, tier := range feeTiers {
		amountOut, err := u.quoteExactInputSingle(ctx, token0, token1, tier, baseQuoteAmount)
		if err != nil {
			u.logger.DebugContext(ctx, "fee tier quote failed",
				slog.Int64("fee_tier", tier),
				slog.String("error", err.Error()),
			)
			continue
		}
		price := priceFromAmounts(baseQuoteAmount, amountOut)
		if price.GreaterThan(bestPrice) {
			bestPrice = price
			found = true
		}
	}
	if !found {
		return domain.PriceQuote{}, fmt.Errorf("uniswap: %w for %s", domain.ErrNoQuote, pair.Label())
	}

	return domain.PriceQuote{
		DexName:   u.cfg.Name,
		Pair:      pair,
		Price:     bestPrice,
		Timestamp: time.Now().UTC(),
	}, nil
}

// GetLiquidity is not reported by the Quoter; pool-level liquidity would need
// per-pool contract reads, so the adapter reports unknown.
func (u *UniswapV3) GetLiquidity(ctx context.Context, pair domain.TokenPair) (decimal.NullDecimal, error) {
	return decimal.NullDecimal{}, nil
}

// HealthCheck quotes the canonical WETH/USDC pool at the 0.3% tier.
func (u *UniswapV3) HealthCheck(ctx context.Context) error {
	weth := common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	usdc := common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	if _, err := u.quoteExactInputSingle(ctx, weth, usdc, 3000, baseQuoteAmount); err != nil {
		return fmt.Errorf("uniswap: health check: %w", err)
	}
	return nil
}

func (u *UniswapV3) quoteExactInputSingle(
	ctx context.Context,
	tokenIn, tokenOut common.Address,
	feeTier int64,
	amountIn *big.Int,
) (*big.Int, error) {
	data, err := u.quoterABI.Pack("quoteExactInputSingle",
		tokenIn, tokenOut, big.NewInt(feeTier), amountIn, big.NewInt(0),
	)
	if err != nil {
		return nil, fmt.Errorf("pack quote call: %w", err)
	}

	out, err := u.chain.CallContract(ctx, u.quoter, data)
	if err != nil {
		return nil, err
	}

	results, err := u.quoterABI.Unpack("quoteExactInputSingle", out)
	if err != nil {
		return nil, fmt.Errorf("unpack quote result: %w", err)
	}
	amountOut, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected quote result type %T", results[0])
	}
	return amountOut, nil
}

// priceFromAmounts converts an (amountIn, amountOut) pair into a unit price.
func priceFromAmounts(amountIn, amountOut *big.Int) decimal.Decimal {
	in := decimal.NewFromBigInt(amountIn, 0)
	if !in.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amountOut, 0).Div(in)
}

var _ Client = (*UniswapV3)(nil)
