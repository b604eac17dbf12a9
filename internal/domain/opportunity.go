package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArbitrageOpportunity is a detected buy-low/sell-high situation across two
// venues for one token pair. All derived fields are computed once by
// NewOpportunity and are read-only afterward, with one exception: the
// calculator's market-condition adjustment revises GasCost and NetProfit
// together so that NetProfit = EstimatedProfit - GasCost keeps holding.
type ArbitrageOpportunity struct {
	ID                        string          `json:"id"`
	Pair                      TokenPair       `json:"token_pair"`
	BuyDex                    string          `json:"buy_dex"`
	SellDex                   string          `json:"sell_dex"`
	BuyPrice                  decimal.Decimal `json:"buy_price"`
	SellPrice                 decimal.Decimal `json:"sell_price"`
	PriceDifference           decimal.Decimal `json:"price_difference"`
	PriceDifferencePercentage decimal.Decimal `json:"price_difference_percentage"`
	EstimatedProfit           decimal.Decimal `json:"estimated_profit"`
	TradeAmount               decimal.Decimal `json:"trade_amount"`
	GasCost                   decimal.Decimal `json:"gas_cost"`
	NetProfit                 decimal.Decimal `json:"net_profit"`
	Timestamp                 time.Time       `json:"timestamp"`
}

// NewOpportunity constructs an opportunity and computes every derived field:
// price difference, difference percentage, estimated gross profit over the
// trade amount, and net profit after the gas cost estimate.
func NewOpportunity(
	pair TokenPair,
	buyDex, sellDex string,
	buyPrice, sellPrice, tradeAmount, gasCost decimal.Decimal,
) ArbitrageOpportunity {
	diff := sellPrice.Sub(buyPrice)

	var diffPct decimal.Decimal
	if buyPrice.IsPositive() {
		diffPct = diff.Div(buyPrice).Mul(decimal.NewFromInt(100))
	}

	estimated := diff.Mul(tradeAmount)

	return ArbitrageOpportunity{
		ID:                        uuid.Must(uuid.NewRandom()).String(),
		Pair:                      pair,
		BuyDex:                    buyDex,
		SellDex:                   sellDex,
		BuyPrice:                  buyPrice,
		SellPrice:                 sellPrice,
		PriceDifference:           diff,
		PriceDifferencePercentage: diffPct,
		EstimatedProfit:           estimated,
		TradeAmount:               tradeAmount,
		GasCost:                   gasCost,
		NetProfit:                 estimated.Sub(gasCost),
		Timestamp:                 time.Now().UTC(),
	}
}
