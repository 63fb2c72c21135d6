package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Side is the normalized taker side of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type Trade struct {
	ID       string
	Exchange Exchange
	Symbol   string
	Price    float64
	Quantity float64
	Side     Side
	Time     time.Time
}

func NewTrade(
	id string,
	exchange Exchange,
	symbol string,
	price float64,
	quantity float64,
	side Side,
	tradeTime time.Time,
) *Trade {
	return &Trade{
		ID:       id,
		Exchange: exchange,
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
		Side:     side,
		Time:     tradeTime,
	}
}

func (t *Trade) Validate() error {
	if t.Symbol == "" {
		return ErrInvalidSymbol
	}
	if t.Price < 0 || math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return ErrInvalidPrice
	}
	if t.Quantity < 0 || math.IsNaN(t.Quantity) || math.IsInf(t.Quantity, 0) {
		return ErrInvalidQuantity
	}
	return nil
}

// TradeID builds the store dedup key from the source's native trade identifier.
// The exchange and symbol prefixes keep identifiers from colliding across
// sources that reuse the same numeric ID space.
func TradeID(exchange Exchange, symbol, nativeID string) string {
	return fmt.Sprintf("%s:%s:%s", exchange, symbol, nativeID)
}

// ContentTradeID derives a deterministic identifier for sources that expose no
// stable trade ID of their own. Hashing the trade content keeps repeated
// backfills over the same range idempotent, which a random fallback would not.
func ContentTradeID(exchange Exchange, symbol string, price, quantity float64, tradeTime time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%.8f:%.8f:%d",
		exchange, symbol, price, quantity, tradeTime.UnixMilli())))
	return fmt.Sprintf("%s:%s:h%s", exchange, symbol, hex.EncodeToString(sum[:8]))
}
