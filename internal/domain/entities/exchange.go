package entities

import "strings"

// Exchange identifies a supported trade data source.
type Exchange string

const (
	ExchangeBinance Exchange = "binance"
	ExchangeOKX     Exchange = "okx"
	ExchangeBybit   Exchange = "bybit"
)

func (e Exchange) String() string {
	return string(e)
}

// ParseExchange normalizes a caller-supplied exchange name.
func ParseExchange(name string) (Exchange, error) {
	switch Exchange(strings.ToLower(strings.TrimSpace(name))) {
	case ExchangeBinance:
		return ExchangeBinance, nil
	case ExchangeOKX:
		return ExchangeOKX, nil
	case ExchangeBybit:
		return ExchangeBybit, nil
	default:
		return "", ErrUnknownExchange
	}
}
