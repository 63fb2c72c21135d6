package entities

import "errors"

var (
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrUnknownExchange = errors.New("unknown exchange")
)
