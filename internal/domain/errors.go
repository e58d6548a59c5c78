package domain

import "errors"

var (
	ErrBookFull             = errors.New("book side is full")
	ErrOrderNotFound        = errors.New("order not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrOrderFilledPartially = errors.New("order filled partially")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrEventLogFull         = errors.New("event log is full")
	ErrOverflow             = errors.New("arithmetic overflow")

	ErrMarketNotFound  = errors.New("market not found")
	ErrMarketExists    = errors.New("market already exists")
	ErrBalanceNotFound = errors.New("pending balance not found")
	ErrInvalidSide     = errors.New("invalid side")
	ErrInvalidOrder    = errors.New("invalid order parameters")
	ErrInvalidMarket   = errors.New("invalid market parameters")
)
