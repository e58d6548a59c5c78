package port

import "context"

// Custody moves fungible balances between user-owned holdings and a market's
// escrow vault. Both calls are all-or-nothing; Escrow fails with
// domain.ErrInsufficientFunds when the user holds less than amount.
type Custody interface {
	Escrow(ctx context.Context, user, asset, vault string, amount uint64) error
	Withdraw(ctx context.Context, user, asset, vault string, amount uint64) error
}
