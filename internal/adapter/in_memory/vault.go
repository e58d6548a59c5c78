package in_memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.Custody = (*Vault)(nil)

// Vault is an in-memory token-custody ledger: a balance per (holder, asset)
// pair. Escrow moves funds from the user to the market vault, Withdraw moves
// them back. Every transfer conserves the total supply of each asset.
type Vault struct {
	mu       sync.Mutex
	holdings map[holdingKey]uint64
}

type holdingKey struct {
	holder string
	asset  string
}

func NewVault() *Vault {
	return &Vault{holdings: make(map[holdingKey]uint64)}
}

// Fund mints amount of asset to the holder. Test and bootstrap helper.
func (v *Vault) Fund(holder, asset string, amount uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.holdings[holdingKey{holder, asset}] += amount
}

// Holdings returns the holder's balance of asset.
func (v *Vault) Holdings(holder, asset string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.holdings[holdingKey{holder, asset}]
}

func (v *Vault) Escrow(ctx context.Context, user, asset, vault string, amount uint64) error {
	return v.transfer(user, vault, asset, amount)
}

func (v *Vault) Withdraw(ctx context.Context, user, asset, vault string, amount uint64) error {
	return v.transfer(vault, user, asset, amount)
}

func (v *Vault) transfer(from, to, asset string, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	src := holdingKey{from, asset}
	if v.holdings[src] < amount {
		return fmt.Errorf("%w: %s holds %d of %s, need %d", domain.ErrInsufficientFunds, from, v.holdings[src], asset, amount)
	}
	v.holdings[src] -= amount
	v.holdings[holdingKey{to, asset}] += amount
	return nil
}
