package in_memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VK-RED/clobby/internal/domain"
)

func TestVault_EscrowMovesFundsToVault(t *testing.T) {
	v := NewVault()
	v.Fund("alice", "USDC", 5000)

	require.NoError(t, v.Escrow(context.Background(), "alice", "USDC", "SOL/USDC/USDC/vault", 2000))

	assert.Equal(t, uint64(3000), v.Holdings("alice", "USDC"))
	assert.Equal(t, uint64(2000), v.Holdings("SOL/USDC/USDC/vault", "USDC"))
}

func TestVault_EscrowInsufficientFunds(t *testing.T) {
	v := NewVault()
	v.Fund("alice", "USDC", 100)

	err := v.Escrow(context.Background(), "alice", "USDC", "vault", 101)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The failed transfer left both sides untouched.
	assert.Equal(t, uint64(100), v.Holdings("alice", "USDC"))
	assert.Zero(t, v.Holdings("vault", "USDC"))
}

func TestVault_WithdrawReturnsFunds(t *testing.T) {
	v := NewVault()
	ctx := context.Background()
	v.Fund("bob", "SOL", 300)

	require.NoError(t, v.Escrow(ctx, "bob", "SOL", "vault", 300))
	require.NoError(t, v.Withdraw(ctx, "bob", "SOL", "vault", 300))

	assert.Equal(t, uint64(300), v.Holdings("bob", "SOL"))
	assert.Zero(t, v.Holdings("vault", "SOL"))
}

func TestVault_WithdrawCannotOverdrawVault(t *testing.T) {
	v := NewVault()
	ctx := context.Background()
	v.Fund("bob", "SOL", 100)
	require.NoError(t, v.Escrow(ctx, "bob", "SOL", "vault", 100))

	err := v.Withdraw(ctx, "bob", "SOL", "vault", 101)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestVault_AssetsAreIndependent(t *testing.T) {
	v := NewVault()
	v.Fund("alice", "USDC", 1000)
	v.Fund("alice", "SOL", 50)

	require.NoError(t, v.Escrow(context.Background(), "alice", "SOL", "vault", 50))

	assert.Equal(t, uint64(1000), v.Holdings("alice", "USDC"))
	assert.Zero(t, v.Holdings("alice", "SOL"))
}
