package solana_test

import (
	"testing"

	solutil "airdrop-api/internal/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTokenAccountDeterministic(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	first, err := solutil.DeriveTokenAccount(owner, mint)
	require.NoError(t, err)
	second, err := solutil.DeriveTokenAccount(owner, mint)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeriveTokenAccountDistinctPerOwner(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	a, err := solutil.DeriveTokenAccount(solana.NewWallet().PublicKey(), mint)
	require.NoError(t, err)
	b, err := solutil.DeriveTokenAccount(solana.NewWallet().PublicKey(), mint)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDeriveTokenAccountUsesTokenProgramSeed(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	derived, err := solutil.DeriveTokenAccount(owner, mint)
	require.NoError(t, err)

	expected, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			solutil.TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		solutil.AssociatedTokenProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, expected, derived)

	// The Token-2022 seed must not collide with the legacy-program ATA.
	legacy, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			solana.TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		solutil.AssociatedTokenProgramID,
	)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, derived)
}
