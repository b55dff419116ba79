package solana

import (
	"github.com/gagliardetto/solana-go"
)

// The airdrop mint is a Token-2022 asset, so associated token accounts are
// derived with the Token-2022 program id as the middle seed. The library's
// FindAssociatedTokenAddress helper assumes the legacy token program and
// would produce a different, unfunded address.
var (
	// TokenProgramID is the SPL Token-2022 program.
	TokenProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// AssociatedTokenProgramID is the SPL associated-token-account program.
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// DeriveTokenAccount returns the associated token account that holds the
// given mint for the given owner. The derivation is the canonical
// program-derived-address search: seeds (owner, token program, mint) against
// the associated-token program, walking the bump byte until the candidate
// falls off the ed25519 curve.
func DeriveTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgramID,
	)
	return addr, err
}
