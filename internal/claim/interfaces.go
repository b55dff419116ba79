package claim

import (
	"context"

	"airdrop-api/internal/store"

	"github.com/gagliardetto/solana-go"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/claim_mocks.go -package=mocks

// LedgerGateway is the orchestrator's view of the Solana node. Every call
// is a network round-trip; implementations must honor ctx cancellation.
type LedgerGateway interface {
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
	GetTokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error)
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// ClaimStore is the durable one-record-per-subject ledger. CreateClaimIfAbsent
// must be atomic: of two concurrent creates for the same subject, exactly one
// reports created.
type ClaimStore interface {
	GetClaim(ctx context.Context, subject string) (*store.Claim, error)
	CreateClaimIfAbsent(ctx context.Context, c store.Claim) (bool, error)
}
