package solana

import (
	"context"
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	pkgerrors "github.com/pkg/errors"
)

// RPCGateway talks to a Solana node over JSON-RPC. It holds no state of its
// own; every method is a single round-trip.
type RPCGateway struct {
	client *rpc.Client
}

// NewRPCGateway creates a gateway against the given RPC endpoint.
func NewRPCGateway(endpoint string) *RPCGateway {
	return &RPCGateway{client: rpc.New(endpoint)}
}

// AccountExists reports whether an account is present on chain. A not-found
// response is not an error.
func (g *RPCGateway) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	out, err := g.client.GetAccountInfo(ctx, addr)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrapf(err, "getAccountInfo %s", addr)
	}
	return out != nil && out.Value != nil, nil
}

// GetTokenDecimals returns the decimals exponent of the mint.
func (g *RPCGateway) GetTokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	out, err := g.client.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "getTokenSupply %s", mint)
	}
	if out == nil || out.Value == nil {
		return 0, pkgerrors.Errorf("getTokenSupply %s: empty response", mint)
	}
	return out.Value.Decimals, nil
}

// GetTokenBalance returns the raw token balance of a token account.
func (g *RPCGateway) GetTokenBalance(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	out, err := g.client.GetTokenAccountBalance(ctx, tokenAccount, rpc.CommitmentFinalized)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "getTokenAccountBalance %s", tokenAccount)
	}
	if out == nil || out.Value == nil {
		return 0, pkgerrors.Errorf("getTokenAccountBalance %s: empty response", tokenAccount)
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "parse balance %q", out.Value.Amount)
	}
	return amount, nil
}

// GetRecentBlockhash fetches a fresh blockhash to anchor a transaction.
func (g *RPCGateway) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, pkgerrors.Wrap(err, "getLatestBlockhash")
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, pkgerrors.New("getLatestBlockhash: empty response")
	}
	return out.Value.Blockhash, nil
}

// Submit broadcasts a signed transaction and returns its signature.
// Preflight is left on so obviously invalid transactions are rejected
// before they consume a fee.
func (g *RPCGateway) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, pkgerrors.Wrap(err, "sendTransaction")
	}
	return sig, nil
}
