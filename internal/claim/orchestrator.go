package claim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"airdrop-api/internal/logger"
	solutil "airdrop-api/internal/solana"
	"airdrop-api/internal/store"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is a verified claimant. Subject comes from the validated auth
// token and is the idempotency key; Email is kept for the audit trail.
type Identity struct {
	Subject string
	Email   string
}

// Result is the outcome of a claim operation.
type Result struct {
	Status      string `json:"status"` // "success" or "already_claimed"
	Wallet      string `json:"wallet,omitempty"`
	Signature   string `json:"signature"`
	ExplorerURL string `json:"explorer,omitempty"`
}

const (
	StatusSuccess        = "success"
	StatusAlreadyClaimed = "already_claimed"
)

// Config carries the static parameters of the airdrop. It is passed into
// the constructor; the orchestrator holds no process-wide mutable state.
type Config struct {
	// Signer is the airdrop owner keypair: fee payer, transfer authority
	// and sole transaction signer.
	Signer solana.PrivateKey
	// Mint is the Token-2022 mint being airdropped. Each claim grants one
	// whole token (10^decimals raw units).
	Mint solana.PublicKey
	// Cluster selects the explorer link suffix ("" or "mainnet-beta" for
	// mainnet, otherwise appended as ?cluster=).
	Cluster string
}

// Orchestrator coordinates one-time airdrop claims: idempotency gate,
// account derivation, balance checks, transaction build/sign/submit, and
// the durable claim record.
type Orchestrator struct {
	cfg     Config
	owner   solana.PublicKey
	store   ClaimStore
	gateway LedgerGateway
	log     *zap.Logger

	// inflight serializes attempts for the same subject within this
	// process so concurrent requests cannot both pass the idempotency
	// gate and double-submit. Cross-process, the store's conditional
	// insert is the backstop.
	inflight sync.Map // subject -> *sync.Mutex
}

// NewOrchestrator wires the orchestrator with its collaborators.
func NewOrchestrator(cfg Config, claims ClaimStore, gateway LedgerGateway) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		owner:   cfg.Signer.PublicKey(),
		store:   claims,
		gateway: gateway,
		log:     logger.Log,
	}
}

// Lookup returns the stored claim record for a subject, or nil when the
// subject has not claimed yet.
func (o *Orchestrator) Lookup(ctx context.Context, subject string) (*store.Claim, error) {
	rec, err := o.store.GetClaim(ctx, subject)
	if err != nil {
		return nil, newError(KindStoreUnavailable, "lookup", err)
	}
	return rec, nil
}

// Claim performs the one-time airdrop for a verified identity. The stages
// are strictly ordered: validate input, idempotency gate, on-chain state
// checks, build and submit, persist. Persistence never precedes submission
// and submission never precedes the balance check.
func (o *Orchestrator) Claim(ctx context.Context, identity Identity, receiverWallet string) (*Result, error) {
	// Receiver address validation is pure and runs before any collaborator
	// is touched.
	receiver, err := solana.PublicKeyFromBase58(receiverWallet)
	if err != nil {
		return nil, newError(KindInvalidWallet, "validate", err)
	}

	lock := o.subjectLock(identity.Subject)
	lock.Lock()
	defer lock.Unlock()

	// Idempotency gate. A prior record short-circuits with the original
	// signature; a store failure rejects the claim rather than risking a
	// second payout behind an unreadable ledger.
	prior, err := o.store.GetClaim(ctx, identity.Subject)
	if err != nil {
		return nil, newError(KindStoreUnavailable, "idempotency gate", err)
	}
	if prior != nil {
		return &Result{
			Status:      StatusAlreadyClaimed,
			Wallet:      prior.WalletAddress,
			Signature:   prior.TxSignature,
			ExplorerURL: o.explorerURL(prior.TxSignature),
		}, nil
	}

	senderATA, err := solutil.DeriveTokenAccount(o.owner, o.cfg.Mint)
	if err != nil {
		return nil, newError(KindSenderAccountMissing, "derive sender account", err)
	}
	receiverATA, err := solutil.DeriveTokenAccount(receiver, o.cfg.Mint)
	if err != nil {
		return nil, newError(KindInvalidWallet, "derive receiver account", err)
	}

	senderExists, err := o.gateway.AccountExists(ctx, senderATA)
	if err != nil {
		return nil, newError(KindSenderAccountMissing, "sender account check", err)
	}
	if !senderExists {
		return nil, newError(KindSenderAccountMissing, "sender account check",
			fmt.Errorf("airdrop source %s has no token account for mint %s", o.owner, o.cfg.Mint))
	}

	decimals, err := o.gateway.GetTokenDecimals(ctx, o.cfg.Mint)
	if err != nil {
		return nil, newError(KindMintQueryFailed, "mint decimals", err)
	}
	rawAmount := pow10(decimals) // one whole token

	receiverExists, err := o.gateway.AccountExists(ctx, receiverATA)
	if err != nil {
		return nil, newError(KindMintQueryFailed, "receiver account check", err)
	}

	balance, err := o.gateway.GetTokenBalance(ctx, senderATA)
	if err != nil {
		return nil, newError(KindMintQueryFailed, "balance check", err)
	}
	if balance < rawAmount {
		return nil, newError(KindExhausted, "balance check",
			fmt.Errorf("source balance %d below required %d", balance, rawAmount))
	}

	instructions := solutil.BuildTransferPlan(solutil.TransferPlan{
		Payer:                      o.owner,
		SenderTokenAccount:         senderATA,
		ReceiverTokenAccount:       receiverATA,
		ReceiverOwner:              receiver,
		Mint:                       o.cfg.Mint,
		RawAmount:                  rawAmount,
		Decimals:                   decimals,
		ReceiverTokenAccountExists: receiverExists,
	})

	blockhash, err := o.gateway.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, newError(KindAnchorFetchFailed, "blockhash", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(o.owner))
	if err != nil {
		return nil, newError(KindSubmissionFailed, "build transaction", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(o.owner) {
			return &o.cfg.Signer
		}
		return nil
	}); err != nil {
		return nil, newError(KindSubmissionFailed, "sign transaction", err)
	}

	sig, err := o.gateway.Submit(ctx, tx)
	if err != nil {
		// Different identities race on the shared source balance; an
		// insufficient-funds rejection at submit time is a business
		// outcome, not an operational fault.
		if isInsufficientFunds(err) {
			return nil, newError(KindExhausted, "submit", err)
		}
		return nil, newError(KindSubmissionFailed, "submit", err)
	}
	signature := sig.String()

	record := store.Claim{
		ID:            uuid.New(),
		Subject:       identity.Subject,
		Email:         identity.Email,
		WalletAddress: receiverWallet,
		TxSignature:   signature,
		Claimed:       true,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := o.store.CreateClaimIfAbsent(ctx, record)
	if err != nil {
		// Tokens are on chain but the record is not. The subject could
		// claim again, so this is the reconciliation path operators watch.
		o.log.Error("claim submitted but record write failed",
			zap.String("audit", "claim_record_gap"),
			zap.String("subject", identity.Subject),
			zap.String("wallet", receiverWallet),
			zap.String("signature", signature),
			zap.Error(err),
		)
		return nil, newError(KindPersistenceFailed, "persist", err)
	}
	if !created {
		// Another process won the conditional insert after our submission.
		o.log.Error("duplicate claim record detected after submission",
			zap.String("audit", "claim_duplicate_payout"),
			zap.String("subject", identity.Subject),
			zap.String("signature", signature),
		)
	}

	o.log.Info("airdrop claim recorded",
		zap.String("subject", identity.Subject),
		zap.String("wallet", receiverWallet),
		zap.String("signature", signature),
	)

	return &Result{
		Status:      StatusSuccess,
		Wallet:      receiverWallet,
		Signature:   signature,
		ExplorerURL: o.explorerURL(signature),
	}, nil
}

func (o *Orchestrator) subjectLock(subject string) *sync.Mutex {
	v, _ := o.inflight.LoadOrStore(subject, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (o *Orchestrator) explorerURL(signature string) string {
	url := "https://explorer.solana.com/tx/" + signature
	if o.cfg.Cluster != "" && o.cfg.Cluster != "mainnet-beta" {
		url += "?cluster=" + o.cfg.Cluster
	}
	return url
}

func isInsufficientFunds(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

func pow10(exp uint8) uint64 {
	n := uint64(1)
	for i := uint8(0); i < exp; i++ {
		n *= 10
	}
	return n
}
