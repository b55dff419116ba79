package claim

import (
	"errors"
	"fmt"
)

// Kind is a stable reason code describing why a claim attempt failed.
// Codes are part of the API contract and are returned verbatim to callers.
type Kind string

const (
	// KindInvalidWallet means the receiver wallet address failed to parse.
	// No side effect occurred; the caller can retry with a corrected address.
	KindInvalidWallet Kind = "invalid_wallet"

	// KindExhausted means the airdrop source account does not hold enough
	// tokens to fund the claim. No submission was attempted, or the ledger
	// itself rejected the transfer for insufficient funds.
	KindExhausted Kind = "exhausted"

	// KindSenderAccountMissing means the airdrop source has no token account
	// for the configured mint. Operator action is required.
	KindSenderAccountMissing Kind = "sender_account_missing"

	// KindMintQueryFailed means the mint decimals lookup failed. Transient;
	// safe to retry, nothing was submitted.
	KindMintQueryFailed Kind = "mint_query_failed"

	// KindAnchorFetchFailed means the recent blockhash fetch failed.
	// Transient; safe to retry, nothing was submitted.
	KindAnchorFetchFailed Kind = "anchor_fetch_failed"

	// KindSubmissionFailed means the transaction send failed. The transfer
	// may or may not have landed on chain; never retried automatically.
	KindSubmissionFailed Kind = "submission_failed"

	// KindPersistenceFailed means the transfer was submitted but the claim
	// record write failed. The subject could re-attempt and be paid twice;
	// this path emits an audit log for manual reconciliation.
	KindPersistenceFailed Kind = "persistence_failed"

	// KindStoreUnavailable means the idempotency check itself failed. The
	// claim is rejected without submission rather than risking a double payout.
	KindStoreUnavailable Kind = "store_unavailable"
)

// Error is the failure type returned by the orchestrator. It labels the
// stage that failed so callers can tell "never attempted" from "possibly
// attempted".
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("claim %s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("claim %s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf extracts the reason code from an orchestrator error. It returns
// an empty Kind for errors that did not originate from a claim attempt.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
