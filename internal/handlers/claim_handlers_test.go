package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"airdrop-api/internal/auth"
	"airdrop-api/internal/claim"
	"airdrop-api/internal/logger"
	"airdrop-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger()
}

// fakeClaimer stubs the orchestrator for handler tests.
type fakeClaimer struct {
	claimFn  func(ctx context.Context, identity claim.Identity, receiverWallet string) (*claim.Result, error)
	lookupFn func(ctx context.Context, subject string) (*store.Claim, error)
}

func (f *fakeClaimer) Claim(ctx context.Context, identity claim.Identity, receiverWallet string) (*claim.Result, error) {
	return f.claimFn(ctx, identity, receiverWallet)
}

func (f *fakeClaimer) Lookup(ctx context.Context, subject string) (*store.Claim, error) {
	return f.lookupFn(ctx, subject)
}

func postClaim(t *testing.T, h *ClaimHandler, subject, body string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/airdrop/claim", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if subject != "" {
		c.Set(auth.ContextSubjectKey, subject)
	}

	h.ClaimAirdrop(c)
	return w
}

func TestClaimAirdropSuccess(t *testing.T) {
	var gotIdentity claim.Identity
	var gotWallet string
	h := NewClaimHandler(&fakeClaimer{
		claimFn: func(_ context.Context, identity claim.Identity, receiverWallet string) (*claim.Result, error) {
			gotIdentity = identity
			gotWallet = receiverWallet
			return &claim.Result{
				Status:      claim.StatusSuccess,
				Wallet:      receiverWallet,
				Signature:   "SIG123",
				ExplorerURL: "https://explorer.solana.com/tx/SIG123",
			}, nil
		},
	})

	w := postClaim(t, h, "auth0|u1", `{"receiver_wallet":"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp claim.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "SIG123", resp.Signature)
	assert.Equal(t, "auth0|u1", gotIdentity.Subject)
	assert.Equal(t, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", gotWallet)
}

func TestClaimAirdropAlreadyClaimed(t *testing.T) {
	h := NewClaimHandler(&fakeClaimer{
		claimFn: func(context.Context, claim.Identity, string) (*claim.Result, error) {
			return &claim.Result{Status: claim.StatusAlreadyClaimed, Signature: "SIG123"}, nil
		},
	})

	w := postClaim(t, h, "auth0|u1", `{"receiver_wallet":"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp claim.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_claimed", resp.Status)
	assert.Equal(t, "SIG123", resp.Signature)
}

func TestClaimAirdropNoSubject(t *testing.T) {
	h := NewClaimHandler(&fakeClaimer{
		claimFn: func(context.Context, claim.Identity, string) (*claim.Result, error) {
			t.Fatal("claim should not be called without a subject")
			return nil, nil
		},
	})

	w := postClaim(t, h, "", `{"receiver_wallet":"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimAirdropBadBody(t *testing.T) {
	h := NewClaimHandler(&fakeClaimer{
		claimFn: func(context.Context, claim.Identity, string) (*claim.Result, error) {
			t.Fatal("claim should not be called for a bad body")
			return nil, nil
		},
	})

	w := postClaim(t, h, "auth0|u1", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimAirdropErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		kind       claim.Kind
		wantStatus int
	}{
		{name: "invalid wallet", kind: claim.KindInvalidWallet, wantStatus: http.StatusBadRequest},
		{name: "exhausted", kind: claim.KindExhausted, wantStatus: http.StatusServiceUnavailable},
		{name: "store unavailable", kind: claim.KindStoreUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "mint query failed", kind: claim.KindMintQueryFailed, wantStatus: http.StatusBadGateway},
		{name: "anchor fetch failed", kind: claim.KindAnchorFetchFailed, wantStatus: http.StatusBadGateway},
		{name: "submission failed", kind: claim.KindSubmissionFailed, wantStatus: http.StatusBadGateway},
		{name: "sender account missing", kind: claim.KindSenderAccountMissing, wantStatus: http.StatusInternalServerError},
		{name: "persistence failed", kind: claim.KindPersistenceFailed, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewClaimHandler(&fakeClaimer{
				claimFn: func(context.Context, claim.Identity, string) (*claim.Result, error) {
					return nil, &claim.Error{Kind: tt.kind, Stage: "test", Err: errors.New("boom")}
				},
			})

			w := postClaim(t, h, "auth0|u1", `{"receiver_wallet":"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ClaimErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, string(tt.kind), resp.Reason)
		})
	}
}

func TestGetClaimStatus(t *testing.T) {
	tests := []struct {
		name        string
		record      *store.Claim
		wantClaimed bool
	}{
		{
			name:        "not yet claimed",
			record:      nil,
			wantClaimed: false,
		},
		{
			name: "already claimed",
			record: &store.Claim{
				Subject:       "auth0|u1",
				WalletAddress: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
				TxSignature:   "SIG123",
				Claimed:       true,
			},
			wantClaimed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewClaimHandler(&fakeClaimer{
				lookupFn: func(_ context.Context, subject string) (*store.Claim, error) {
					assert.Equal(t, "auth0|u1", subject)
					return tt.record, nil
				},
			})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/airdrop/status", nil)
			c.Set(auth.ContextSubjectKey, "auth0|u1")

			h.GetClaimStatus(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var resp ClaimStatusResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantClaimed, resp.Claimed)
			if tt.wantClaimed {
				assert.Equal(t, "SIG123", resp.Signature)
			}
		})
	}
}
