package handlers

import (
	"context"
	"net/http"

	"airdrop-api/internal/auth"
	"airdrop-api/internal/claim"
	"airdrop-api/internal/logger"
	"airdrop-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Claimer is the orchestrator surface the handler needs.
type Claimer interface {
	Claim(ctx context.Context, identity claim.Identity, receiverWallet string) (*claim.Result, error)
	Lookup(ctx context.Context, subject string) (*store.Claim, error)
}

// ClaimHandler handles airdrop claim operations
type ClaimHandler struct {
	svc Claimer
}

// NewClaimHandler creates a new ClaimHandler instance
func NewClaimHandler(svc Claimer) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

// ClaimRequest represents the request body for claiming the airdrop
type ClaimRequest struct {
	ReceiverWallet string `json:"receiver_wallet" binding:"required"`
}

// ClaimErrorResponse is the rejection shape: a stable reason code the
// caller or operator can act on.
type ClaimErrorResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ClaimStatusResponse reports whether the authenticated subject has
// already claimed.
type ClaimStatusResponse struct {
	Claimed   bool   `json:"claimed"`
	Wallet    string `json:"wallet,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// ClaimAirdrop godoc
// @Summary Claim the one-time token airdrop
// @Description Transfers one token to the given wallet, exactly once per authenticated user
// @Tags airdrop
// @Accept json
// @Produce json
// @Param body body ClaimRequest true "Claim request"
// @Success 200 {object} claim.Result
// @Failure 400 {object} ClaimErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ClaimErrorResponse
// @Failure 503 {object} ClaimErrorResponse
// @Security Bearer
// @Router /airdrop/claim [post]
func (h *ClaimHandler) ClaimAirdrop(c *gin.Context) {
	subject := c.GetString(auth.ContextSubjectKey)
	if subject == "" {
		sendError(c, http.StatusUnauthorized, "No authenticated subject", nil)
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	identity := claim.Identity{
		Subject: subject,
		Email:   c.GetString(auth.ContextEmailKey),
	}

	result, err := h.svc.Claim(c.Request.Context(), identity, req.ReceiverWallet)
	if err != nil {
		h.sendClaimError(c, subject, err)
		return
	}

	sendSuccess(c, http.StatusOK, result)
}

// GetClaimStatus godoc
// @Summary Get the authenticated user's claim status
// @Tags airdrop
// @Produce json
// @Success 200 {object} ClaimStatusResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ClaimErrorResponse
// @Security Bearer
// @Router /airdrop/status [get]
func (h *ClaimHandler) GetClaimStatus(c *gin.Context) {
	subject := c.GetString(auth.ContextSubjectKey)
	if subject == "" {
		sendError(c, http.StatusUnauthorized, "No authenticated subject", nil)
		return
	}

	rec, err := h.svc.Lookup(c.Request.Context(), subject)
	if err != nil {
		h.sendClaimError(c, subject, err)
		return
	}

	if rec == nil {
		sendSuccess(c, http.StatusOK, ClaimStatusResponse{Claimed: false})
		return
	}
	sendSuccess(c, http.StatusOK, ClaimStatusResponse{
		Claimed:   true,
		Wallet:    rec.WalletAddress,
		Signature: rec.TxSignature,
	})
}

// sendClaimError maps orchestrator failure kinds onto HTTP status codes.
// The reason code in the body is the contract; the status code is a hint.
func (h *ClaimHandler) sendClaimError(c *gin.Context, subject string, err error) {
	kind := claim.KindOf(err)

	var statusCode int
	switch kind {
	case claim.KindInvalidWallet:
		statusCode = http.StatusBadRequest
	case claim.KindExhausted, claim.KindStoreUnavailable:
		statusCode = http.StatusServiceUnavailable
	case claim.KindMintQueryFailed, claim.KindAnchorFetchFailed, claim.KindSubmissionFailed:
		statusCode = http.StatusBadGateway
	case claim.KindSenderAccountMissing, claim.KindPersistenceFailed:
		statusCode = http.StatusInternalServerError
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	logger.Error("claim rejected",
		zap.String("subject", subject),
		zap.String("reason", string(kind)),
		zap.Error(err),
	)
	c.JSON(statusCode, ClaimErrorResponse{Status: "error", Reason: string(kind)})
}
