package handlers

import (
	"fmt"
	"net/http"

	"github.com/GiorgiUbiria/ewallet/internal/creditscore"
	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"github.com/GiorgiUbiria/ewallet/internal/seed"
	"go.uber.org/zap"
)

func (h *Handler) MyCreditScore(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, err := h.wallet.Account(ctx, id)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	sum, err := h.wallet.Summary(ctx, id)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, creditscore.Score(creditscore.FromSummary(acct.Balance, sum)))
}

type BackfillResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

// UpdateDefaultBalance gives every empty account the starting balance. Only
// accounts listed as admins may call it.
func (h *Handler) UpdateDefaultBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.opContext(r)
	defer cancel()

	acct, err := h.wallet.Account(ctx, id)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if !h.settings.IsAdmin(acct.Email) {
		logger.Log.Warn("non-admin called balance backfill", zap.Uint64("account_id", id))
		httputil.WriteCodedError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
		return
	}

	n, err := seed.BackfillDefaultBalance(ctx, h.backfill, h.settings.StartingBalance)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BackfillResponse{
		Message: fmt.Sprintf("Updated %d accounts with default balance of %d", n, h.settings.StartingBalance),
		Updated: n,
	})
}
