package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	appmw "github.com/GiorgiUbiria/ewallet/internal/middleware"
	"github.com/GiorgiUbiria/ewallet/internal/seed"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingAmount  = wallet.NewError(wallet.KindValidation, "MISSING_FIELDS", "amount is required")
	ErrAmountTooLarge = wallet.NewError(wallet.KindValidation, "AMOUNT_LIMIT_EXCEEDED", "amount exceeds the per-transfer limit")
	ErrInvalidQuery   = wallet.NewError(wallet.KindValidation, "INVALID_QUERY", "limit and before must be non-negative integers")
)

type Settings struct {
	// MaxTransferAmount is a display-level cap; zero disables it.
	MaxTransferAmount int64
	OperationTimeout  time.Duration
	StartingBalance   int64
	IsAdmin           func(email string) bool
}

type Handler struct {
	wallet   *wallet.Engine
	auth     *auth.Service
	backfill seed.BalanceBackfiller
	settings Settings
}

func New(engine *wallet.Engine, authSvc *auth.Service, backfill seed.BalanceBackfiller, settings Settings) *Handler {
	if settings.OperationTimeout <= 0 {
		settings.OperationTimeout = 5 * time.Second
	}
	if settings.IsAdmin == nil {
		settings.IsAdmin = func(string) bool { return false }
	}
	return &Handler{wallet: engine, auth: authSvc, backfill: backfill, settings: settings}
}

func (h *Handler) opContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.settings.OperationTimeout)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteCodedError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return false
	}
	return true
}

func callerID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, ok := appmw.AccountID(r.Context())
	if !ok {
		httputil.WriteCodedError(w, http.StatusUnauthorized, "NO_TOKEN", "unauthorized")
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		httputil.WriteDomainError(w, wallet.ErrRequestNotFound)
		return 0, false
	}
	return id, true
}

// Amount is a JSON number in minor units. Quoted values are kept but
// flagged so parseAmount can reject them.
type Amount struct {
	decimal.Decimal
	quoted bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		a.quoted = true
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

// parseAmount accepts only whole, positive minor-unit values that fit in
// int64 and respect the configured cap.
func (h *Handler) parseAmount(a *Amount) (int64, error) {
	if a == nil {
		return 0, ErrMissingAmount
	}
	if a.quoted {
		return 0, wallet.ErrInvalidAmount
	}
	d := &a.Decimal
	if !d.IsInteger() || !d.IsPositive() {
		return 0, wallet.ErrInvalidAmount
	}
	n := d.IntPart()
	if !decimal.NewFromInt(n).Equal(*d) {
		return 0, wallet.ErrInvalidAmount
	}
	if h.settings.MaxTransferAmount > 0 && n > h.settings.MaxTransferAmount {
		return 0, ErrAmountTooLarge
	}
	return n, nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (uint64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrInvalidQuery
	}
	return n, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func resultLabel(err error, replayed bool) string {
	switch {
	case err != nil:
		return wallet.KindOf(err).String()
	case replayed:
		return "replayed"
	default:
		return "success"
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
