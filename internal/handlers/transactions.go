package handlers

import (
	"net/http"
	"strconv"

	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	appmw "github.com/GiorgiUbiria/ewallet/internal/middleware"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"go.uber.org/zap"
)

const (
	idempotencyHeader = "Idempotency-Key"
	// nextCursorHeader carries the before cursor of the next history page.
	nextCursorHeader  = "X-Next-Before"
)

// TransferRequest accepts receiverEmail as an alias of payeeIdentifier.
type TransferRequest struct {
	PayeeIdentifier string  `json:"payeeIdentifier"`
	ReceiverEmail   string  `json:"receiverEmail"`
	Amount          *Amount `json:"amount"`
	Description     string  `json:"description"`
	Method          string  `json:"method"`
}

type TransferResponse struct {
	Message     string              `json:"message"`
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  int64               `json:"newBalance"`
	Replayed    bool                `json:"replayed,omitempty"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	payerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if !decode(w, r, &req) {
		return
	}
	amount, err := h.parseAmount(req.Amount)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	res, err := h.wallet.Transfer(ctx, wallet.TransferInput{
		PayerID:         payerID,
		PayeeIdentifier: firstNonEmpty(req.PayeeIdentifier, req.ReceiverEmail),
		Amount:          amount,
		Description:     req.Description,
		Method:          req.Method,
		IdempotencyKey:  r.Header.Get(idempotencyHeader),
	})
	appmw.TransfersTotal.WithLabelValues("transfer", resultLabel(err, res != nil && res.Replayed)).Inc()
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	} else {
		logger.Log.Info("transfer completed",
			zap.Uint64("transaction_id", res.Transaction.ID),
			zap.Uint64("payer_id", payerID),
			zap.Uint64("payee_id", res.Transaction.ReceiverID),
			zap.Int64("amount", amount),
		)
	}
	httputil.WriteJSON(w, status, TransferResponse{
		Message:     "Transfer successful",
		Transaction: res.Transaction,
		NewBalance:  res.NewBalance,
		Replayed:    res.Replayed,
	})
}

// MyTransactions returns one page of history, newest first. When older
// records exist the X-Next-Before header holds the cursor for them.
func (h *Handler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	before, err := queryInt(r, "before")
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	page, err := h.wallet.History(ctx, id, wallet.HistoryPage{Limit: int(min(limit, wallet.MaxHistoryLimit)), Before: before})
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	recs := page.Records
	if recs == nil {
		recs = []models.Transaction{}
	}
	if page.NextBefore != 0 {
		w.Header().Set(nextCursorHeader, strconv.FormatUint(page.NextBefore, 10))
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}
