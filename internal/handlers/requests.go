package handlers

import (
	"context"
	"net/http"

	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	appmw "github.com/GiorgiUbiria/ewallet/internal/middleware"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"go.uber.org/zap"
)

// MoneyRequest accepts receiverEmail and notes as aliases.
type MoneyRequest struct {
	PayerIdentifier string  `json:"payerIdentifier"`
	ReceiverEmail   string  `json:"receiverEmail"`
	Amount          *Amount `json:"amount"`
	Note            string  `json:"note"`
	Notes           string  `json:"notes"`
}

type AcceptResponse struct {
	Message     string              `json:"message"`
	Request     *models.Transaction `json:"request"`
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  int64               `json:"newBalance"`
}

type RejectResponse struct {
	Message string              `json:"message"`
	Request *models.Transaction `json:"request"`
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req MoneyRequest
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

	rec, err := h.wallet.CreateRequest(ctx, wallet.RequestInput{
		RequesterID:     requesterID,
		PayerIdentifier: firstNonEmpty(req.PayerIdentifier, req.ReceiverEmail),
		Amount:          amount,
		Note:            firstNonEmpty(req.Note, req.Notes),
	})
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.wallet.PendingRequestsFor)
}

func (h *Handler) OutgoingRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.wallet.OutgoingRequests)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, id uint64) ([]models.Transaction, error)) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.opContext(r)
	defer cancel()

	recs, err := list(ctx, id)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if recs == nil {
		recs = []models.Transaction{}
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	actingID, ok := callerID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	res, err := h.wallet.AcceptRequest(ctx, requestID, actingID)
	appmw.TransfersTotal.WithLabelValues("accept_request", resultLabel(err, false)).Inc()
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	logger.Log.Info("request accepted",
		zap.Uint64("request_id", requestID),
		zap.Uint64("payer_id", actingID),
		zap.Int64("amount", res.Transaction.Amount),
	)
	httputil.WriteJSON(w, http.StatusOK, AcceptResponse{
		Message:     "Request accepted",
		Request:     res.Request,
		Transaction: res.Transaction,
		NewBalance:  res.NewBalance,
	})
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	actingID, ok := callerID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	rec, err := h.wallet.RejectRequest(ctx, requestID, actingID)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RejectResponse{Message: "Request rejected", Request: rec})
}
