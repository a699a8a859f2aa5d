package wallet

import (
	"context"
	"errors"

	"github.com/GiorgiUbiria/ewallet/internal/models"
)

type RequestInput struct {
	RequesterID     uint64
	PayerIdentifier string
	Amount          int64
	Note            string
}

// CreateRequest records a pending ask from the requester to the payer.
func (e *Engine) CreateRequest(ctx context.Context, in RequestInput) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	note, err := normalizeDescription(in.Note)
	if err != nil {
		return nil, err
	}
	payer, err := e.resolve(ctx, in.PayerIdentifier)
	if err != nil {
		return nil, err
	}
	if payer.ID == in.RequesterID {
		return nil, ErrSelfRequest
	}

	req := &models.Transaction{
		SenderID:    in.RequesterID,
		ReceiverID:  payer.ID,
		Kind:        models.KindRequest,
		Amount:      in.Amount,
		Status:      models.StatusPending,
		Method:      models.MethodRequest,
		Description: note,
	}

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := e.accounts.GetByID(ctx, in.RequesterID); err != nil {
			return err
		}
		if err := e.ledger.Create(ctx, req); err != nil {
			return err
		}
		return e.events.Record(ctx, EventRequestCreated, e.requestEvent(req))
	})
	if err != nil {
		return nil, storageError(err)
	}

	req.Receiver = payer
	return req, nil
}

// AcceptRequest pays a pending request from the acting account. The payment
// and the status change commit together; if the payment fails the request
// stays pending.
func (e *Engine) AcceptRequest(ctx context.Context, requestID, actingID uint64) (*TransferResult, error) {
	var result *TransferResult
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		req, err := e.lockPendingRequest(ctx, requestID, actingID)
		if err != nil {
			return err
		}

		payment := &models.Transaction{
			SenderID:    actingID,
			ReceiverID:  req.SenderID,
			Kind:        models.KindPayment,
			Amount:      req.Amount,
			Status:      models.StatusSuccess,
			Method:      models.MethodRequest,
			Description: req.Description,
			RequestID:   &req.ID,
		}
		balance, err := e.transferLocked(ctx, payment)
		if err != nil {
			return err
		}

		if err := e.resolveRequest(ctx, req, models.StatusAccepted, EventRequestAccepted); err != nil {
			return err
		}
		result = &TransferResult{Transaction: payment, NewBalance: balance, Request: req}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return result, nil
}

// RejectRequest closes a pending request without moving funds.
func (e *Engine) RejectRequest(ctx context.Context, requestID, actingID uint64) (*models.Transaction, error) {
	var req *models.Transaction
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := e.lockPendingRequest(ctx, requestID, actingID)
		if err != nil {
			return err
		}
		req = r
		return e.resolveRequest(ctx, req, models.StatusRejected, EventRequestRejected)
	})
	if err != nil {
		return nil, storageError(err)
	}
	return req, nil
}

// lockPendingRequest checks authorization before state so that only the
// addressed payer learns whether a request is still open.
func (e *Engine) lockPendingRequest(ctx context.Context, requestID, actingID uint64) (*models.Transaction, error) {
	req, err := e.ledger.LockByID(ctx, requestID)
	if errors.Is(err, ErrTransactionNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.Kind != models.KindRequest {
		return nil, ErrRequestNotFound
	}
	if req.ReceiverID != actingID {
		return nil, ErrNotRequestPayer
	}
	if req.Status.Terminal() {
		return nil, ErrInvalidState
	}
	return req, nil
}

func (e *Engine) resolveRequest(ctx context.Context, req *models.Transaction, to models.TxStatus, event string) error {
	at := e.now()
	if err := e.ledger.UpdateStatus(ctx, req.ID, models.StatusPending, to, at); err != nil {
		return err
	}
	req.Status = to
	req.ResolvedAt = &at
	return e.events.Record(ctx, event, e.requestEvent(req))
}

func (e *Engine) requestEvent(req *models.Transaction) RequestEvent {
	return RequestEvent{
		RequestID:   req.ID,
		RequesterID: req.SenderID,
		PayerID:     req.ReceiverID,
		Amount:      req.Amount,
		Status:      string(req.Status),
		OccurredAt:  e.now(),
	}
}

// PendingRequestsFor lists open requests the account has been asked to pay.
func (e *Engine) PendingRequestsFor(ctx context.Context, accountID uint64) ([]models.Transaction, error) {
	recs, err := e.ledger.ListRequests(ctx, RequestFilter{PayerID: accountID, Status: models.StatusPending})
	if err != nil {
		return nil, storageError(err)
	}
	return recs, nil
}

// OutgoingRequests lists every request the account has created.
func (e *Engine) OutgoingRequests(ctx context.Context, accountID uint64) ([]models.Transaction, error) {
	recs, err := e.ledger.ListRequests(ctx, RequestFilter{RequesterID: accountID})
	if err != nil {
		return nil, storageError(err)
	}
	return recs, nil
}
