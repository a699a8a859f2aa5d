package wallet_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"github.com/GiorgiUbiria/ewallet/internal/wallet/wallettest"
)

func TestAcceptRequest_PaysRequester(t *testing.T) {
	store, engine, a, b := setup(t)
	ctx := context.Background()

	req, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: 1000, Note: "rent"})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.Status != models.StatusPending || req.Kind != models.KindRequest || req.ReceiverID != b {
		t.Fatalf("unexpected request: %+v", req)
	}

	res, err := engine.AcceptRequest(ctx, req.ID, b)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if res.NewBalance != 9000 {
		t.Errorf("expected payer new balance 9000, got %d", res.NewBalance)
	}
	if store.Balance(a) != 11000 || store.Balance(b) != 9000 {
		t.Errorf("unexpected balances a=%d b=%d", store.Balance(a), store.Balance(b))
	}
	if res.Request.Status != models.StatusAccepted || res.Request.ResolvedAt == nil {
		t.Errorf("expected accepted request with resolution time, got %+v", res.Request)
	}
	if res.Transaction.RequestID == nil || *res.Transaction.RequestID != req.ID {
		t.Errorf("payment should reference request %d", req.ID)
	}

	var payments int
	for _, tx := range store.Transactions() {
		if tx.Kind == models.KindPayment {
			payments++
		}
		if tx.ID == req.ID && tx.Status != models.StatusAccepted {
			t.Errorf("stored request status %s", tx.Status)
		}
	}
	if payments != 1 {
		t.Errorf("expected one payment record, got %d", payments)
	}
}

func TestAcceptRequest_InsufficientBalanceKeepsPending(t *testing.T) {
	store := wallettest.New()
	a := store.AddAccount("Alice", "alice@example.com", 10000)
	b := store.AddAccount("Bob", "bob@example.com", 3000)
	engine := store.NewEngine()
	ctx := context.Background()

	req, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: 5000})
	if err != nil {
		t.Fatal(err)
	}

	_, err = engine.AcceptRequest(ctx, req.ID, b)
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	if store.Balance(a) != 10000 || store.Balance(b) != 3000 {
		t.Errorf("balances changed: a=%d b=%d", store.Balance(a), store.Balance(b))
	}
	pending, err := engine.PendingRequestsFor(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != req.ID {
		t.Errorf("expected request to remain pending, got %+v", pending)
	}
}

func TestResolvedRequestIsTerminal(t *testing.T) {
	for _, first := range []string{"accept", "reject"} {
		t.Run(first, func(t *testing.T) {
			store, engine, a, b := setup(t)
			ctx := context.Background()

			req, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: 100})
			if err != nil {
				t.Fatal(err)
			}
			if first == "accept" {
				_, err = engine.AcceptRequest(ctx, req.ID, b)
			} else {
				_, err = engine.RejectRequest(ctx, req.ID, b)
			}
			if err != nil {
				t.Fatal(err)
			}

			balA, balB := store.Balance(a), store.Balance(b)

			if _, err := engine.AcceptRequest(ctx, req.ID, b); !errors.Is(err, wallet.ErrInvalidState) || wallet.KindOf(err) != wallet.KindConflict {
				t.Errorf("second accept: expected conflict, got %v", err)
			}
			if _, err := engine.RejectRequest(ctx, req.ID, b); !errors.Is(err, wallet.ErrInvalidState) {
				t.Errorf("second reject: expected conflict, got %v", err)
			}
			if store.Balance(a) != balA || store.Balance(b) != balB {
				t.Error("resolved request moved funds")
			}
		})
	}
}

func TestRejectRequest_NoFundsMove(t *testing.T) {
	store, engine, a, b := setup(t)
	ctx := context.Background()

	req, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "2", Amount: 700})
	if err != nil {
		t.Fatal(err)
	}
	got, err := engine.RejectRequest(ctx, req.ID, b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusRejected {
		t.Errorf("expected rejected, got %s", got.Status)
	}
	if store.Balance(a) != 10000 || store.Balance(b) != 10000 {
		t.Error("reject moved funds")
	}

	types := map[string]int{}
	for _, e := range store.Events() {
		types[e.Type]++
	}
	if types[wallet.EventRequestCreated] != 1 || types[wallet.EventRequestRejected] != 1 {
		t.Errorf("unexpected events %v", types)
	}
}

func TestRequestErrors(t *testing.T) {
	store, engine, a, b := setup(t)
	c := store.AddAccount("Carol", "carol@example.com", 10000)
	ctx := context.Background()

	req, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: 100})
	if err != nil {
		t.Fatal(err)
	}
	payment, err := engine.Transfer(ctx, wallet.TransferInput{PayerID: a, PayeeIdentifier: "bob@example.com", Amount: 1})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		call    func() error
		wantErr error
		kind    wallet.Kind
	}{
		{"create with zero amount", func() error {
			_, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com"})
			return err
		}, wallet.ErrInvalidAmount, wallet.KindValidation},
		{"create against self", func() error {
			_, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "alice@example.com", Amount: 5})
			return err
		}, wallet.ErrSelfRequest, wallet.KindValidation},
		{"create with over-long note", func() error {
			_, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: 5, Note: strings.Repeat("n", wallet.MaxDescriptionLength+1)})
			return err
		}, wallet.ErrDescriptionTooLong, wallet.KindValidation},
		{"create against unknown payer", func() error {
			_, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "ghost@example.com", Amount: 5})
			return err
		}, wallet.ErrAccountNotFound, wallet.KindNotFound},
		{"accept by requester", func() error {
			_, err := engine.AcceptRequest(ctx, req.ID, a)
			return err
		}, wallet.ErrNotRequestPayer, wallet.KindAuthorization},
		{"reject by stranger", func() error {
			_, err := engine.RejectRequest(ctx, req.ID, c)
			return err
		}, wallet.ErrNotRequestPayer, wallet.KindAuthorization},
		{"accept unknown request", func() error {
			_, err := engine.AcceptRequest(ctx, 9999, b)
			return err
		}, wallet.ErrRequestNotFound, wallet.KindNotFound},
		{"accept a payment record", func() error {
			_, err := engine.AcceptRequest(ctx, payment.Transaction.ID, b)
			return err
		}, wallet.ErrRequestNotFound, wallet.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if wallet.KindOf(err) != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, wallet.KindOf(err))
			}
		})
	}

	if store.Balance(b) != 10001 {
		t.Errorf("failed request operations moved funds, bob has %d", store.Balance(b))
	}
}

func TestOutgoingRequests(t *testing.T) {
	_, engine, a, b := setup(t)
	ctx := context.Background()

	for _, amount := range []int64{10, 20} {
		if _, err := engine.CreateRequest(ctx, wallet.RequestInput{RequesterID: a, PayerIdentifier: "bob@example.com", Amount: amount}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := engine.OutgoingRequests(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing requests, got %d", len(out))
	}
	in, err := engine.OutgoingRequests(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 0 {
		t.Errorf("expected no outgoing requests for payer, got %d", len(in))
	}
}
