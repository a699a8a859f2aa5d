package wallet_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
	"github.com/GiorgiUbiria/ewallet/internal/wallet/wallettest"
)

func setup(t *testing.T) (*wallettest.Store, *wallet.Engine, uint64, uint64) {
	t.Helper()
	store := wallettest.New()
	a := store.AddAccount("Alice", "alice@example.com", 10000)
	b := store.AddAccount("Bob", "bob@example.com", 10000)
	return store, store.NewEngine(), a, b
}

func TestTransfer_MovesFundsAndWritesOneRecord(t *testing.T) {
	store, engine, a, b := setup(t)

	res, err := engine.Transfer(context.Background(), wallet.TransferInput{
		PayerID:         a,
		PayeeIdentifier: "BOB@example.com",
		Amount:          2500,
		Description:     "dinner",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.NewBalance != 7500 {
		t.Errorf("expected new balance 7500, got %d", res.NewBalance)
	}
	if got := store.Balance(a); got != 7500 {
		t.Errorf("expected payer balance 7500, got %d", got)
	}
	if got := store.Balance(b); got != 12500 {
		t.Errorf("expected payee balance 12500, got %d", got)
	}

	txs := store.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected exactly 1 ledger record, got %d", len(txs))
	}
	rec := txs[0]
	if rec.SenderID != a || rec.ReceiverID != b || rec.Amount != 2500 || rec.Status != models.StatusSuccess || rec.Kind != models.KindPayment {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Method != models.MethodOnline {
		t.Errorf("expected default method online, got %q", rec.Method)
	}

	events := store.Events()
	if len(events) != 1 || events[0].Type != wallet.EventTransferCompleted {
		t.Errorf("expected one transfer.completed event, got %+v", events)
	}
}

func TestTransfer_ByAccountID(t *testing.T) {
	store, engine, a, b := setup(t)

	if _, err := engine.Transfer(context.Background(), wallet.TransferInput{PayerID: a, PayeeIdentifier: "2", Amount: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Balance(b); got != 10100 {
		t.Errorf("expected payee balance 10100, got %d", got)
	}
}

func TestTransfer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payee   string
		amount  int64
		wantErr error
		kind    wallet.Kind
	}{
		{"zero amount", "bob@example.com", 0, wallet.ErrInvalidAmount, wallet.KindValidation},
		{"negative amount", "bob@example.com", -5, wallet.ErrInvalidAmount, wallet.KindValidation},
		{"missing payee", "  ", 10, wallet.ErrPayeeRequired, wallet.KindValidation},
		{"unknown payee", "nobody@example.com", 10, wallet.ErrAccountNotFound, wallet.KindNotFound},
		{"unknown payee id", "999", 10, wallet.ErrAccountNotFound, wallet.KindNotFound},
		{"self by email", "Alice@Example.com", 10, wallet.ErrSelfTransfer, wallet.KindValidation},
		{"self by id", "1", 10, wallet.ErrSelfTransfer, wallet.KindValidation},
		{"insufficient", "bob@example.com", 10001, wallet.ErrInsufficientBalance, wallet.KindInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, engine, a, b := setup(t)
			before := store.TotalBalance()

			_, err := engine.Transfer(context.Background(), wallet.TransferInput{PayerID: a, PayeeIdentifier: tt.payee, Amount: tt.amount})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := wallet.KindOf(err); got != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, got)
			}
			if store.Balance(a) != 10000 || store.Balance(b) != 10000 || store.TotalBalance() != before {
				t.Error("failed transfer changed balances")
			}
			if len(store.Transactions()) != 0 {
				t.Error("failed transfer wrote a ledger record")
			}
		})
	}
}

func TestTransfer_SelfTransferAlwaysRejected(t *testing.T) {
	_, engine, a, _ := setup(t)
	for _, amount := range []int64{-1, 0, 1, 500, 10000, 1 << 40} {
		_, err := engine.Transfer(context.Background(), wallet.TransferInput{PayerID: a, PayeeIdentifier: "alice@example.com", Amount: amount})
		if wallet.KindOf(err) != wallet.KindValidation {
			t.Errorf("amount %d: expected validation error, got %v", amount, err)
		}
	}
}

func TestTransfer_StorageFailureRollsBack(t *testing.T) {
	store, engine, a, b := setup(t)
	store.FailOn("ledger.Create", errors.New("disk full"))

	_, err := engine.Transfer(context.Background(), wallet.TransferInput{PayerID: a, PayeeIdentifier: "bob@example.com", Amount: 1000})
	if !errors.Is(err, wallet.ErrStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if store.Balance(a) != 10000 || store.Balance(b) != 10000 {
		t.Errorf("balances changed after rollback: %d, %d", store.Balance(a), store.Balance(b))
	}
	if len(store.Transactions()) != 0 || len(store.Events()) != 0 {
		t.Error("rolled back transfer left records behind")
	}
}

func TestTransfer_IdempotencyKey(t *testing.T) {
	store, engine, a, b := setup(t)
	ctx := context.Background()
	in := wallet.TransferInput{PayerID: a, PayeeIdentifier: "bob@example.com", Amount: 400, IdempotencyKey: "k-1"}

	first, err := engine.Transfer(ctx, in)
	if err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	second, err := engine.Transfer(ctx, in)
	if err != nil {
		t.Fatalf("replayed transfer failed: %v", err)
	}

	if !second.Replayed {
		t.Error("expected second call to be a replay")
	}
	if second.Transaction.ID != first.Transaction.ID {
		t.Errorf("expected same record, got %d and %d", first.Transaction.ID, second.Transaction.ID)
	}
	if store.Balance(a) != 9600 || store.Balance(b) != 10400 {
		t.Errorf("replay moved funds again: %d, %d", store.Balance(a), store.Balance(b))
	}

	in.Amount = 500
	if _, err := engine.Transfer(ctx, in); !errors.Is(err, wallet.ErrIdempotencyConflict) {
		t.Errorf("expected idempotency conflict, got %v", err)
	}
}

func TestTransfer_ConcurrentDrainNeverGoesNegative(t *testing.T) {
	store := wallettest.New()
	payer := store.AddAccount("Payer", "payer@example.com", 10000)
	store.AddAccount("Payee", "payee@example.com", 0)
	engine := store.NewEngine()
	total := store.TotalBalance()

	const n = 50
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, declined int
		other        []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Transfer(context.Background(), wallet.TransferInput{PayerID: payer, PayeeIdentifier: "payee@example.com", Amount: 300})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, wallet.ErrInsufficientBalance):
				declined++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if ok != 33 || declined != 17 {
		t.Errorf("expected 33 successes and 17 declines, got %d and %d", ok, declined)
	}
	if got := store.Balance(payer); got != 100 {
		t.Errorf("expected final balance 100, got %d", got)
	}
	if store.TotalBalance() != total {
		t.Errorf("money was created or destroyed: %d -> %d", total, store.TotalBalance())
	}
}

func TestTransfer_ConservationUnderCrossTraffic(t *testing.T) {
	store := wallettest.New()
	emails := []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io"}
	ids := make([]uint64, len(emails))
	for i, e := range emails {
		ids[i] = store.AddAccount(e, e, 1000)
	}
	engine := store.NewEngine()
	total := store.TotalBalance()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := ids[i%len(ids)]
			to := emails[(i*7+1)%len(emails)]
			_, _ = engine.Transfer(context.Background(), wallet.TransferInput{PayerID: from, PayeeIdentifier: to, Amount: int64(i%250 + 1)})
		}(i)
	}
	wg.Wait()

	if store.TotalBalance() != total {
		t.Fatalf("expected total %d, got %d", total, store.TotalBalance())
	}
	for _, id := range ids {
		if store.Balance(id) < 0 {
			t.Errorf("account %d went negative: %d", id, store.Balance(id))
		}
	}
}

func TestHistory_VisibleToBothParties(t *testing.T) {
	_, engine, a, b := setup(t)
	ctx := context.Background()

	if _, err := engine.Transfer(ctx, wallet.TransferInput{PayerID: a, PayeeIdentifier: "bob@example.com", Amount: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Transfer(ctx, wallet.TransferInput{PayerID: b, PayeeIdentifier: "alice@example.com", Amount: 20}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []uint64{a, b} {
		page, err := engine.History(ctx, id, wallet.HistoryPage{})
		if err != nil {
			t.Fatal(err)
		}
		hist := page.Records
		if len(hist) != 2 {
			t.Fatalf("account %d: expected 2 records, got %d", id, len(hist))
		}
		if hist[0].Amount != 20 {
			t.Errorf("account %d: expected newest first, got %+v", id, hist[0])
		}
	}
}

func TestTransfer_InputLimits(t *testing.T) {
	tests := []struct {
		name    string
		in      wallet.TransferInput
		wantErr error
	}{
		{"description too long", wallet.TransferInput{Description: strings.Repeat("d", wallet.MaxDescriptionLength+1)}, wallet.ErrDescriptionTooLong},
		{"idempotency key too long", wallet.TransferInput{IdempotencyKey: strings.Repeat("k", wallet.MaxIdempotencyKeyLength+1)}, wallet.ErrInvalidIdempotency},
		{"unknown method", wallet.TransferInput{Method: "carrier-pigeon"}, wallet.ErrInvalidMethod},
		{"internal method", wallet.TransferInput{Method: models.MethodRequest}, wallet.ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, engine, a, _ := setup(t)
			in := tt.in
			in.PayerID, in.PayeeIdentifier, in.Amount = a, "bob@example.com", 10

			_, err := engine.Transfer(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if wallet.KindOf(err) != wallet.KindValidation {
				t.Errorf("expected validation kind, got %s", wallet.KindOf(err))
			}
			if len(store.Transactions()) != 0 {
				t.Error("rejected transfer wrote a ledger record")
			}
		})
	}
}

func TestTransfer_AcceptsLimitsAndKnownMethods(t *testing.T) {
	store, engine, a, _ := setup(t)
	ctx := context.Background()

	for _, method := range []string{models.MethodOnline, "OFFLINE", models.MethodQR} {
		res, err := engine.Transfer(ctx, wallet.TransferInput{
			PayerID:         a,
			PayeeIdentifier: "bob@example.com",
			Amount:          1,
			Method:          method,
			Description:     strings.Repeat("é", wallet.MaxDescriptionLength),
			IdempotencyKey:  strings.Repeat("k", wallet.MaxIdempotencyKeyLength-len(method)) + method,
		})
		if err != nil {
			t.Fatalf("method %s: %v", method, err)
		}
		if res.Transaction.Method != strings.ToLower(method) {
			t.Errorf("expected method %s, got %s", strings.ToLower(method), res.Transaction.Method)
		}
	}
	if len(store.Transactions()) != 3 {
		t.Errorf("expected 3 records, got %d", len(store.Transactions()))
	}
}

func TestHistory_PagesAndSummaryCoverWholeLedger(t *testing.T) {
	_, engine, a, b := setup(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		if _, err := engine.Transfer(ctx, wallet.TransferInput{PayerID: a, PayeeIdentifier: "bob@example.com", Amount: 10}); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := engine.Summary(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total != 250 || sum.SentAmount != 2500 || sum.ReceivedAmount != 0 {
		t.Errorf("unexpected payer summary %+v", sum)
	}
	if sum, _ := engine.Summary(ctx, b); sum.ReceivedAmount != 2500 {
		t.Errorf("expected payee to have received 2500, got %d", sum.ReceivedAmount)
	}

	first, err := engine.History(ctx, a, wallet.HistoryPage{Limit: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Records) != wallet.MaxHistoryLimit || first.NextBefore == 0 {
		t.Fatalf("expected a capped first page with a cursor, got %d records, cursor %d", len(first.Records), first.NextBefore)
	}

	second, err := engine.History(ctx, a, wallet.HistoryPage{Limit: 1000, Before: first.NextBefore})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Records) != 50 || second.NextBefore != 0 {
		t.Errorf("expected the last 50 records and no cursor, got %d records, cursor %d", len(second.Records), second.NextBefore)
	}
	if second.Records[0].ID >= first.Records[len(first.Records)-1].ID {
		t.Error("pages overlap")
	}

	def, err := engine.History(ctx, a, wallet.HistoryPage{})
	if err != nil {
		t.Fatal(err)
	}
	if len(def.Records) != wallet.DefaultHistoryLimit {
		t.Errorf("expected default page of %d, got %d", wallet.DefaultHistoryLimit, len(def.Records))
	}
}
