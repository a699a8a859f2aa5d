// Package wallettest provides an in-memory store that satisfies the wallet
// and auth repository interfaces. Units of work are serialized by a single
// mutex and rolled back from a snapshot on error. Calls made outside a unit
// of work wait for the running one to finish, so they only observe
// committed state.
package wallettest

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GiorgiUbiria/ewallet/internal/auth"
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
)

type Event struct {
	Type    string
	Payload json.RawMessage
}

type state struct {
	accounts map[uint64]models.Account
	ledger   []models.Transaction
	events   []Event
	nextAcct uint64
	nextTx   uint64
}

func (s state) clone() state {
	c := state{
		accounts: make(map[uint64]models.Account, len(s.accounts)),
		ledger:   append([]models.Transaction(nil), s.ledger...),
		events:   append([]Event(nil), s.events...),
		nextAcct: s.nextAcct,
		nextTx:   s.nextTx,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
	fail map[string]error
}

type inTxKey struct{}

func New() *Store {
	return &Store{
		st:   state{accounts: map[uint64]models.Account{}},
		fail: map[string]error{},
	}
}

// FailOn makes the next call to op return err. Ops are named
// "<repo>.<method>", for example "ledger.Create".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) injected(op string) error {
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

// AddAccount inserts an account directly and returns its id.
func (s *Store) AddAccount(name, email string, balance int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextAcct++
	id := s.st.nextAcct
	now := time.Now().UTC()
	s.st.accounts[id] = models.Account{
		ID: id, Name: name, Email: strings.ToLower(email), Balance: balance,
		CreatedAt: now, UpdatedAt: now,
	}
	return id
}

func (s *Store) Balance(id uint64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.accounts[id].Balance
}

func (s *Store) TotalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, a := range s.st.accounts {
		sum += a.Balance
	}
	return sum
}

func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction(nil), s.st.ledger...)
}

func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.st.events...)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// guard serializes a call made outside WithinTx against running units of
// work. Calls made inside one are already serialized.
func (s *Store) guard(ctx context.Context) func() {
	if ctx.Value(inTxKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// Accounts

func (s *Store) GetByID(ctx context.Context, id uint64) (*models.Account, error) {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("accounts.GetByID"); err != nil {
		return nil, err
	}
	a, ok := s.st.accounts[id]
	if !ok {
		return nil, wallet.ErrAccountNotFound
	}
	return &a, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, wallet.ErrAccountNotFound
}

func (s *Store) LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*models.Account, error) {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("accounts.LockForUpdate"); err != nil {
		return nil, err
	}
	out := make(map[uint64]*models.Account, len(ids))
	for _, id := range ids {
		if a, ok := s.st.accounts[id]; ok {
			out[id] = &a
		}
	}
	return out, nil
}

func (s *Store) AdjustBalance(ctx context.Context, id uint64, delta int64) (int64, error) {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("accounts.AdjustBalance"); err != nil {
		return 0, err
	}
	a, ok := s.st.accounts[id]
	if !ok {
		return 0, wallet.ErrAccountNotFound
	}
	if a.Balance+delta < 0 {
		return 0, wallet.ErrInsufficientBalance
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	s.st.accounts[id] = a
	return a.Balance, nil
}

func (s *Store) Create(ctx context.Context, a *models.Account) error {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return auth.ErrUserExists
		}
	}
	s.st.nextAcct++
	a.ID = s.st.nextAcct
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.st.accounts[a.ID] = *a
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[id]
	if !ok {
		return wallet.ErrAccountNotFound
	}
	a.Password = hash
	s.st.accounts[id] = a
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uint64, name, email, phone string) error {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[id]
	if !ok {
		return wallet.ErrAccountNotFound
	}
	for other, existing := range s.st.accounts {
		if other != id && strings.EqualFold(existing.Email, email) {
			return auth.ErrUserExists
		}
	}
	a.Name, a.Email, a.Phone = name, strings.ToLower(email), phone
	a.UpdatedAt = time.Now().UTC()
	s.st.accounts[id] = a
	return nil
}

func (s *Store) BackfillBalance(ctx context.Context, amount int64) (int64, error) {
	defer s.guard(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.st.accounts {
		if a.Balance == 0 {
			a.Balance = amount
			s.st.accounts[id] = a
			n++
		}
	}
	return n, nil
}

// Ledger is the ledger view of the store. The account and ledger
// repositories both have GetByID, so the ledger methods live on a wrapper.
func (s *Store) Ledger() *Ledger {
	return &Ledger{s: s}
}

type Ledger struct {
	s *Store
}

func (l *Ledger) Create(ctx context.Context, tx *models.Transaction) error {
	defer l.s.guard(ctx)()
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ledger.Create"); err != nil {
		return err
	}
	if tx.IdempotencyKey != nil {
		for _, t := range s.st.ledger {
			if t.SenderID == tx.SenderID && t.IdempotencyKey != nil && *t.IdempotencyKey == *tx.IdempotencyKey {
				return wallet.ErrDuplicateIdempotencyKey
			}
		}
	}
	s.st.nextTx++
	tx.ID = s.st.nextTx
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	stored := *tx
	stored.Sender, stored.Receiver = nil, nil
	s.st.ledger = append(s.st.ledger, stored)
	return nil
}

func (l *Ledger) find(id uint64) (*models.Transaction, error) {
	for _, t := range l.s.st.ledger {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, wallet.ErrTransactionNotFound
}

func (l *Ledger) GetByID(ctx context.Context, id uint64) (*models.Transaction, error) {
	defer l.s.guard(ctx)()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.find(id)
}

func (l *Ledger) LockByID(ctx context.Context, id uint64) (*models.Transaction, error) {
	return l.GetByID(ctx, id)
}

func (l *Ledger) FindByIdempotencyKey(ctx context.Context, senderID uint64, key string) (*models.Transaction, error) {
	defer l.s.guard(ctx)()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	for _, t := range l.s.st.ledger {
		if t.SenderID == senderID && t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			return &t, nil
		}
	}
	return nil, nil
}

func (l *Ledger) UpdateStatus(ctx context.Context, id uint64, from, to models.TxStatus, at time.Time) error {
	defer l.s.guard(ctx)()
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ledger.UpdateStatus"); err != nil {
		return err
	}
	for i := range s.st.ledger {
		t := &s.st.ledger[i]
		if t.ID != id {
			continue
		}
		if t.Status != from {
			return wallet.ErrInvalidState
		}
		t.Status = to
		t.ResolvedAt = &at
		return nil
	}
	return wallet.ErrTransactionNotFound
}

func (l *Ledger) ListForAccount(ctx context.Context, accountID uint64, limit int, beforeID uint64) ([]models.Transaction, error) {
	defer l.s.guard(ctx)()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	var out []models.Transaction
	for _, t := range l.s.st.ledger {
		if beforeID > 0 && t.ID >= beforeID {
			continue
		}
		if t.SenderID == accountID || t.ReceiverID == accountID {
			out = append(out, t)
		}
	}
	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *Ledger) Summarize(ctx context.Context, accountID uint64) (wallet.LedgerSummary, error) {
	defer l.s.guard(ctx)()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.injected("ledger.Summarize"); err != nil {
		return wallet.LedgerSummary{}, err
	}
	var sum wallet.LedgerSummary
	for _, t := range l.s.st.ledger {
		if t.SenderID != accountID && t.ReceiverID != accountID {
			continue
		}
		sum.Total++
		switch t.Status {
		case models.StatusSuccess:
			if t.Kind != models.KindPayment {
				continue
			}
			if t.SenderID == accountID {
				sum.SentAmount += t.Amount
			}
			if t.ReceiverID == accountID {
				sum.ReceivedAmount += t.Amount
			}
		case models.StatusRejected:
			sum.Rejected++
		case models.StatusPending:
			sum.Pending++
		}
	}
	return sum, nil
}

func (l *Ledger) ListRequests(ctx context.Context, f wallet.RequestFilter) ([]models.Transaction, error) {
	defer l.s.guard(ctx)()
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	var out []models.Transaction
	for _, t := range l.s.st.ledger {
		if t.Kind != models.KindRequest {
			continue
		}
		if f.RequesterID != 0 && t.SenderID != f.RequesterID {
			continue
		}
		if f.PayerID != 0 && t.ReceiverID != f.PayerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	newestFirst(out)
	return out, nil
}

func newestFirst(ts []models.Transaction) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID > ts[j].ID })
}

// Record implements wallet.EventRecorder.
func (s *Store) Record(ctx context.Context, eventType string, payload any) error {
	defer s.guard(ctx)()
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("events.Record"); err != nil {
		return err
	}
	s.st.events = append(s.st.events, Event{Type: eventType, Payload: body})
	return nil
}

// NewEngine wires an engine over s.
func (s *Store) NewEngine() *wallet.Engine {
	return wallet.NewEngine(s, s, s.Ledger(), s)
}
