package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// memStore is an in-memory domain.Store. WithinTx serializes callers and
// restores the previous state when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[uuid.UUID]domain.User
	ledger   []domain.Transaction
	sessions map[uuid.UUID]domain.Session
	nextID   int64

	failAppend bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]domain.User),
		sessions: make(map[uuid.UUID]domain.Session),
	}
}

func (s *memStore) Users() domain.UserRepository               { return memUsers{s} }
func (s *memStore) Transactions() domain.TransactionRepository { return memLedger{s} }
func (s *memStore) Sessions() domain.SessionRepository         { return memSessions{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users := make(map[uuid.UUID]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	ledger := append([]domain.Transaction(nil), s.ledger...)
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users, s.ledger, s.nextID = users, ledger, nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) addUser(cash int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = domain.User{ID: id, Username: id.String()[:8], Cash: decimal.NewFromInt(cash)}
	return id
}

func (s *memStore) cash(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].Cash
}

func (s *memStore) ledgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memUsers) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

// UpdateCash rejects what a NUMERIC(16,2) column would round or overflow
func (r memUsers) UpdateCash(ctx context.Context, id uuid.UUID, cash decimal.Decimal) error {
	if !cash.Equal(cash.Round(2)) {
		return fmt.Errorf("cash %s has sub-cent digits", cash)
	}
	if cash.GreaterThanOrEqual(domain.MaxCash) {
		return fmt.Errorf("cash %s overflows the column", cash)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Cash = cash
	r.s.users[id] = u
	return nil
}

type memLedger struct{ s *memStore }

func (r memLedger) Append(ctx context.Context, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAppend {
		return context.DeadlineExceeded
	}
	r.s.nextID++
	tx.ID = r.s.nextID
	tx.CreatedAt = time.Now()
	r.s.ledger = append(r.s.ledger, *tx)
	return nil
}

func (r memLedger) SumShares(ctx context.Context, userID uuid.UUID, symbol string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.ledger {
		if t.UserID == userID && t.Symbol == symbol {
			n += t.Shares
		}
	}
	return n, nil
}

func (r memLedger) Holdings(ctx context.Context, userID uuid.UUID) ([]domain.Holding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bySymbol := make(map[string]*domain.Holding)
	for _, t := range r.s.ledger {
		if t.UserID != userID {
			continue
		}
		h, ok := bySymbol[t.Symbol]
		if !ok {
			h = &domain.Holding{Symbol: t.Symbol}
			bySymbol[t.Symbol] = h
		}
		h.Shares += t.Shares
		h.Name, h.Price = t.Name, t.Price
	}

	holdings := []domain.Holding{}
	for _, h := range bySymbol {
		if h.Shares != 0 {
			holdings = append(holdings, *h)
		}
	}
	sort.Slice(holdings, func(i, j int) bool {
		return strings.Compare(holdings[i].Symbol, holdings[j].Symbol) < 0
	})
	return holdings, nil
}

func (r memLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range r.s.ledger {
		if t.UserID == userID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

type memSessions struct{ s *memStore }

func (r memSessions) Create(ctx context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r memSessions) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (r memSessions) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, session := range r.s.sessions {
		if session.Expired(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// fakeQuotes serves fixed prices; unknown symbols are rejected
type fakeQuotes struct {
	mu     sync.Mutex
	prices map[string]string
	err    error
	calls  int
}

func newFakeQuotes(prices map[string]string) *fakeQuotes {
	return &fakeQuotes{prices: prices}
}

func (q *fakeQuotes) set(symbol, price string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prices[symbol] = price
}

func (q *fakeQuotes) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	price, ok := q.prices[symbol]
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	return &domain.Quote{
		Symbol: symbol,
		Name:   symbol + " Inc.",
		Price:  decimal.RequireFromString(price),
	}, nil
}
