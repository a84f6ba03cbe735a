package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/google/btree"
)

// txEntry is one transaction in the per-user B-tree index.
type txEntry struct {
	at  time.Time
	seq uint64
	tx  domain.Transaction
}

// txLess orders entries newest first: timestamp descending, then insertion
// sequence descending. Min() is the most recent transaction, so a bounded
// newest-first listing is a prefix scan.
func txLess(a, b txEntry) bool {
	if !a.at.Equal(b.at) {
		return a.at.After(b.at)
	}
	return a.seq > b.seq
}

// MemoryStore is a thread-safe in-memory Store. A single lock covers
// accounts, positions, and the transaction log so ApplyTrade's three writes
// are atomic with respect to every reader.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	positions    map[string]map[string]*domain.Position // user_id → symbol → position
	transactions map[string]*btree.BTreeG[txEntry]      // user_id → newest-first index
	seq          uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]*domain.Account),
		positions:    make(map[string]map[string]*domain.Position),
		transactions: make(map[string]*btree.BTreeG[txEntry]),
	}
}

// CreateAccount adds an account. Returns domain.ErrUserAlreadyExists if the
// user id is taken.
func (s *MemoryStore) CreateAccount(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.UserID]; exists {
		return domain.ErrUserAlreadyExists
	}
	cp := *a
	s.accounts[a.UserID] = &cp
	return nil
}

// GetAccount retrieves an account by user id.
func (s *MemoryStore) GetAccount(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *a
	return &cp, nil
}

// GetPositions returns copies of all positions for a user, sorted by symbol.
func (s *MemoryStore) GetPositions(_ context.Context, userID string) ([]domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byName := s.positions[userID]
	result := make([]domain.Position, 0, len(byName))
	for _, p := range byName {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// GetPosition returns a copy of the user's position in one symbol.
func (s *MemoryStore) GetPosition(_ context.Context, userID, symbol string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[userID][symbol]
	if !ok {
		return nil, domain.ErrPositionNotFound
	}
	cp := *p
	return &cp, nil
}

// ApplyTrade commits the balance, position, and transaction writes under a
// single critical section.
func (s *MemoryStore) ApplyTrade(_ context.Context, args ApplyTradeArgs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[args.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.Balance = args.NewBalance

	if args.Position != nil {
		byName, ok := s.positions[args.UserID]
		if !ok {
			byName = make(map[string]*domain.Position)
			s.positions[args.UserID] = byName
		}
		cp := *args.Position
		byName[cp.Symbol] = &cp
	} else if args.RemoveSymbol != "" {
		delete(s.positions[args.UserID], args.RemoveSymbol)
	}

	idx, ok := s.transactions[args.UserID]
	if !ok {
		const degree = 32
		idx = btree.NewG[txEntry](degree, txLess)
		s.transactions[args.UserID] = idx
	}
	s.seq++
	idx.ReplaceOrInsert(txEntry{
		at:  args.Transaction.Timestamp,
		seq: s.seq,
		tx:  args.Transaction,
	})

	return nil
}

// ListTransactions returns a user's transactions newest first, optionally
// filtered by symbol, stopping after limit records. limit <= 0 means no
// bound.
func (s *MemoryStore) ListTransactions(_ context.Context, userID, symbol string, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.transactions[userID]
	if !ok {
		return []domain.Transaction{}, nil
	}

	result := make([]domain.Transaction, 0)
	idx.Ascend(func(e txEntry) bool {
		if symbol != "" && e.tx.Symbol != symbol {
			return true
		}
		result = append(result, e.tx)
		return limit <= 0 || len(result) < limit
	})
	return result, nil
}
