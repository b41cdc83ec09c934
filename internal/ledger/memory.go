package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// DefaultCategories is the category taxonomy seeded into in-memory stores.
var DefaultCategories = []string{
	"Shopping", "Food & Dining", "Salary", "Groceries",
	"Utilities", "Travel", "Entertainment", "Healthcare",
}

// MemoryService is an in-memory Service used for demo mode and for the
// production simulation. It is safe for concurrent use; unlike the
// original single-threaded client, Go callers may hit it from several
// goroutines.
type MemoryService struct {
	mu           sync.RWMutex
	senders      []domain.Sender
	categories   []string
	transactions []domain.Transaction

	// latency, when non-zero, delays every call to simulate a remote
	// backend. Tests leave it at zero.
	latency time.Duration
}

// MemoryOption configures a MemoryService.
type MemoryOption func(*MemoryService)

// WithSenders seeds the sender registry.
func WithSenders(emails ...string) MemoryOption {
	return func(s *MemoryService) {
		for _, email := range emails {
			s.senders = append(s.senders, domain.Sender{Email: email, RowKey: uuid.NewString()})
		}
	}
}

// WithTransactions seeds the transaction store.
func WithTransactions(txs ...domain.Transaction) MemoryOption {
	return func(s *MemoryService) {
		s.transactions = append(s.transactions, txs...)
	}
}

// WithLatency makes every call pause, approximating network round trips.
func WithLatency(d time.Duration) MemoryOption {
	return func(s *MemoryService) { s.latency = d }
}

// NewMemoryService creates an in-memory ledger seeded with the default
// category taxonomy, then applies the given options.
func NewMemoryService(opts ...MemoryOption) *MemoryService {
	s := &MemoryService{
		categories: append([]string(nil), DefaultCategories...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryService) pause(ctx context.Context) error {
	if s.latency == 0 {
		return nil
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListSenders implements Service.
func (s *MemoryService) ListSenders(ctx context.Context) ([]domain.Sender, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Sender(nil), s.senders...), nil
}

// AddSender implements Service. Registering an already-known address is a
// no-op rather than a duplicate.
func (s *MemoryService) AddSender(ctx context.Context, email string) error {
	if err := s.pause(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sender := range s.senders {
		if sender.Email == email {
			return nil
		}
	}
	s.senders = append(s.senders, domain.Sender{Email: email, RowKey: uuid.NewString()})
	return nil
}

// DeleteSender implements Service.
func (s *MemoryService) DeleteSender(ctx context.Context, rowKey string) error {
	if err := s.pause(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sender := range s.senders {
		if sender.RowKey == rowKey {
			s.senders = append(s.senders[:i], s.senders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("DeleteSender: %w", domain.ErrNotFound)
}

// ListCategories implements Service.
func (s *MemoryService) ListCategories(ctx context.Context) ([]string, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...), nil
}

// ListTransactions implements Service. Totals are computed over exactly the
// date window, before any presentation-layer narrowing.
func (s *MemoryService) ListTransactions(ctx context.Context, from, to string) ([]domain.Transaction, *domain.ReportTotals, error) {
	if err := s.pause(ctx); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.InDateRange(from, to) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate > out[j].TransactionDate })

	totals := domain.ComputeTotals(out)
	return out, &totals, nil
}

// InsertTransactions implements Service. A transaction matching an existing
// record on (date, amount, description) is not inserted again; the source
// system gives us no natural key, so this guard approximates idempotent
// upsert semantics. Duplicates still report success: the business event is
// persisted either way.
func (s *MemoryService) InsertTransactions(ctx context.Context, txs []domain.Transaction) (map[string]bool, error) {
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if s.findMatchLocked(tx) {
			result[tx.ID] = true
			continue
		}
		stored := tx
		stored.Status = domain.StatusSynced
		stored.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		s.transactions = append(s.transactions, stored)
		result[tx.ID] = true
	}
	return result, nil
}

func (s *MemoryService) findMatchLocked(tx domain.Transaction) bool {
	for _, existing := range s.transactions {
		if existing.SameEntry(tx) {
			return true
		}
	}
	return false
}

// UpdateTransaction implements Service.
func (s *MemoryService) UpdateTransaction(ctx context.Context, id string, update domain.TransactionUpdate) error {
	if err := s.pause(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			update.Apply(&s.transactions[i])
			return nil
		}
	}
	return fmt.Errorf("UpdateTransaction: %w", domain.ErrNotFound)
}

// Count returns the number of stored transactions. Test helper.
func (s *MemoryService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

var _ Service = (*MemoryService)(nil)
