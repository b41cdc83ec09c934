package ledger

import (
	"context"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// Service is the backend ledger contract: senders, categories, and
// transactions. Implementations are pure with respect to data mode; the
// Switch routes calls between them based on an explicit flag.
type Service interface {
	// ListSenders returns the registered sender addresses.
	ListSenders(ctx context.Context) ([]domain.Sender, error)

	// AddSender registers a sender address.
	AddSender(ctx context.Context, email string) error

	// DeleteSender removes a sender by its opaque handle.
	DeleteSender(ctx context.Context, rowKey string) error

	// ListCategories returns the valid category names.
	ListCategories(ctx context.Context) ([]string, error)

	// ListTransactions returns the transactions whose date falls inside the
	// inclusive [from, to] window, plus aggregate totals for that window.
	// A nil totals pointer means the backend supplied none and the caller
	// must compute them.
	ListTransactions(ctx context.Context, from, to string) ([]domain.Transaction, *domain.ReportTotals, error)

	// InsertTransactions bulk-persists transactions, returning a per-id
	// success flag. Partial failure across the batch is expected; there is
	// no rollback.
	InsertTransactions(ctx context.Context, txs []domain.Transaction) (map[string]bool, error)

	// UpdateTransaction applies a partial field update to one transaction.
	UpdateTransaction(ctx context.Context, id string, update domain.TransactionUpdate) error
}

// Switch routes every data operation to the demo or production backend
// based on an explicit mode flag. The flag is a parameter, never ambient
// state, so the underlying services stay pure with respect to mode.
type Switch struct {
	demo       Service
	production Service
}

// NewSwitch creates a mode switch over the two backends.
func NewSwitch(demo, production Service) *Switch {
	return &Switch{demo: demo, production: production}
}

func (s *Switch) pick(isDemo bool) Service {
	if isDemo {
		return s.demo
	}
	return s.production
}

// ListSenders routes to the backend selected by isDemo.
func (s *Switch) ListSenders(ctx context.Context, isDemo bool) ([]domain.Sender, error) {
	return s.pick(isDemo).ListSenders(ctx)
}

// AddSender routes to the backend selected by isDemo.
func (s *Switch) AddSender(ctx context.Context, email string, isDemo bool) error {
	return s.pick(isDemo).AddSender(ctx, email)
}

// DeleteSender routes to the backend selected by isDemo.
func (s *Switch) DeleteSender(ctx context.Context, rowKey string, isDemo bool) error {
	return s.pick(isDemo).DeleteSender(ctx, rowKey)
}

// ListCategories routes to the backend selected by isDemo.
func (s *Switch) ListCategories(ctx context.Context, isDemo bool) ([]string, error) {
	return s.pick(isDemo).ListCategories(ctx)
}

// ListTransactions routes to the backend selected by isDemo.
func (s *Switch) ListTransactions(ctx context.Context, from, to string, isDemo bool) ([]domain.Transaction, *domain.ReportTotals, error) {
	return s.pick(isDemo).ListTransactions(ctx, from, to)
}

// InsertTransactions routes to the backend selected by isDemo.
func (s *Switch) InsertTransactions(ctx context.Context, txs []domain.Transaction, isDemo bool) (map[string]bool, error) {
	return s.pick(isDemo).InsertTransactions(ctx, txs)
}

// UpdateTransaction routes to the backend selected by isDemo.
func (s *Switch) UpdateTransaction(ctx context.Context, id string, update domain.TransactionUpdate, isDemo bool) error {
	return s.pick(isDemo).UpdateTransaction(ctx, id, update)
}
