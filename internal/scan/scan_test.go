package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/mail"
)

// mockExtractor is a mock implementation of extract.Extractor for testing.
type mockExtractor struct {
	calls int
	fn    func(emailText string) ([]domain.Transaction, error)
}

func (m *mockExtractor) ExtractTransactions(ctx context.Context, emailText string) ([]domain.Transaction, error) {
	m.calls++
	if m.fn != nil {
		return m.fn(emailText)
	}
	return []domain.Transaction{{
		ID:              "extracted",
		TransactionDate: "2024-05-20",
		Amount:          decimal.NewFromInt(100),
		Type:            domain.TypeDebit,
		Description:     emailText,
		Status:          domain.StatusSynced, // deliberately wrong; the pipeline must pin pending
	}}, nil
}

// failingMail is a mail.Service that always errors.
type failingMail struct{}

func (failingMail) FetchMessages(ctx context.Context, senders []string, from, to string) ([]mail.Message, error) {
	return nil, errors.New("mail backend down")
}

func TestPipeline_EmptySendersIsNoOp(t *testing.T) {
	ext := &mockExtractor{}
	p := NewPipeline(failingMail{}, ext, logger.Nop())

	txs, err := p.Scan(context.Background(), "2024-05-01", "2024-05-01", nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
	// No senders configured means the mail service is never consulted,
	// which is why the failing mail backend above did not matter.
	if ext.calls != 0 {
		t.Errorf("extractor called %d times, want 0", ext.calls)
	}
}

func TestPipeline_TagsEverythingPending(t *testing.T) {
	inbox := mail.NewMockInbox(
		mail.Message{ID: "m1", Sender: "a@bank.com", Date: "2024-05-20", Body: "debited 100"},
		mail.Message{ID: "m2", Sender: "a@bank.com", Date: "2024-05-20", Body: "debited 200"},
	)
	ext := &mockExtractor{}
	p := NewPipeline(inbox, ext, logger.Nop())

	txs, err := p.Scan(context.Background(), "2024-05-20", "2024-05-20", []string{"a@bank.com"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	for _, tx := range txs {
		if tx.Status != domain.StatusPending {
			t.Errorf("status = %q, want pending regardless of extractor output", tx.Status)
		}
	}
}

func TestPipeline_SkipsFailedExtractions(t *testing.T) {
	inbox := mail.NewMockInbox(
		mail.Message{ID: "good", Sender: "a@bank.com", Date: "2024-05-20", Body: "good email"},
		mail.Message{ID: "bad", Sender: "a@bank.com", Date: "2024-05-20", Body: "unparseable"},
	)
	ext := &mockExtractor{fn: func(emailText string) ([]domain.Transaction, error) {
		if strings.Contains(emailText, "unparseable") {
			return nil, errors.New("model returned junk")
		}
		return []domain.Transaction{{ID: "t1", Description: emailText}}, nil
	}}
	p := NewPipeline(inbox, ext, logger.Nop())

	txs, err := p.Scan(context.Background(), "2024-05-20", "2024-05-20", []string{"a@bank.com"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(txs) != 1 || txs[0].Description != "good email" {
		t.Errorf("expected only the good extraction, got %+v", txs)
	}
}

func TestPipeline_MailFailurePropagates(t *testing.T) {
	p := NewPipeline(failingMail{}, &mockExtractor{}, logger.Nop())

	_, err := p.Scan(context.Background(), "2024-05-01", "2024-05-01", []string{"a@bank.com"})
	if err == nil {
		t.Error("expected mail retrieval error to propagate to the workflow layer")
	}
}
