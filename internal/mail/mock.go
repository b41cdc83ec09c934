package mail

import (
	"context"
	"time"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// MockInbox is an in-memory Service holding a fixed set of bank
// notification emails. It backs demo mode and tests.
type MockInbox struct {
	messages []Message
}

// NewMockInbox creates an inbox with the given messages.
func NewMockInbox(messages ...Message) *MockInbox {
	return &MockInbox{messages: messages}
}

// NewSeededInbox creates an inbox with a realistic set of bank alert
// fixtures dated relative to now.
func NewSeededInbox(now time.Time) *MockInbox {
	today := now.Format(domain.DateLayout)
	return NewMockInbox(
		Message{
			ID:      "msg_001",
			Sender:  "credit_cards@icicibank.com",
			Date:    "2024-05-20",
			Snippet: "Transaction alert: INR 2,500.00 spent on your ICICI Bank Credit Card",
			Body:    "Dear Customer, your ICICI Bank Credit Card XX1234 has been debited for INR 2,500.00 at AMAZON INDIA on 2024-05-20. Info: CMS*AMZN.",
		},
		Message{
			ID:      "msg_001_today",
			Sender:  "credit_cards@icicibank.com",
			Date:    today,
			Snippet: "Transaction alert: INR 1,200.00 spent on your ICICI Bank Credit Card",
			Body:    "Dear Customer, your ICICI Bank Credit Card XX1234 has been debited for INR 1,200.00 at STARBUCKS on " + today + ". Info: POS*SBUX.",
		},
		Message{
			ID:      "msg_002",
			Sender:  "alerts@icicibank.com",
			Date:    today,
			Snippet: "Credit Alert: Your ICICI Bank account has been credited",
			Body:    "Your ICICI Bank Account XX5678 has been credited with INR 45,000.00 on " + today + " by NEFT/Salary. Current balance is INR 1,20,450.00.",
		},
		Message{
			ID:      "msg_003",
			Sender:  "demo@secretapp.ai",
			Date:    today,
			Snippet: "You spent 500 at Store",
			Body:    "Transaction of 500.00 occurred at Store on " + today + ". Account debited.",
		},
	)
}

// FetchMessages implements Service: sender match plus inclusive date window.
func (m *MockInbox) FetchMessages(ctx context.Context, senders []string, dateFrom, dateTo string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(senders))
	for _, s := range senders {
		allowed[s] = true
	}

	var out []Message
	for _, msg := range m.messages {
		if !allowed[msg.Sender] {
			continue
		}
		if dateFrom != "" && msg.Date < dateFrom {
			continue
		}
		if dateTo != "" && msg.Date > dateTo {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

var _ Service = (*MockInbox)(nil)
