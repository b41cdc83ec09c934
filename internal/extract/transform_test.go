package extract

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

func parseJSON(t *testing.T, raw string) []interface{} {
	t.Helper()
	var parsed []interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return parsed
}

func TestTransformCandidates(t *testing.T) {
	raw := `[
		{"transactionDate": "2024-05-20", "amount": 2500, "type": "Debit", "description": "AMAZON INDIA", "category": "Shopping", "cardLast4": "1234"},
		{"transactionDate": "2024-05-20", "amount": -45000, "type": "Credit", "description": "Salary", "category": "Salary", "cardLast4": null}
	]`

	txs, err := transformCandidates(parseJSON(t, raw))
	if err != nil {
		t.Fatalf("transformCandidates failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}

	for _, tx := range txs {
		if tx.Status != domain.StatusPending {
			t.Errorf("status = %q, every candidate must come back pending", tx.Status)
		}
		if tx.ID == "" {
			t.Error("expected a generated id")
		}
		if tx.Amount.IsNegative() {
			t.Errorf("amount %s is negative, must be normalized", tx.Amount)
		}
	}

	if txs[0].CardLast4 != "1234" {
		t.Errorf("cardLast4 = %q", txs[0].CardLast4)
	}
	if txs[1].CardLast4 != "" {
		t.Errorf("null cardLast4 must stay empty, got %q", txs[1].CardLast4)
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("amount = %s, want 45000", txs[1].Amount)
	}
}

func TestTransformCandidates_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an object", `["just a string"]`},
		{"missing date", `[{"amount": 10, "type": "Debit", "description": "x"}]`},
		{"bad date", `[{"transactionDate": "20-05-2024", "amount": 10, "type": "Debit", "description": "x"}]`},
		{"unknown type", `[{"transactionDate": "2024-05-20", "amount": 10, "type": "Refund", "description": "x"}]`},
		{"missing amount", `[{"transactionDate": "2024-05-20", "type": "Debit", "description": "x"}]`},
		{"empty description", `[{"transactionDate": "2024-05-20", "amount": 10, "type": "Debit", "description": "  "}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := transformCandidates(parseJSON(t, tt.raw)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTransformCandidates_QuotedAmountAndDefaultCategory(t *testing.T) {
	raw := `[{"transactionDate": "2024-05-20", "amount": "1200.50", "type": "Debit", "description": "STARBUCKS"}]`

	txs, err := transformCandidates(parseJSON(t, raw))
	if err != nil {
		t.Fatalf("transformCandidates failed: %v", err)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("amount = %s, want 1200.50", txs[0].Amount)
	}
	if txs[0].Category != "Other" {
		t.Errorf("category = %q, want Other fallback", txs[0].Category)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"clean passthrough", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around array", "Here you go: [1,2] hope that helps", `[1,2]`},
		{"leading whitespace", "\n\n  [1]  ", `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON = %q, want %q", got, tt.want)
			}
		})
	}
}
