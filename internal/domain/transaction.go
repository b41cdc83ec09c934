package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all transaction dates.
const DateLayout = "2006-01-02"

// TransactionType classifies the direction of a transaction.
type TransactionType string

const (
	TypeCredit     TransactionType = "Credit"
	TypeDebit      TransactionType = "Debit"
	TypeInvestment TransactionType = "Investment"
)

// TransactionStatus tracks where a transaction sits in the
// extract-review-sync lifecycle.
type TransactionStatus string

const (
	// StatusPending marks a freshly extracted transaction awaiting review.
	StatusPending TransactionStatus = "pending"
	// StatusSynced marks a transaction accepted by the backend ledger.
	StatusSynced TransactionStatus = "synced"
	// StatusFailed marks a transaction the backend rejected.
	StatusFailed TransactionStatus = "failed"
)

// Transaction represents one normalized transaction extracted from a bank
// notification email. This is a domain struct, not a wire row; the ledger
// clients map it onto their own payloads.
type Transaction struct {
	ID              string            `json:"id"`
	TransactionDate string            `json:"transactionDate"` // YYYY-MM-DD
	Amount          decimal.Decimal   `json:"amount"`          // non-negative; Type carries the direction
	Type            TransactionType   `json:"type"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	CardLast4       string            `json:"cardLast4,omitempty"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       string            `json:"createdAt,omitempty"`

	// Dirty is set when a local edit could not be confirmed by the backend.
	// The local copy stays authoritative for the rest of the session.
	Dirty bool `json:"dirty,omitempty"`
}

// SameEntry reports whether two transactions describe the same business
// event. The source system gives us no natural key, so the persistence
// layer approximates identity with (date, amount, description).
func (t Transaction) SameEntry(other Transaction) bool {
	return t.TransactionDate == other.TransactionDate &&
		t.Amount.Equal(other.Amount) &&
		t.Description == other.Description
}

// InDateRange reports whether the transaction date falls inside the
// inclusive [from, to] window. Empty bounds are open-ended. ISO dates
// compare correctly as strings.
func (t Transaction) InDateRange(from, to string) bool {
	if from != "" && t.TransactionDate < from {
		return false
	}
	if to != "" && t.TransactionDate > to {
		return false
	}
	return true
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: invalid date %q: %w", s, err)
	}
	return d, nil
}

// TransactionUpdate carries a partial field set for an edit. Nil fields are
// left untouched. Status is deliberately absent: edits never change status.
type TransactionUpdate struct {
	TransactionDate *string          `json:"transactionDate,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Type            *TransactionType `json:"type,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Category        *string          `json:"category,omitempty"`
	CardLast4       *string          `json:"cardLast4,omitempty"`
}

// Apply copies the non-nil fields of the update onto the transaction.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.TransactionDate != nil {
		t.TransactionDate = *u.TransactionDate
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.CardLast4 != nil {
		t.CardLast4 = *u.CardLast4
	}
}
