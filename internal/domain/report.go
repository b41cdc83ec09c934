package domain

import "github.com/shopspring/decimal"

// ReportFilter selects the transactions for a report. The date window is
// inclusive; empty bounds are open-ended. Categories and Types narrow the
// returned transaction list only, never the totals.
type ReportFilter struct {
	DateFrom   string            `json:"dateFrom,omitempty"`
	DateTo     string            `json:"dateTo,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Types      []TransactionType `json:"types,omitempty"`
}

// ReportTotals aggregates amounts by transaction type over the filtered
// date window.
type ReportTotals struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	TotalInvestments decimal.Decimal `json:"totalInvestments"`
}

// Report is the read model returned by the reporting view.
type Report struct {
	Transactions []Transaction `json:"transactions"`
	Totals       ReportTotals  `json:"totals"`
}

// ComputeTotals sums amounts grouped by type. The demo path computes totals
// with this function; the production path trusts backend totals when
// provided and falls back to it otherwise, so both paths share one
// definition of the aggregate.
func ComputeTotals(txs []Transaction) ReportTotals {
	var t ReportTotals
	for _, tx := range txs {
		switch tx.Type {
		case TypeCredit:
			t.TotalIncome = t.TotalIncome.Add(tx.Amount)
		case TypeDebit:
			t.TotalExpense = t.TotalExpense.Add(tx.Amount)
		case TypeInvestment:
			t.TotalInvestments = t.TotalInvestments.Add(tx.Amount)
		}
	}
	return t
}

// MatchesFilter reports whether the transaction passes the category and
// type narrowing of the filter. Date narrowing happens at the data layer.
func (f ReportFilter) Matches(tx Transaction) bool {
	if len(f.Categories) > 0 && !containsString(f.Categories, tx.Category) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, tx.Type) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsType(list []TransactionType, v TransactionType) bool {
	for _, t := range list {
		if t == v {
			return true
		}
	}
	return false
}
