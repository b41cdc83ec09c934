package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

func staticToken(token string) TokenSource {
	return func() string { return token }
}

func TestRemoteService_ListTransactions(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions": []domain.Transaction{
				{ID: "1", TransactionDate: "2024-05-01", Amount: decimal.NewFromInt(100), Type: domain.TypeDebit},
			},
			"totals": map[string]string{
				"totalIncome":      "0",
				"totalExpense":     "100",
				"totalInvestments": "0",
			},
		})
	}))
	defer srv.Close()

	svc := NewRemoteService(srv.URL, staticToken("tok-123"))
	txs, totals, err := svc.ListTransactions(context.Background(), "2024-05-01", "2024-05-31")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotQuery != "dateFrom=2024-05-01&dateTo=2024-05-31" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(txs) != 1 || txs[0].ID != "1" {
		t.Errorf("unexpected transactions: %+v", txs)
	}
	if totals == nil || !totals.TotalExpense.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected totals: %+v", totals)
	}
}

func TestRemoteService_ListTransactionsNoTotals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions": []domain.Transaction{},
		})
	}))
	defer srv.Close()

	svc := NewRemoteService(srv.URL, staticToken(""))
	_, totals, err := svc.ListTransactions(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if totals != nil {
		t.Error("expected nil totals when the backend supplies none")
	}
}

func TestRemoteService_InsertTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions/bulk" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": map[string]bool{"a": true, "b": false},
		})
	}))
	defer srv.Close()

	svc := NewRemoteService(srv.URL, staticToken("tok"))
	result, err := svc.InsertTransactions(context.Background(), []domain.Transaction{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("InsertTransactions failed: %v", err)
	}
	if !result["a"] || result["b"] {
		t.Errorf("unexpected per-item results: %v", result)
	}
}

func TestRemoteService_InsertTransactionsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	svc := NewRemoteService(srv.URL, staticToken(""))
	result, err := svc.InsertTransactions(context.Background(), []domain.Transaction{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("InsertTransactions failed: %v", err)
	}
	if !result["a"] || !result["b"] {
		t.Errorf("missing per-item results must default to accepted: %v", result)
	}
}

func TestRemoteService_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewRemoteService(srv.URL, staticToken(""))
	if _, err := svc.ListSenders(context.Background()); err == nil {
		t.Error("expected error on 500 response")
	}
	if _, _, err := svc.ListTransactions(context.Background(), "", ""); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestSwitch_RoutesByMode(t *testing.T) {
	demo := NewMemoryService(WithSenders("demo@secretapp.ai"))
	prod := NewMemoryService(WithSenders("credit_cards@icicibank.com"))
	sw := NewSwitch(demo, prod)
	ctx := context.Background()

	demoSenders, err := sw.ListSenders(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(demoSenders) != 1 || demoSenders[0].Email != "demo@secretapp.ai" {
		t.Errorf("demo route returned %+v", demoSenders)
	}

	prodSenders, err := sw.ListSenders(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(prodSenders) != 1 || prodSenders[0].Email != "credit_cards@icicibank.com" {
		t.Errorf("production route returned %+v", prodSenders)
	}

	// A write in one mode must not leak into the other.
	if _, err := sw.InsertTransactions(ctx, []domain.Transaction{tx("d1", "2024-05-01", "10", "demo only", domain.TypeDebit)}, true); err != nil {
		t.Fatal(err)
	}
	if prod.Count() != 0 {
		t.Error("demo insert leaked into the production store")
	}
	if demo.Count() != 1 {
		t.Error("demo insert did not reach the demo store")
	}
}
