package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/ledger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/session"
)

// stubAuth is a mock implementation of session.AuthService for testing.
type stubAuth struct {
	token string
}

func (a stubAuth) Authorize(ctx context.Context, username, password string) (string, error) {
	if username == "admin" && password == "password123" {
		return a.token, nil
	}
	return "", domain.ErrAuth
}

// stubScanner records calls and returns a canned result.
type stubScanner struct {
	calls int
	txs   []domain.Transaction
	err   error
}

func (s *stubScanner) Scan(ctx context.Context, dateFrom, dateTo string, senders []string) ([]domain.Transaction, error) {
	s.calls++
	if len(senders) == 0 {
		return nil, nil
	}
	return s.txs, s.err
}

// failingLedger wraps a ledger.Service and fails selected operations.
type failingLedger struct {
	ledger.Service
	failUpdate bool
	failInsert bool
}

func (f *failingLedger) UpdateTransaction(ctx context.Context, id string, update domain.TransactionUpdate) error {
	if f.failUpdate {
		return errors.New("ledger unavailable")
	}
	return f.Service.UpdateTransaction(ctx, id, update)
}

func (f *failingLedger) InsertTransactions(ctx context.Context, txs []domain.Transaction) (map[string]bool, error) {
	if f.failInsert {
		return nil, errors.New("ledger unavailable")
	}
	return f.Service.InsertTransactions(ctx, txs)
}

func pendingTx(id, date string, amount int64, desc string) domain.Transaction {
	return domain.Transaction{
		ID:              id,
		TransactionDate: date,
		Amount:          decimal.NewFromInt(amount),
		Type:            domain.TypeDebit,
		Description:     desc,
		Category:        "Shopping",
		Status:          domain.StatusPending,
	}
}

type fixture struct {
	controller *Controller
	demo       *ledger.MemoryService
	production *ledger.MemoryService
	scanner    *stubScanner
}

func newFixture(t *testing.T, opts ...ledger.MemoryOption) *fixture {
	t.Helper()

	demo := ledger.NewMemoryService(ledger.WithSenders("demo@secretapp.ai"))
	production := ledger.NewMemoryService(opts...)
	scanner := &stubScanner{}

	mgr := session.NewManager(session.NewMemoryStore(), stubAuth{token: testToken(t)}, logger.Nop())
	c := NewController(mgr, ledger.NewSwitch(demo, production), scanner, scanner, logger.Nop())
	return &fixture{controller: c, demo: demo, production: production, scanner: scanner}
}

// testToken builds a structurally valid unsigned credential the decode
// layer accepts.
func testToken(t *testing.T) string {
	t.Helper()
	// header {"alg":"none","typ":"JWT"} and payload with jti/sub/name claims,
	// base64url without padding.
	return "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJqdGkiOiJ1LTEiLCJzdWIiOiJhZG1pbiIsIkZpcnN0TmFtZSI6IlZpZ25lc2giLCJMYXN0TmFtZSI6IlBhbmRpYW4ifQ." +
		"c2lnbmF0dXJl"
}

func login(t *testing.T, f *fixture) *domain.User {
	t.Helper()
	user, err := f.controller.Login(context.Background(), "admin", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return user
}

func TestLogin_SuccessAndFailure(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))

	user := login(t, f)
	if user.IsDemo {
		t.Error("credential login must produce a non-demo user")
	}
	if user.Username != "admin" {
		t.Errorf("username = %q, want admin", user.Username)
	}
	if got := f.controller.Senders(); len(got) != 1 || got[0].Email != "alerts@bank.com" {
		t.Errorf("sender cache not loaded on login: %+v", got)
	}
	if got := f.controller.Categories(); len(got) == 0 {
		t.Error("category cache not loaded on login")
	}

	if _, err := f.controller.Login(context.Background(), "admin", "wrong"); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("wrong password: err = %v, want ErrAuth", err)
	}
}

func TestLogout_ClearsSessionCaches(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	if err := f.controller.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if f.controller.User() != nil {
		t.Error("user survives logout")
	}
	if len(f.controller.Categories()) != 0 {
		t.Error("category cache survives logout")
	}
	if len(f.controller.Senders()) != 0 {
		t.Error("sender cache survives logout")
	}
	if f.controller.Restore(context.Background()) != nil {
		t.Error("restore after logout must be anonymous")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))

	if f.controller.Restore(context.Background()) != nil {
		t.Fatal("fresh controller must restore to anonymous")
	}

	login(t, f)
	restored := f.controller.Restore(context.Background())
	if restored == nil || restored.Username != "admin" {
		t.Fatalf("restore after login = %+v, want admin user", restored)
	}
	if len(f.controller.Senders()) != 1 {
		t.Error("sender cache not reloaded on restore")
	}
}

func TestStartDemo_UsesDemoBackend(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))

	user := f.controller.StartDemo(context.Background())
	if !user.IsDemo {
		t.Fatal("demo start must produce a demo user")
	}
	senders := f.controller.Senders()
	if len(senders) != 1 || senders[0].Email != "demo@secretapp.ai" {
		t.Errorf("demo senders = %+v, want the demo backend's list", senders)
	}
}

func TestToggleDemoMode_ClearsTransactionsAndReloadsReference(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	f.scanner.txs = []domain.Transaction{pendingTx("t1", "2024-05-20", 100, "coffee")}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")
	if len(f.controller.Transactions()) != 1 {
		t.Fatal("scan did not populate the transaction list")
	}

	user, err := f.controller.ToggleDemoMode(context.Background())
	if err != nil {
		t.Fatalf("ToggleDemoMode failed: %v", err)
	}
	if !user.IsDemo {
		t.Error("toggle did not flip the mode")
	}
	if len(f.controller.Transactions()) != 0 {
		t.Error("transaction list must be empty immediately after toggle")
	}
	senders := f.controller.Senders()
	if len(senders) != 1 || senders[0].Email != "demo@secretapp.ai" {
		t.Errorf("sender cache not reloaded from demo backend: %+v", senders)
	}

	if _, err := f.controller.ToggleDemoMode(context.Background()); err != nil {
		t.Fatalf("toggle back failed: %v", err)
	}
	if u := f.controller.User(); u.IsDemo {
		t.Error("second toggle did not return to production mode")
	}
}

func TestToggleDemoMode_Anonymous(t *testing.T) {
	f := newFixture(t)
	if _, err := f.controller.ToggleDemoMode(context.Background()); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestScan_NoSendersIsEmptyWithLoadingReset(t *testing.T) {
	f := newFixture(t) // production backend has no senders
	login(t, f)

	f.scanner.txs = []domain.Transaction{pendingTx("t1", "2024-05-01", 100, "coffee")}
	got := f.controller.Scan(context.Background(), "2024-05-01", "2024-05-01")
	if len(got) != 0 {
		t.Errorf("scan with no senders = %d transactions, want 0", len(got))
	}
	if f.controller.Loading() {
		t.Error("loading flag not reset after scan")
	}
}

func TestScan_DemoModeWithoutSenders(t *testing.T) {
	empty := ledger.NewMemoryService()
	mgr := session.NewManager(session.NewMemoryStore(), stubAuth{}, logger.Nop())
	scanner := &stubScanner{txs: []domain.Transaction{pendingTx("t1", "2024-05-01", 100, "coffee")}}
	c := NewController(mgr, ledger.NewSwitch(empty, empty), scanner, scanner, logger.Nop())

	c.StartDemo(context.Background())
	got := c.Scan(context.Background(), "2024-05-01", "2024-05-01")
	if len(got) != 0 {
		t.Errorf("demo scan with no senders = %d transactions, want 0", len(got))
	}
	if c.Loading() {
		t.Error("loading flag not reset")
	}
}

func TestScan_ErrorSurfacesEmptyAndResetsLoading(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	f.scanner.txs = []domain.Transaction{pendingTx("t1", "2024-05-20", 100, "coffee")}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")
	if len(f.controller.Transactions()) != 1 {
		t.Fatal("first scan did not populate the list")
	}

	f.scanner.err = errors.New("extraction backend down")
	got := f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")
	if got != nil {
		t.Errorf("failed scan = %+v, want empty result, not an error", got)
	}
	if len(f.controller.Transactions()) != 0 {
		t.Error("failed scan must leave the list cleared, not stale")
	}
	if f.controller.Loading() {
		t.Error("loading flag not reset after failed scan")
	}
}

func TestSyncAll_PartialFailureAndNoResend(t *testing.T) {
	existing := pendingTx("persisted", "2024-05-20", 100, "coffee")
	existing.Status = domain.StatusSynced
	f := newFixture(t,
		ledger.WithSenders("alerts@bank.com"),
		ledger.WithTransactions(existing),
	)
	login(t, f)

	// One fresh record, one duplicate of the persisted record, one already
	// synced locally that must not be resent. The stub scanner passes
	// statuses through verbatim.
	f.scanner.txs = []domain.Transaction{
		pendingTx("fresh", "2024-05-21", 250, "groceries"),
		pendingTx("dup", "2024-05-20", 100, "coffee"),
		{ID: "done", TransactionDate: "2024-05-01", Amount: decimal.NewFromInt(1), Type: domain.TypeDebit, Description: "old", Status: domain.StatusSynced},
	}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")
	before := f.production.Count()

	results := f.controller.SyncAll(context.Background())
	if _, resent := results["done"]; resent {
		t.Error("already synced transaction was resent")
	}
	if len(results) != 2 {
		t.Fatalf("result map has %d entries, want 2 (one per attempted id)", len(results))
	}
	if !results["fresh"] || !results["dup"] {
		t.Errorf("results = %v, want both attempted ids to succeed", results)
	}
	// The duplicate reports success without inserting a second record.
	if got := f.production.Count(); got != before+1 {
		t.Errorf("persisted count grew by %d, want exactly 1 new record", got-before)
	}
	for _, tx := range f.controller.Transactions() {
		if tx.Status != domain.StatusSynced {
			t.Errorf("transaction %s status = %q, want every item definitive after sync", tx.ID, tx.Status)
		}
	}
	if f.controller.Syncing() {
		t.Error("syncing flag not reset")
	}
}

func TestSyncAll_TransportFailureMarksEverythingFailed(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	broken := &failingLedger{Service: f.production, failInsert: true}
	f.controller.ledger = ledger.NewSwitch(f.demo, broken)

	f.scanner.txs = []domain.Transaction{
		pendingTx("a", "2024-05-20", 100, "coffee"),
		pendingTx("b", "2024-05-21", 200, "books"),
	}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")

	results := f.controller.SyncAll(context.Background())
	if len(results) != 2 || results["a"] || results["b"] {
		t.Errorf("results = %v, want both ids present and false", results)
	}
	for _, tx := range f.controller.Transactions() {
		if tx.Status != domain.StatusFailed {
			t.Errorf("transaction %s status = %q, want failed", tx.ID, tx.Status)
		}
	}
}

func TestSyncOne_UnknownID(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)
	if _, err := f.controller.SyncOne(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate_OptimisticLocalApply(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	f.scanner.txs = []domain.Transaction{pendingTx("t1", "2024-05-20", 100, "coffee")}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")

	category := "Food & Dining"
	updated, err := f.controller.Update(context.Background(), "t1", domain.TransactionUpdate{Category: &category})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Category != category {
		t.Errorf("category = %q, want %q", updated.Category, category)
	}
	if updated.Dirty {
		t.Error("confirmed update must not be dirty")
	}
	if got := f.controller.Transactions()[0]; got.Category != category || got.Status != domain.StatusPending {
		t.Errorf("local state = %+v, want new category and unchanged status", got)
	}
}

func TestUpdate_RemoteFailureKeepsLocalEditDirty(t *testing.T) {
	f := newFixture(t, ledger.WithSenders("alerts@bank.com"))
	login(t, f)

	broken := &failingLedger{Service: f.production, failUpdate: true}
	f.controller.ledger = ledger.NewSwitch(f.demo, broken)

	f.scanner.txs = []domain.Transaction{pendingTx("t1", "2024-05-20", 100, "coffee")}
	f.controller.Scan(context.Background(), "2024-05-01", "2024-05-31")

	category := "Travel"
	updated, err := f.controller.Update(context.Background(), "t1", domain.TransactionUpdate{Category: &category})
	if err != nil {
		t.Fatalf("Update must not surface the remote failure: %v", err)
	}
	if updated.Category != category {
		t.Error("local edit must survive the remote failure")
	}
	if !updated.Dirty {
		t.Error("unconfirmed edit must be marked dirty")
	}
}

func TestSenders_AddThenRemoveRefreshesCache(t *testing.T) {
	f := newFixture(t)
	login(t, f)

	if err := f.controller.AddSender(context.Background(), "alerts@bank.com"); err != nil {
		t.Fatalf("AddSender failed: %v", err)
	}
	senders := f.controller.Senders()
	if len(senders) != 1 || senders[0].Email != "alerts@bank.com" {
		t.Fatalf("sender cache after add = %+v", senders)
	}

	if err := f.controller.RemoveSender(context.Background(), senders[0].RowKey); err != nil {
		t.Fatalf("RemoveSender failed: %v", err)
	}
	if got := f.controller.Senders(); len(got) != 0 {
		t.Errorf("sender cache after remove = %+v, want empty", got)
	}
}

func TestReport_TotalsCoverWindowBeforeNarrowing(t *testing.T) {
	f := newFixture(t,
		ledger.WithTransactions(
			domain.Transaction{ID: "c1", TransactionDate: "2024-05-02", Amount: decimal.NewFromInt(1000), Type: domain.TypeCredit, Description: "salary", Category: "Salary", Status: domain.StatusSynced},
			domain.Transaction{ID: "d1", TransactionDate: "2024-05-03", Amount: decimal.NewFromInt(200), Type: domain.TypeDebit, Description: "dinner", Category: "Food & Dining", Status: domain.StatusSynced},
			domain.Transaction{ID: "i1", TransactionDate: "2024-05-04", Amount: decimal.NewFromInt(500), Type: domain.TypeInvestment, Description: "sip", Category: "Investment", Status: domain.StatusSynced},
			domain.Transaction{ID: "out", TransactionDate: "2024-06-01", Amount: decimal.NewFromInt(999), Type: domain.TypeDebit, Description: "next month", Category: "Shopping", Status: domain.StatusSynced},
		),
	)
	login(t, f)

	report := f.controller.Report(context.Background(), domain.ReportFilter{
		DateFrom:   "2024-05-01",
		DateTo:     "2024-05-31",
		Categories: []string{"Food & Dining"},
	})

	if len(report.Transactions) != 1 || report.Transactions[0].ID != "d1" {
		t.Errorf("narrowed list = %+v, want only the food transaction", report.Transactions)
	}
	// Totals span the full date window, untouched by the category filter.
	if !report.Totals.TotalIncome.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("income = %s, want 1000", report.Totals.TotalIncome)
	}
	if !report.Totals.TotalExpense.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expense = %s, want 200", report.Totals.TotalExpense)
	}
	if !report.Totals.TotalInvestments.Equal(decimal.NewFromInt(500)) {
		t.Errorf("investments = %s, want 500", report.Totals.TotalInvestments)
	}
}

func TestReport_DemoAndProductionTotalsAgree(t *testing.T) {
	seed := []domain.Transaction{
		{ID: "c1", TransactionDate: "2024-05-02", Amount: decimal.NewFromInt(1000), Type: domain.TypeCredit, Description: "salary", Status: domain.StatusSynced},
		{ID: "d1", TransactionDate: "2024-05-03", Amount: decimal.NewFromInt(200), Type: domain.TypeDebit, Description: "dinner", Status: domain.StatusSynced},
	}
	f := newFixture(t, ledger.WithTransactions(seed...))
	f.demo = ledger.NewMemoryService(ledger.WithTransactions(seed...))
	f.controller.ledger = ledger.NewSwitch(f.demo, f.production)
	login(t, f)

	filter := domain.ReportFilter{DateFrom: "2024-05-01", DateTo: "2024-05-31"}
	prod := f.controller.Report(context.Background(), filter)

	if _, err := f.controller.ToggleDemoMode(context.Background()); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	demo := f.controller.Report(context.Background(), filter)

	if !prod.Totals.TotalIncome.Equal(demo.Totals.TotalIncome) ||
		!prod.Totals.TotalExpense.Equal(demo.Totals.TotalExpense) {
		t.Errorf("totals diverge between modes: prod=%+v demo=%+v", prod.Totals, demo.Totals)
	}
}
