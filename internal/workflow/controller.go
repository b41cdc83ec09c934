package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/ledger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/scan"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/session"
)

// Controller is the session-and-sync workflow layer. It owns the active
// user, the demo/production data-mode flag, the reviewed transaction list,
// and the cached sender and category reference data. Every data operation
// passes the current mode to the ledger switch explicitly, so the backing
// services stay pure with respect to mode.
//
// All state is guarded by a single mutex: unlike a browser runtime there is
// no single-threaded event loop here, and the HTTP layer calls in from
// concurrent goroutines.
type Controller struct {
	session  *session.Manager
	ledger   *ledger.Switch
	demoScan scan.Scanner
	prodScan scan.Scanner
	log      zerolog.Logger

	mu           sync.Mutex
	user         *domain.User
	transactions []domain.Transaction
	senders      []domain.Sender
	categories   []string
	loading      bool
	syncing      bool
}

// NewController creates the workflow controller over its collaborators.
// demoScan and prodScan are the extraction pipelines for the two data
// modes; the ledger switch routes persistence the same way.
func NewController(sess *session.Manager, ledgerSwitch *ledger.Switch, demoScan, prodScan scan.Scanner, log zerolog.Logger) *Controller {
	return &Controller{
		session:  sess,
		ledger:   ledgerSwitch,
		demoScan: demoScan,
		prodScan: prodScan,
		log:      log,
	}
}

// Restore rebuilds the session from the persisted credential slot. A
// missing or unreadable credential leaves the controller anonymous; this
// never fails. When a user is restored, sender and category reference data
// is loaded for the session.
func (c *Controller) Restore(ctx context.Context) *domain.User {
	user := c.session.Restore()
	if user == nil {
		return nil
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	c.loadReference(ctx, user.IsDemo)
	return c.snapshotUser()
}

// Login exchanges credentials for a session. Bad credentials return
// domain.ErrAuth; on success the sender and category caches are loaded.
func (c *Controller) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := c.session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = user
	c.transactions = nil
	c.mu.Unlock()

	c.loadReference(ctx, user.IsDemo)
	return c.snapshotUser(), nil
}

// StartDemo begins a demo session without credentials.
func (c *Controller) StartDemo(ctx context.Context) *domain.User {
	user := domain.DemoUser()

	c.mu.Lock()
	c.user = user
	c.transactions = nil
	c.mu.Unlock()

	c.loadReference(ctx, true)
	return c.snapshotUser()
}

// Logout clears the persisted credential, the active user, and every cache
// tied to the session, including the category list.
func (c *Controller) Logout() error {
	err := c.session.Logout()

	c.mu.Lock()
	c.user = nil
	c.transactions = nil
	c.senders = nil
	c.categories = nil
	c.mu.Unlock()

	return err
}

// ToggleDemoMode flips the data mode on the active user and clears the
// displayed transaction list: stale production data must never survive
// into demo mode, and vice versa. Reference data is reloaded from the
// newly selected backend.
func (c *Controller) ToggleDemoMode(ctx context.Context) (*domain.User, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	c.user.IsDemo = !c.user.IsDemo
	isDemo := c.user.IsDemo
	c.transactions = nil
	c.mu.Unlock()

	c.loadReference(ctx, isDemo)
	return c.snapshotUser(), nil
}

// loadReference refreshes the sender and category caches from the backend
// selected by isDemo. Failures degrade to empty caches and a warning; the
// session itself stays up.
func (c *Controller) loadReference(ctx context.Context, isDemo bool) {
	senders, err := c.ledger.ListSenders(ctx, isDemo)
	if err != nil {
		c.log.Warn().Err(err).Msg("Could not load sender list")
		senders = nil
	}

	categories, err := c.ledger.ListCategories(ctx, isDemo)
	if err != nil {
		c.log.Warn().Err(err).Msg("Could not load category list")
		categories = nil
	}

	c.mu.Lock()
	c.senders = senders
	c.categories = categories
	c.mu.Unlock()
}

// Scan runs the extraction pipeline for the inclusive date window against
// the currently registered senders, replacing the reviewed transaction
// list with the pending candidates. With no senders registered it is a
// no-op yielding an empty list. Lookup and extraction failures surface as
// an empty result, never as an error; the loading flag is reset on every
// path.
func (c *Controller) Scan(ctx context.Context, dateFrom, dateTo string) []domain.Transaction {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	isDemo := c.user.IsDemo
	senderEmails := make([]string, 0, len(c.senders))
	for _, s := range c.senders {
		senderEmails = append(senderEmails, s.Email)
	}
	c.transactions = nil
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	scanner := c.prodScan
	if isDemo {
		scanner = c.demoScan
	}

	txs, err := scanner.Scan(ctx, dateFrom, dateTo, senderEmails)
	if err != nil {
		c.log.Warn().Err(err).
			Str("date_from", dateFrom).
			Str("date_to", dateTo).
			Msg("Scan failed, surfacing empty result")
		return nil
	}

	c.mu.Lock()
	c.transactions = txs
	c.mu.Unlock()

	return copyTransactions(txs)
}

// SyncAll persists every transaction in the reviewed list whose status is
// not yet synced, transitioning each to synced or failed per the backend's
// per-item result. Already synced transactions are never resent. The
// returned map carries one entry per attempted id.
func (c *Controller) SyncAll(ctx context.Context) map[string]bool {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	isDemo := c.user.IsDemo
	var batch []domain.Transaction
	for _, tx := range c.transactions {
		if tx.Status != domain.StatusSynced {
			batch = append(batch, tx)
		}
	}
	c.syncing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
	}()

	if len(batch) == 0 {
		return map[string]bool{}
	}

	return c.persistBatch(ctx, batch, isDemo)
}

// SyncOne persists a single transaction from the reviewed list. A
// transaction already synced is left untouched with a true result.
func (c *Controller) SyncOne(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return false, domain.ErrNoSession
	}
	isDemo := c.user.IsDemo
	var target *domain.Transaction
	for i := range c.transactions {
		if c.transactions[i].ID == id {
			target = &c.transactions[i]
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return false, domain.ErrNotFound
	}
	if target.Status == domain.StatusSynced {
		c.mu.Unlock()
		return true, nil
	}
	tx := *target
	c.syncing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.mu.Unlock()
	}()

	results := c.persistBatch(ctx, []domain.Transaction{tx}, isDemo)
	return results[id], nil
}

// persistBatch sends the batch to the ledger and reconciles local statuses
// from the per-id outcome. A transport-level failure marks every attempted
// id failed rather than leaving the batch in limbo.
func (c *Controller) persistBatch(ctx context.Context, batch []domain.Transaction, isDemo bool) map[string]bool {
	results, err := c.ledger.InsertTransactions(ctx, batch, isDemo)
	if err != nil {
		c.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk persist failed")
		results = make(map[string]bool, len(batch))
	}

	// Every attempted id gets a definitive outcome even when the backend
	// omitted it from its response.
	outcome := make(map[string]bool, len(batch))
	for _, tx := range batch {
		ok, reported := results[tx.ID]
		outcome[tx.ID] = reported && ok
	}

	c.mu.Lock()
	for i := range c.transactions {
		ok, attempted := outcome[c.transactions[i].ID]
		if !attempted {
			continue
		}
		if ok {
			c.transactions[i].Status = domain.StatusSynced
		} else {
			c.transactions[i].Status = domain.StatusFailed
		}
	}
	c.mu.Unlock()

	return outcome
}

// Update applies the partial field edit to the local transaction
// immediately, then requests the same update against the backend. The
// optimistic local state is authoritative: a failed remote update does not
// roll it back, it marks the transaction dirty so an unsynced edit is
// visible to the caller.
func (c *Controller) Update(ctx context.Context, id string, update domain.TransactionUpdate) (domain.Transaction, error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return domain.Transaction{}, domain.ErrNoSession
	}
	isDemo := c.user.IsDemo
	var updated *domain.Transaction
	for i := range c.transactions {
		if c.transactions[i].ID == id {
			update.Apply(&c.transactions[i])
			updated = &c.transactions[i]
			break
		}
	}
	if updated == nil {
		c.mu.Unlock()
		return domain.Transaction{}, domain.ErrNotFound
	}
	local := *updated
	c.mu.Unlock()

	if err := c.ledger.UpdateTransaction(ctx, id, update, isDemo); err != nil {
		c.log.Warn().Err(err).Str("transaction_id", id).Msg("Remote update failed, keeping local edit dirty")
		c.mu.Lock()
		for i := range c.transactions {
			if c.transactions[i].ID == id {
				c.transactions[i].Dirty = true
				local = c.transactions[i]
				break
			}
		}
		c.mu.Unlock()
	}

	return local, nil
}

// AddSender registers a sender address then refreshes the cached list;
// add-then-list is sequential, never concurrent.
func (c *Controller) AddSender(ctx context.Context, email string) error {
	isDemo, err := c.currentMode()
	if err != nil {
		return err
	}

	if err := c.ledger.AddSender(ctx, email, isDemo); err != nil {
		return fmt.Errorf("AddSender: %w", err)
	}
	c.refreshSenders(ctx, isDemo)
	return nil
}

// RemoveSender deletes a sender by its opaque handle then refreshes the
// cached list.
func (c *Controller) RemoveSender(ctx context.Context, rowKey string) error {
	isDemo, err := c.currentMode()
	if err != nil {
		return err
	}

	if err := c.ledger.DeleteSender(ctx, rowKey, isDemo); err != nil {
		return fmt.Errorf("RemoveSender: %w", err)
	}
	c.refreshSenders(ctx, isDemo)
	return nil
}

func (c *Controller) refreshSenders(ctx context.Context, isDemo bool) {
	senders, err := c.ledger.ListSenders(ctx, isDemo)
	if err != nil {
		c.log.Warn().Err(err).Msg("Could not refresh sender list")
		return
	}
	c.mu.Lock()
	c.senders = senders
	c.mu.Unlock()
}

// Report is a pure read over the ledger: transactions in the inclusive
// date window plus per-type totals. Totals always cover the full date
// window; the category and type filters narrow only the returned
// transaction list. When the backend supplies no totals they are computed
// here, so the demo and production paths stay consistent. A ledger failure
// degrades to an empty report.
func (c *Controller) Report(ctx context.Context, filter domain.ReportFilter) *domain.Report {
	isDemo, err := c.currentMode()
	if err != nil {
		return &domain.Report{Totals: domain.ReportTotals{}}
	}

	txs, totals, err := c.ledger.ListTransactions(ctx, filter.DateFrom, filter.DateTo, isDemo)
	if err != nil {
		c.log.Warn().Err(err).Msg("Report query failed, surfacing empty report")
		return &domain.Report{Totals: domain.ReportTotals{}}
	}

	if totals == nil {
		computed := domain.ComputeTotals(txs)
		totals = &computed
	}

	var filtered []domain.Transaction
	for _, tx := range txs {
		if filter.Matches(tx) {
			filtered = append(filtered, tx)
		}
	}

	return &domain.Report{Transactions: filtered, Totals: *totals}
}

func (c *Controller) currentMode() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return false, domain.ErrNoSession
	}
	return c.user.IsDemo, nil
}

// User returns a copy of the active user, or nil when anonymous.
func (c *Controller) User() *domain.User {
	return c.snapshotUser()
}

func (c *Controller) snapshotUser() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Transactions returns a copy of the reviewed transaction list.
func (c *Controller) Transactions() []domain.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTransactions(c.transactions)
}

// Senders returns a copy of the cached sender list.
func (c *Controller) Senders() []domain.Sender {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Sender, len(c.senders))
	copy(out, c.senders)
	return out
}

// Categories returns a copy of the cached category list.
func (c *Controller) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Loading reports whether a scan is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Syncing reports whether a sync is in flight. The flag only disables the
// trigger surface; it does not block new sync requests at the data layer.
func (c *Controller) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

func copyTransactions(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	return out
}
