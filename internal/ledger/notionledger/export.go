package notionledger

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// batchSize defines the number of transactions to process in a single batch.
const batchSize = 100

// ExportStats summarizes one export run.
type ExportStats struct {
	Created int
	Skipped int
	Failed  int
}

// Exporter pushes synced transactions into a Notion database. Re-running an
// export is idempotent: pages already carrying a transaction's Entry ID are
// skipped rather than duplicated.
type Exporter struct {
	notion     NotionService
	databaseID string
	log        zerolog.Logger
}

// NewExporter creates an exporter over the given Notion client and target
// database.
func NewExporter(notion NotionService, databaseID string, log zerolog.Logger) *Exporter {
	return &Exporter{notion: notion, databaseID: databaseID, log: log}
}

// Export writes the synced transactions of the batch to Notion. Pending and
// failed transactions are never exported; only records the ledger accepted
// belong in the external database. With dryRun set, the run logs what it
// would do without touching Notion.
func (e *Exporter) Export(ctx context.Context, txs []domain.Transaction, dryRun bool) (ExportStats, error) {
	var stats ExportStats

	e.log.Info().
		Int("transaction_count", len(txs)).
		Bool("dry_run", dryRun).
		Msg("Starting transaction export to Notion")

	existing, err := e.queryExistingEntryIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("Export: %w", err)
	}

	e.log.Info().Int("existing_pages", len(existing)).Msg("Retrieved existing Notion pages")

	for i := 0; i < len(txs); i += batchSize {
		end := i + batchSize
		if end > len(txs) {
			end = len(txs)
		}

		for _, tx := range txs[i:end] {
			if tx.Status != domain.StatusSynced {
				stats.Skipped++
				continue
			}
			if existing[tx.ID] {
				stats.Skipped++
				continue
			}

			if dryRun {
				e.log.Info().
					Str("transaction_id", tx.ID).
					Msg("[DRY RUN] Would create Notion page")
				stats.Created++
				continue
			}

			props := TransactionToNotionProperties(tx)
			if _, err := e.notion.CreatePage(ctx, e.databaseID, props); err != nil {
				e.log.Warn().
					Err(err).
					Str("transaction_id", tx.ID).
					Msg("Failed to create Notion page")
				stats.Failed++
				continue
			}
			stats.Created++
		}
	}

	e.log.Info().
		Int("created", stats.Created).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Transaction export complete")

	return stats, nil
}

// queryExistingEntryIDs pages through the full database and collects the
// Entry ID of every page created by a previous export.
func (e *Exporter) queryExistingEntryIDs(ctx context.Context) (map[string]bool, error) {
	existing := make(map[string]bool)

	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := e.notion.QueryDatabase(ctx, e.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("querying Notion pages: %w", err)
		}

		for _, page := range resp.Results {
			if id := extractEntryID(page); id != "" {
				existing[id] = true
			}
		}

		if !resp.HasMore {
			return existing, nil
		}
		cursor = resp.NextCursor
	}
}
