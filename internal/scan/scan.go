package scan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/extract"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/mail"
)

// Scanner produces pending transaction candidates for a date range scoped
// to a set of sender addresses.
type Scanner interface {
	Scan(ctx context.Context, dateFrom, dateTo string, senders []string) ([]domain.Transaction, error)
}

// Pipeline is the concrete Scanner: it retrieves email bodies from the
// mail service and runs each through the extractor. A single email that
// fails extraction is logged and skipped; the rest of the batch proceeds.
type Pipeline struct {
	mail      mail.Service
	extractor extract.Extractor
	log       zerolog.Logger
}

// NewPipeline creates a scan pipeline over the given collaborators.
func NewPipeline(mailSvc mail.Service, extractor extract.Extractor, log zerolog.Logger) *Pipeline {
	return &Pipeline{mail: mailSvc, extractor: extractor, log: log}
}

// Scan implements Scanner. An empty sender set returns no transactions and
// performs no retrieval or extraction call.
func (p *Pipeline) Scan(ctx context.Context, dateFrom, dateTo string, senders []string) ([]domain.Transaction, error) {
	if len(senders) == 0 {
		return nil, nil
	}

	messages, err := p.mail.FetchMessages(ctx, senders, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("Scan: retrieving mail: %w", err)
	}

	p.log.Info().
		Int("messages", len(messages)).
		Str("date_from", dateFrom).
		Str("date_to", dateTo).
		Msg("Extracting transactions from retrieved mail")

	var out []domain.Transaction
	for _, msg := range messages {
		txs, err := p.extractor.ExtractTransactions(ctx, msg.Body)
		if err != nil {
			p.log.Warn().
				Err(err).
				Str("message_id", msg.ID).
				Str("sender", msg.Sender).
				Msg("Extraction failed for message, skipping")
			continue
		}

		// Pin the candidate status here rather than trusting each
		// extractor implementation to have done it.
		for i := range txs {
			txs[i].Status = domain.StatusPending
		}
		out = append(out, txs...)
	}

	return out, nil
}

var _ Scanner = (*Pipeline)(nil)
