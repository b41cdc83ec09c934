package extract

import (
	"context"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// Extractor turns one raw bank notification email into structured
// transaction candidates. Every candidate comes back with status=pending
// regardless of what the upstream model reported. This interface enables
// mocking and testing of the extraction step.
type Extractor interface {
	ExtractTransactions(ctx context.Context, emailText string) ([]domain.Transaction, error)
}

// CategorySource supplies the category taxonomy quoted in the extraction
// prompt, so the model only assigns categories the ledger knows about.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]string, error)
}
