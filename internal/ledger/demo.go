package ledger

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// DemoSenders are the sender addresses pre-registered in demo mode.
var DemoSenders = []string{"demo@secretapp.ai", "alerts@bank.com"}

// NewDemoService creates the demo-mode ledger: pre-registered senders and a
// synthetic transaction history covering the last 30 days.
func NewDemoService(now time.Time) *MemoryService {
	return NewMemoryService(
		WithSenders(DemoSenders...),
		WithTransactions(GenerateDemoTransactions(now)...),
	)
}

// GenerateDemoTransactions builds a deterministic synthetic history: two
// transactions per day for the 30 days ending at now, mostly debits with
// the occasional salary credit. The fixed seed keeps demo sessions and
// tests reproducible.
func GenerateDemoTransactions(now time.Time) []domain.Transaction {
	rng := rand.New(rand.NewSource(42))

	var out []domain.Transaction
	for i := 0; i < 30; i++ {
		day := now.AddDate(0, 0, -i)
		dateStr := day.Format(domain.DateLayout)

		for j := 0; j < 2; j++ {
			isCredit := rng.Float64() > 0.8

			tx := domain.Transaction{
				ID:              fmt.Sprintf("demo_%d_%d", i, j),
				TransactionDate: dateStr,
				Status:          domain.StatusSynced,
				CreatedAt:       now.UTC().Format(time.RFC3339),
			}
			if isCredit {
				tx.Type = domain.TypeCredit
				tx.Amount = decimal.NewFromInt(int64(rng.Intn(50000) + 10000))
				tx.Description = "Salary Disbursement"
				tx.Category = "Salary"
			} else {
				tx.Type = domain.TypeDebit
				tx.Amount = decimal.NewFromInt(int64(rng.Intn(2000) + 50))
				tx.Description = fmt.Sprintf("Merchant Ref: %06x", rng.Intn(0xffffff))
				tx.Category = demoSpendCategory(rng)
			}
			out = append(out, tx)
		}
	}
	return out
}

// demoSpendCategory picks any category except Salary, which is reserved for
// credits.
func demoSpendCategory(rng *rand.Rand) string {
	for {
		c := DefaultCategories[rng.Intn(len(DefaultCategories))]
		if c != "Salary" {
			return c
		}
	}
}
