package extract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// transformCandidates converts the parsed model output into normalized
// domain transactions. Every candidate gets a fresh id and status=pending,
// whatever the model claimed.
func transformCandidates(parsed []interface{}) ([]domain.Transaction, error) {
	result := make([]domain.Transaction, 0, len(parsed))

	for i, item := range parsed {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformCandidates: element %d is %T, want object", i, item)
		}

		dateStr, err := getStringField(obj, "transactionDate", true)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if _, err := domain.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}

		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}

		typStr, err := getStringField(obj, "type", true)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		typ, err := parseType(typStr)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}

		category, err := getStringField(obj, "category", false)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if category == "" {
			category = "Other"
		}

		amount, err := getNumberField(obj, "amount")
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}

		cardLast4, err := getOptionalStringField(obj, "cardLast4")
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}

		tx := domain.Transaction{
			ID:              uuid.NewString(),
			TransactionDate: dateStr,
			Amount:          amount.Abs(),
			Type:            typ,
			Description:     desc,
			Category:        category,
			Status:          domain.StatusPending,
		}
		if cardLast4 != nil {
			tx.CardLast4 = *cardLast4
		}

		result = append(result, tx)
	}

	return result, nil
}

func parseType(s string) (domain.TransactionType, error) {
	switch strings.TrimSpace(s) {
	case string(domain.TypeCredit):
		return domain.TypeCredit, nil
	case string(domain.TypeDebit):
		return domain.TypeDebit, nil
	case string(domain.TypeInvestment):
		return domain.TypeInvestment, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

func getNumberField(m map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		// Some models quote numbers; accept the string form too.
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q is not a number: %w", key, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
