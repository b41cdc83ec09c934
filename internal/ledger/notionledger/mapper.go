package notionledger

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// TransactionToNotionProperties converts a transaction to Notion page
// properties. The Entry ID rich text field tracks the transaction identity
// for idempotent re-exports.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		},
		"Entry ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
	}

	// Amount is stored as a plain number; Notion has no decimal type.
	amount, _ := tx.Amount.Float64()
	props["Amount"] = notionapi.NumberProperty{Number: amount}

	if tx.Type != "" {
		props["Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.CardLast4 != "" {
		props["Card"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.CardLast4,
					},
				},
			},
		}
	}

	if parsed, err := time.Parse(domain.DateLayout, tx.TransactionDate); err == nil {
		d := notionapi.Date(parsed)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	return props
}

// extractEntryID pulls the transaction identity back out of a Notion page.
// Pages created outside this exporter have no Entry ID and return "".
func extractEntryID(page notionapi.Page) string {
	prop, ok := page.Properties["Entry ID"]
	if !ok {
		return ""
	}

	rich, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		if v, ok := prop.(notionapi.RichTextProperty); ok {
			rich = &v
		} else {
			return ""
		}
	}

	if len(rich.RichText) == 0 || rich.RichText[0].Text == nil {
		return ""
	}
	return rich.RichText[0].Text.Content
}
