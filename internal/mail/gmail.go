package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

const maxMessagesPerScan = 100

// GmailService is the production Service, querying the Gmail API for bank
// notification emails. It assumes OAuth credentials are configured the
// usual way (application default credentials or an explicit credentials
// file passed as a client option).
type GmailService struct {
	svc  *gmail.Service
	user string
}

// NewGmailService creates a Gmail-backed mail service for the given
// mailbox, usually "me".
func NewGmailService(ctx context.Context, user string, opts ...option.ClientOption) (*GmailService, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGmailService: %w", err)
	}
	return &GmailService{svc: svc, user: user}, nil
}

// FetchMessages implements Service. The sender set and date window are
// pushed into a Gmail search query so filtering happens server-side.
func (g *GmailService) FetchMessages(ctx context.Context, senders []string, dateFrom, dateTo string) ([]Message, error) {
	if len(senders) == 0 {
		return nil, nil
	}

	query, err := buildQuery(senders, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("FetchMessages: %w", err)
	}

	list, err := g.svc.Users.Messages.List(g.user).
		Q(query).
		MaxResults(maxMessagesPerScan).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("FetchMessages: listing messages: %w", err)
	}

	var out []Message
	for _, ref := range list.Messages {
		msg, err := g.svc.Users.Messages.Get(g.user, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("FetchMessages: fetching message %s: %w", ref.Id, err)
		}

		out = append(out, Message{
			ID:      msg.Id,
			Sender:  headerValue(msg.Payload, "From"),
			Snippet: msg.Snippet,
			Date:    time.UnixMilli(msg.InternalDate).UTC().Format(domain.DateLayout),
			Body:    extractBody(msg.Payload),
		})
	}
	return out, nil
}

// buildQuery assembles a Gmail search expression. Gmail's before: operator
// is exclusive, so the inclusive dateTo bound becomes before:(dateTo+1day).
func buildQuery(senders []string, dateFrom, dateTo string) (string, error) {
	var parts []string

	parts = append(parts, "from:("+strings.Join(senders, " OR ")+")")

	if dateFrom != "" {
		d, err := domain.ParseDate(dateFrom)
		if err != nil {
			return "", err
		}
		parts = append(parts, "after:"+d.Format("2006/01/02"))
	}
	if dateTo != "" {
		d, err := domain.ParseDate(dateTo)
		if err != nil {
			return "", err
		}
		parts = append(parts, "before:"+d.AddDate(0, 0, 1).Format("2006/01/02"))
	}
	return strings.Join(parts, " "), nil
}

func headerValue(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree and returns the first text/plain part,
// falling back to the top-level body.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

var _ Service = (*GmailService)(nil)
