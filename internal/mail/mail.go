package mail

import "context"

// Message is one retrieved email body, the raw input to extraction.
type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"` // YYYY-MM-DD
	Body    string `json:"body"`
}

// Service retrieves email bodies from the configured senders inside an
// inclusive date window. This interface enables mocking and testing of the
// mail retrieval step.
type Service interface {
	FetchMessages(ctx context.Context, senders []string, dateFrom, dateTo string) ([]Message, error)
}
