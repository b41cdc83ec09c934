package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// TokenSource supplies the current bearer credential, or "" when anonymous.
type TokenSource func() string

// RemoteService is the production Service: every operation is a direct
// pass-through to the backend ledger API.
type RemoteService struct {
	baseURL string
	token   TokenSource
	client  *http.Client
}

// NewRemoteService creates a ledger client for the given API base URL. The
// token source is consulted on every request so a re-login is picked up
// without rebuilding the client.
func NewRemoteService(baseURL string, token TokenSource) *RemoteService {
	return &RemoteService{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RemoteService) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := s.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ListSenders implements Service.
func (s *RemoteService) ListSenders(ctx context.Context) ([]domain.Sender, error) {
	var senders []domain.Sender
	if err := s.do(ctx, http.MethodGet, "/senders", nil, &senders); err != nil {
		return nil, fmt.Errorf("ListSenders: %w", err)
	}
	return senders, nil
}

// AddSender implements Service.
func (s *RemoteService) AddSender(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.do(ctx, http.MethodPost, "/senders", body, nil); err != nil {
		return fmt.Errorf("AddSender: %w", err)
	}
	return nil
}

// DeleteSender implements Service.
func (s *RemoteService) DeleteSender(ctx context.Context, rowKey string) error {
	path := "/senders/" + url.PathEscape(rowKey)
	if err := s.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("DeleteSender: %w", err)
	}
	return nil
}

// ListCategories implements Service.
func (s *RemoteService) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	return categories, nil
}

// ListTransactions implements Service. Backend totals are trusted verbatim
// when present; a nil totals pointer tells the caller to compute its own.
func (s *RemoteService) ListTransactions(ctx context.Context, from, to string) ([]domain.Transaction, *domain.ReportTotals, error) {
	q := url.Values{}
	if from != "" {
		q.Set("dateFrom", from)
	}
	if to != "" {
		q.Set("dateTo", to)
	}
	path := "/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
		Totals       *domain.ReportTotals `json:"totals"`
	}
	if err := s.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return body.Transactions, body.Totals, nil
}

// InsertTransactions implements Service. Backends that do not report
// per-item outcomes implicitly accept the whole batch.
func (s *RemoteService) InsertTransactions(ctx context.Context, txs []domain.Transaction) (map[string]bool, error) {
	req := map[string]interface{}{"transactions": txs}

	var body struct {
		Results map[string]bool `json:"results"`
	}
	if err := s.do(ctx, http.MethodPost, "/transactions/bulk", req, &body); err != nil {
		return nil, fmt.Errorf("InsertTransactions: %w", err)
	}

	if body.Results == nil {
		body.Results = make(map[string]bool, len(txs))
		for _, tx := range txs {
			body.Results[tx.ID] = true
		}
	}
	return body.Results, nil
}

// UpdateTransaction implements Service.
func (s *RemoteService) UpdateTransaction(ctx context.Context, id string, update domain.TransactionUpdate) error {
	path := "/transactions/" + url.PathEscape(id)
	if err := s.do(ctx, http.MethodPatch, path, update, nil); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	return nil
}

var _ Service = (*RemoteService)(nil)
