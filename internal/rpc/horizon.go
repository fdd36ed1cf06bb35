package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bdb-wallet-go/internal/models"
)

// HistoryClient reads an account's recent operations from a Horizon-style
// REST endpoint. It is best-effort: the pipeline falls back to the local
// history store when it fails or returns nothing.
type HistoryClient struct {
	baseURL string
	http    *http.Client
}

func NewHistoryClient(baseURL string, httpClient *http.Client) *HistoryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HistoryClient{baseURL: baseURL, http: httpClient}
}

type horizonOperation struct {
	Id        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    string    `json:"amount"`
	AssetType string    `json:"asset_type"`
}

type horizonOperationsPage struct {
	Embedded struct {
		Records []horizonOperation `json:"records"`
	} `json:"_embedded"`
}

// RecentOperations returns up to limit payment operations involving the
// account, most recent first.
func (h *HistoryClient) RecentOperations(ctx context.Context, account string, limit int) ([]models.TransactionRecord, error) {
	if h.baseURL == "" {
		return nil, fmt.Errorf("history endpoint not configured")
	}

	endpoint := fmt.Sprintf("%s/accounts/%s/operations?limit=%d&order=desc",
		h.baseURL, url.PathEscape(account), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching operations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var page horizonOperationsPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("malformed operations page: %w", err)
	}

	var records []models.TransactionRecord
	for _, op := range page.Embedded.Records {
		if op.Type != "payment" {
			continue
		}
		records = append(records, models.TransactionRecord{
			Id:        op.Id,
			CreatedAt: op.CreatedAt,
			From:      op.From,
			To:        op.To,
			Amount:    op.Amount,
		})
		if len(records) == limit {
			break
		}
	}

	return records, nil
}
