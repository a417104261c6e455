package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Pablojox/analyze-transactions/config"
	"github.com/Pablojox/analyze-transactions/logger"
	"github.com/Pablojox/analyze-transactions/models"
	"github.com/Pablojox/analyze-transactions/utils"
)

// Account natures that contribute transactions. Everything else (loans,
// mortgages, insurance, ...) is skipped.
var eligibleNatures = map[string]bool{
	"bonus":   true,
	"savings": true,
	"card":    true,
	"account": true,
}

// DecodeError reports a response body whose shape matches none of the
// envelopes the aggregation API is known to send.
type DecodeError struct {
	Resource string
	Body     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unrecognized %s response shape: %s", e.Resource, utils.Snippet(e.Body, 200))
}

// SaltEdgeService is the live client for the Salt Edge partners v1 API.
type SaltEdgeService struct {
	AppID   string
	Secret  string
	BaseURL string
	Client  *http.Client
}

func NewSaltEdgeService(cfg *config.Config) *SaltEdgeService {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SaltEdgeService{
		AppID:   cfg.SaltEdgeAppID,
		Secret:  cfg.SaltEdgeSecret,
		BaseURL: cfg.SaltEdgeURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *SaltEdgeService) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("App-id", s.AppID)
	req.Header.Set("Secret", s.Secret)
}

// get issues one request and returns the body. A transport error (timeouts
// included) or a non-2xx status is one error either way; callers treat both
// as "this call produced nothing" and move on.
func (s *SaltEdgeService) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		masked := utils.MaskSensitive(utils.RedactSecrets(string(body), s.Secret, s.AppID))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, utils.Snippet(masked, 500))
	}
	return body, nil
}

// GetActiveConnections returns the ids of the customer's connections whose
// status is "active". A customer with none is a normal terminal state.
func (s *SaltEdgeService) GetActiveConnections(ctx context.Context, customerID string) ([]string, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/api/partners/v1/connections?customer_id=%s", s.BaseURL, url.QueryEscape(customerID)))
	if err != nil {
		return nil, err
	}

	var res struct {
		Data []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &DecodeError{Resource: "connections", Body: string(body)}
	}

	var ids []string
	for _, connection := range res.Data {
		if connection.Status == "active" {
			ids = append(ids, connection.ID)
		}
	}
	return ids, nil
}

// GetEligibleAccounts returns the connection's account ids whose nature is
// in the eligible set. The API sends accounts either as a bare list or
// wrapped under a "data" key; both are accepted, anything else is a
// DecodeError.
func (s *SaltEdgeService) GetEligibleAccounts(ctx context.Context, connectionID string) ([]string, error) {
	body, err := s.get(ctx, fmt.Sprintf("%s/api/partners/v1/accounts?connection_id=%s", s.BaseURL, url.QueryEscape(connectionID)))
	if err != nil {
		return nil, err
	}

	accounts, err := decodeAccounts(body)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, account := range accounts {
		if eligibleNatures[account.Nature] {
			ids = append(ids, account.ID)
		}
	}
	return ids, nil
}

type saltEdgeAccount struct {
	ID     string `json:"id"`
	Nature string `json:"nature"`
}

func decodeAccounts(body []byte) ([]saltEdgeAccount, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var accounts []saltEdgeAccount
		if err := json.Unmarshal(trimmed, &accounts); err != nil {
			return nil, &DecodeError{Resource: "accounts", Body: string(body)}
		}
		return accounts, nil
	}

	var res struct {
		Data *[]saltEdgeAccount `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &res); err != nil || res.Data == nil {
		return nil, &DecodeError{Resource: "accounts", Body: string(body)}
	}
	return *res.Data, nil
}

// FetchTransactions drains the paginated transaction listing for each
// account in turn. A failure mid-pagination stops that account only: pages
// already collected are kept and the remaining accounts still run. The
// second result is the number of accounts whose pagination was cut short.
func (s *SaltEdgeService) FetchTransactions(ctx context.Context, connectionID string, accountIDs []string) (models.TransactionSet, int) {
	log := logger.FromContext(ctx)

	var set models.TransactionSet
	failed := 0
	for _, accountID := range accountIDs {
		next := fmt.Sprintf("%s/api/partners/v1/transactions?connection_id=%s&account_id=%s",
			s.BaseURL, url.QueryEscape(connectionID), url.QueryEscape(accountID))
		for next != "" {
			body, err := s.get(ctx, next)
			if err != nil {
				failed++
				log.Error().Err(err).
					Str("connection_id", connectionID).
					Str("account_id", accountID).
					Msg("fetching transactions failed")
				break
			}

			var page struct {
				Data models.TransactionSet `json:"data"`
				Meta struct {
					NextPage string `json:"next_page"`
				} `json:"meta"`
			}
			if err := json.Unmarshal(body, &page); err != nil {
				failed++
				log.Error().Err(err).
					Str("connection_id", connectionID).
					Str("account_id", accountID).
					Msg("decoding transactions page failed")
				break
			}

			set = append(set, page.Data...)
			if page.Meta.NextPage == "" {
				break
			}
			// next_page is a path relative to the service origin.
			next = s.BaseURL + page.Meta.NextPage
		}
	}
	return set, failed
}
