package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pablojox/analyze-transactions/models"
)

// FixtureSource serves the same interfaces as the live services from a
// local CSV file, so the pipeline runs unchanged against canned data. Each
// customer is modelled as one synthetic connection holding one account,
// both keyed by the customer id.
type FixtureSource struct {
	byCustomer map[string]models.TransactionSet
	order      []string
}

// NewFixtureSource loads the fixture file. The header must contain
// customer_id and category columns; id and amount are optional, any other
// column is carried as an opaque extra field. Rows lacking an id get one
// minted so fixture data stays addressable in logs and exports.
func NewFixtureSource(path string) (*FixtureSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading fixture header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"customer_id", "category"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("fixture file %s is missing required column %q", path, required)
		}
	}

	src := &FixtureSource{byCustomer: make(map[string]models.TransactionSet)}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading fixture rows: %w", err)
	}
	for n, record := range records {
		tx, err := fixtureRow(header, col, record)
		if err != nil {
			return nil, fmt.Errorf("fixture row %d: %w", n+2, err)
		}
		if _, seen := src.byCustomer[tx.CustomerID]; !seen {
			src.order = append(src.order, tx.CustomerID)
		}
		src.byCustomer[tx.CustomerID] = append(src.byCustomer[tx.CustomerID], tx)
	}
	return src, nil
}

func fixtureRow(header []string, col map[string]int, record []string) (models.Transaction, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	tx := models.Transaction{
		ID:          field("id"),
		AccountID:   field("account_id"),
		CustomerID:  field("customer_id"),
		Category:    field("category"),
		Currency:    field("currency_code"),
		MadeOn:      field("made_on"),
		Description: field("description"),
	}
	if tx.CustomerID == "" {
		return tx, fmt.Errorf("empty customer_id")
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if raw := field("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return tx, fmt.Errorf("parsing amount %q: %w", raw, err)
		}
		tx.Amount = amount
	}

	for i, name := range header {
		switch name {
		case "id", "account_id", "customer_id", "category", "currency_code", "made_on", "description", "amount":
		default:
			if i < len(record) && record[i] != "" {
				if tx.Extra == nil {
					tx.Extra = make(map[string]json.RawMessage)
				}
				quoted, _ := json.Marshal(record[i])
				tx.Extra[name] = quoted
			}
		}
	}
	return tx, nil
}

// ListCustomerIDs returns the distinct customer ids of the fixture file in
// first-appearance order.
func (s *FixtureSource) ListCustomerIDs(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.order...), nil
}

// GetActiveConnections reports the customer's synthetic connection, or
// nothing for customers absent from the fixture.
func (s *FixtureSource) GetActiveConnections(ctx context.Context, customerID string) ([]string, error) {
	if len(s.byCustomer[customerID]) == 0 {
		return nil, nil
	}
	return []string{customerID}, nil
}

// GetEligibleAccounts reports the connection's single synthetic account.
func (s *FixtureSource) GetEligibleAccounts(ctx context.Context, connectionID string) ([]string, error) {
	return []string{connectionID}, nil
}

// FetchTransactions returns the fixture rows for each account. Fixture
// reads cannot fail mid-stream, so the failure count is always zero.
func (s *FixtureSource) FetchTransactions(ctx context.Context, connectionID string, accountIDs []string) (models.TransactionSet, int) {
	var set models.TransactionSet
	for _, accountID := range accountIDs {
		set = append(set, s.byCustomer[accountID]...)
	}
	return set, 0
}

// Customers exposes the fixture's customer universe for the sandbox
// emulator.
func (s *FixtureSource) Customers() []string {
	return append([]string(nil), s.order...)
}

// TransactionsFor exposes one customer's fixture rows for the sandbox
// emulator.
func (s *FixtureSource) TransactionsFor(customerID string) models.TransactionSet {
	return append(models.TransactionSet(nil), s.byCustomer[customerID]...)
}
