package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is one row fetched from the aggregation API. The typed fields
// are the ones the pipeline reads; everything else the upstream sends is
// carried opaquely in Extra so exports round-trip unknown fields.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	AccountID   string          `json:"account_id,omitempty"`
	CustomerID  string          `json:"customer_id,omitempty"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency_code,omitempty"`
	MadeOn      string          `json:"made_on,omitempty"`
	Description string          `json:"description,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownTransactionKeys = []string{
	"id", "account_id", "customer_id", "category",
	"amount", "currency_code", "made_on", "description",
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, key := range knownTransactionKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*t = Transaction(p)
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	b, err := json.Marshal(plain(t))
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return b, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for key, value := range t.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// TransactionSet is the union of all transactions collected in one run.
// Rows are held in memory only for the duration of the run and are never
// mutated after collection, except for the customer id tag applied by the
// collector before merging.
type TransactionSet []Transaction
