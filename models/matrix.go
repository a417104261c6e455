package models

import "sort"

// CategoryMatrix is the per-customer spend distribution: one row per
// customer, one column per category observed anywhere in the transaction
// set. Cells are plain fractions in [0, 1]; for a customer with at least
// one transaction the row sums to 1 within floating-point tolerance.
// Customers with zero transactions are omitted. Categories and rows are
// both in lexicographic order so output is reproducible run to run.
type CategoryMatrix struct {
	Categories []string
	Rows       []CategoryRow
}

// CategoryRow holds one customer's shares, parallel to the matrix's
// Categories slice.
type CategoryRow struct {
	CustomerID string
	Shares     []float64
}

// Row returns the row for customerID, if present.
func (m CategoryMatrix) Row(customerID string) (CategoryRow, bool) {
	for _, row := range m.Rows {
		if row.CustomerID == customerID {
			return row, true
		}
	}
	return CategoryRow{}, false
}

// Share returns the fraction of customerID's transactions in category,
// or 0 when either is absent from the matrix.
func (m CategoryMatrix) Share(customerID, category string) float64 {
	row, ok := m.Row(customerID)
	if !ok {
		return 0
	}
	i := sort.SearchStrings(m.Categories, category)
	if i >= len(m.Categories) || m.Categories[i] != category {
		return 0
	}
	return row.Shares[i]
}
