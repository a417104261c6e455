package services

import (
	"sort"

	"github.com/Pablojox/analyze-transactions/models"
)

// CalculatePercentages reduces a transaction set into the per-customer
// category share matrix. Every category observed anywhere in the set
// becomes a column; a customer lacking it gets 0.0, not a gap. Customers
// with zero transactions are omitted. Categories and rows come out in
// lexicographic order, so identical input produces an identical matrix.
func CalculatePercentages(set models.TransactionSet) models.CategoryMatrix {
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)
	categorySet := make(map[string]struct{})

	for _, tx := range set {
		if counts[tx.CustomerID] == nil {
			counts[tx.CustomerID] = make(map[string]int)
		}
		counts[tx.CustomerID][tx.Category]++
		totals[tx.CustomerID]++
		categorySet[tx.Category] = struct{}{}
	}

	categories := make([]string, 0, len(categorySet))
	for category := range categorySet {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	customers := make([]string, 0, len(totals))
	for customerID := range totals {
		customers = append(customers, customerID)
	}
	sort.Strings(customers)

	matrix := models.CategoryMatrix{Categories: categories}
	for _, customerID := range customers {
		shares := make([]float64, len(categories))
		total := float64(totals[customerID])
		for i, category := range categories {
			shares[i] = float64(counts[customerID][category]) / total
		}
		matrix.Rows = append(matrix.Rows, models.CategoryRow{
			CustomerID: customerID,
			Shares:     shares,
		})
	}
	return matrix
}
