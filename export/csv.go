package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Pablojox/analyze-transactions/models"
)

// WriteCSV writes the matrix as a delimited table, one row per customer,
// one column per category. The customer id column is dropped unless keepIDs
// is set; the reporting sink consumes the shares anonymously.
func WriteCSV(path string, matrix models.CategoryMatrix, keepIDs bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := matrix.Categories
	if keepIDs {
		header = append([]string{"customer_id"}, matrix.Categories...)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range matrix.Rows {
		record := make([]string, 0, len(row.Shares)+1)
		if keepIDs {
			record = append(record, row.CustomerID)
		}
		for _, share := range row.Shares {
			record = append(record, strconv.FormatFloat(share, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row for %s: %w", row.CustomerID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}
