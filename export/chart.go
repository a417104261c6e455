package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Pablojox/analyze-transactions/models"
)

const barWidth = 40

// RenderChart prints a horizontal bar per category showing the mean share
// of that category across all customers in the matrix. Category labels are
// humanized for display; the matrix itself keeps the raw labels.
func RenderChart(w io.Writer, matrix models.CategoryMatrix) {
	if len(matrix.Rows) == 0 || len(matrix.Categories) == 0 {
		fmt.Fprintln(w, "no transactions collected")
		return
	}

	means := make([]float64, len(matrix.Categories))
	for _, row := range matrix.Rows {
		for i, share := range row.Shares {
			means[i] += share
		}
	}
	maxMean := 0.0
	for i := range means {
		means[i] /= float64(len(matrix.Rows))
		if means[i] > maxMean {
			maxMean = means[i]
		}
	}

	labels := make([]string, len(matrix.Categories))
	labelWidth := 0
	for i, category := range matrix.Categories {
		labels[i] = Humanize(category)
		if len(labels[i]) > labelWidth {
			labelWidth = len(labels[i])
		}
	}

	bar := color.New(color.FgCyan)
	fmt.Fprintln(w, "Transaction share per category")
	for i, label := range labels {
		width := 0
		if maxMean > 0 {
			width = int(means[i] / maxMean * barWidth)
		}
		fmt.Fprintf(w, "%-*s ", labelWidth, label)
		bar.Fprint(w, strings.Repeat("█", width))
		fmt.Fprintf(w, " %5.1f%%\n", means[i]*100)
	}
}

// Humanize turns a snake_case category label into a display one: tokens
// joined by spaces, first letter capitalized, the rest lowered.
func Humanize(category string) string {
	human := strings.Join(strings.Split(category, "_"), " ")
	if human == "" {
		return human
	}
	return strings.ToUpper(human[:1]) + strings.ToLower(human[1:])
}
