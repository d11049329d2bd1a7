// Package charts renders spending breakdowns as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"spendwise/internal/core"
)

// Renderer produces category breakdown charts from a spending summary.
type Renderer struct {
	Width  int
	Height int
}

func NewRenderer() *Renderer {
	return &Renderer{Width: 800, Height: 800}
}

// CategoryPie renders a pie chart of spending per category. Slice colors
// follow core.CategoryColor so a category keeps its color across renders.
// Returns nil bytes when the summary is empty.
func (r *Renderer) CategoryPie(summary core.Summary) ([]byte, error) {
	if len(summary.ByCategory) == 0 || summary.Total.Cents <= 0 {
		return nil, nil
	}

	names := make([]string, 0, len(summary.ByCategory))
	for name := range summary.ByCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	total := summary.Total.Dollars()
	values := make([]chart.Value, 0, len(names))
	for _, name := range names {
		amount := summary.ByCategory[name]
		if amount.Cents <= 0 {
			continue
		}
		share := amount.Dollars() / total * 100
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", name, amount, share),
			Value: amount.Dollars(),
			Style: chart.Style{
				FillColor: sliceColor(name),
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render category pie: %w", err)
	}
	return buf.Bytes(), nil
}

func sliceColor(category string) drawing.Color {
	hex := strings.TrimPrefix(core.CategoryColor(category), "#")
	return drawing.ColorFromHex(hex)
}
