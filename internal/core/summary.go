package core

import "hash/fnv"

// Summary is the aggregation of a user's expenses: total spending and a
// per-category breakdown. Category names are compared by exact string
// equality, so "Food" and "food" are distinct buckets.
type Summary struct {
	Total      Money
	ByCategory map[string]Money
}

// Aggregate computes the summary over the given expenses. It is a pure
// function: the total always equals the sum over ByCategory values, and
// an empty input yields a zero total with an empty (non-nil) map.
func Aggregate(expenses []Expense) Summary {
	s := Summary{ByCategory: make(map[string]Money, len(expenses))}
	for _, e := range expenses {
		s.Total.Cents += e.Amount.Cents
		c := s.ByCategory[e.Category]
		c.Cents += e.Amount.Cents
		s.ByCategory[e.Category] = c
	}
	return s
}

// categoryPalette holds the chart colors cycled through by category
// hash. Size is coprime-ish with nothing in particular; twelve slices
// render distinctly on a pie chart.
var categoryPalette = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12",
	"#9b59b6", "#1abc9c", "#e67e22", "#34495e",
	"#16a085", "#c0392b", "#2980b9", "#8e44ad",
}

// CategoryColor returns the display color for a category as a #rrggbb
// hex string. The color is derived from a hash of the category name so
// it is stable across renders and across processes.
func CategoryColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return categoryPalette[h.Sum32()%uint32(len(categoryPalette))]
}
