package table

import (
	"strings"

	"github.com/jwaldner/mtts/internal/models"
)

// Criterion reports whether a row stays in the working set.
type Criterion func(*models.StockData) bool

// And passes a row only when every non-nil criterion passes.
func And(cs ...Criterion) Criterion {
	return func(s *models.StockData) bool {
		if s == nil {
			return false
		}
		for _, c := range cs {
			if c == nil {
				continue
			}
			if !c(s) {
				return false
			}
		}
		return true
	}
}

// PassOnly keeps rows that satisfied the whole ruleset.
func PassOnly(s *models.StockData) bool {
	return s.Status == models.StatusPass
}

// Search matches ticker or name case-insensitively. The text is not trimmed;
// an empty text matches everything.
func Search(text string) Criterion {
	if text == "" {
		return nil
	}
	needle := strings.ToLower(text)
	return func(s *models.StockData) bool {
		return strings.Contains(strings.ToLower(s.Ticker), needle) ||
			strings.Contains(strings.ToLower(s.Name), needle)
	}
}

// Filter returns the rows matching the pass-only toggle and the search text,
// in input order. The input slice is never modified.
func Filter(rows []models.StockData, passOnly bool, searchText string) []models.StockData {
	var pass Criterion
	if passOnly {
		pass = PassOnly
	}
	keep := And(pass, Search(searchText))

	out := make([]models.StockData, 0, len(rows))
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
