package table

import (
	"cmp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/jwaldner/mtts/internal/models"
)

// Field names a sortable column
type Field string

const (
	FieldTicker     Field = "ticker"
	FieldName       Field = "name"
	FieldPrice      Field = "price"
	FieldRSRating   Field = "rs_rating"
	FieldVolAvg     Field = "vol_avg"
	FieldStatus     Field = "status"
	FieldMatchCount Field = "match_count"
)

// SortKey is one (field, direction) entry; earlier keys take priority.
type SortKey struct {
	Field Field `json:"field"`
	Desc  bool  `json:"desc"`
}

// DefaultSortKeys puts PASS first, strongest RS first within each status.
func DefaultSortKeys() []SortKey {
	return []SortKey{
		{Field: FieldStatus},
		{Field: FieldRSRating, Desc: true},
	}
}

// Valid reports whether the table can sort by f
func (f Field) Valid() bool {
	switch f {
	case FieldTicker, FieldName, FieldPrice, FieldRSRating, FieldVolAvg, FieldStatus, FieldMatchCount:
		return true
	}
	return false
}

// ParseSortKeys reads a comma separated list such as "status,-rs_rating";
// a leading '-' sorts that field descending.
func ParseSortKeys(spec string) ([]SortKey, error) {
	var keys []SortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{}
		if strings.HasPrefix(part, "-") {
			key.Desc = true
			part = part[1:]
		}
		key.Field = Field(part)
		if !key.Field.Valid() {
			return nil, errors.Wrapf(ErrUnknownField, "%q", part)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// FormatSortKeys renders keys in the ParseSortKeys format
func FormatSortKeys(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		if k.Desc {
			parts[i] = "-" + string(k.Field)
		} else {
			parts[i] = string(k.Field)
		}
	}
	return strings.Join(parts, ",")
}

func statusRank(s models.Status) int {
	if s == models.StatusPass {
		return 0
	}
	return 1
}

// Sort orders a copy of rows by keys. Rows equal under every key keep their
// input order. An unknown field or a malformed match_count fails the whole
// sort rather than producing a partial order.
func Sort(rows []models.StockData, keys []SortKey) ([]models.StockData, error) {
	needMatch := false
	for _, k := range keys {
		if !k.Field.Valid() {
			return nil, errors.Wrapf(ErrUnknownField, "%q", k.Field)
		}
		if k.Field == FieldMatchCount {
			needMatch = true
		}
	}

	type entry struct {
		row     models.StockData
		matched int
	}
	entries := make([]entry, len(rows))
	for i := range rows {
		entries[i].row = rows[i]
		if needMatch {
			m, _, err := ParseMatchCount(rows[i].MatchCount)
			if err != nil {
				return nil, errors.Wrapf(err, "ticker %s", rows[i].Ticker)
			}
			entries[i].matched = m
		}
	}

	compare := func(a, b *entry, f Field) int {
		switch f {
		case FieldTicker:
			return strings.Compare(a.row.Ticker, b.row.Ticker)
		case FieldName:
			return strings.Compare(a.row.Name, b.row.Name)
		case FieldPrice:
			return cmp.Compare(a.row.Price, b.row.Price)
		case FieldRSRating:
			return cmp.Compare(a.row.RSRating, b.row.RSRating)
		case FieldVolAvg:
			return cmp.Compare(a.row.VolAvg, b.row.VolAvg)
		case FieldStatus:
			return cmp.Compare(statusRank(a.row.Status), statusRank(b.row.Status))
		case FieldMatchCount:
			return cmp.Compare(a.matched, b.matched)
		}
		return 0
	}

	sort.SliceStable(entries, func(i, j int) bool {
		for _, k := range keys {
			c := compare(&entries[i], &entries[j], k.Field)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	out := make([]models.StockData, len(entries))
	for i := range entries {
		out[i] = entries[i].row
	}
	return out, nil
}
