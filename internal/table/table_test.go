package table

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/mtts/internal/models"
)

func row(ticker, name string, status models.Status, rs int) models.StockData {
	match := "8/8"
	if status == models.StatusFail {
		match = "6/8"
	}
	return models.StockData{
		Ticker:     ticker,
		Name:       name,
		Price:      100,
		RSRating:   rs,
		VolAvg:     500000,
		Status:     status,
		MatchCount: match,
	}
}

func tickers(rows []models.StockData) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Ticker
	}
	return out
}

func sampleRows() []models.StockData {
	return []models.StockData{
		row("2330.TW", "TSMC", models.StatusPass, 88),
		row("2317.TW", "Hon Hai", models.StatusFail, 72),
		row("6488.TWO", "GlobalWafers", models.StatusPass, 95),
		row("2454.TW", "MediaTek", models.StatusFail, 99),
		row("3105.TWO", "Win Semi", models.StatusFail, 40),
	}
}

func numberedRows(n int) []models.StockData {
	rows := make([]models.StockData, n)
	for i := range rows {
		rows[i] = row(fmt.Sprintf("%04d.TW", i), fmt.Sprintf("Stock %d", i), models.StatusPass, 50)
	}
	return rows
}

func TestFilterPassOnlyIsSubset(t *testing.T) {
	rows := sampleRows()

	all := Filter(rows, false, "")
	assert.Equal(t, rows, all)

	pass := Filter(rows, true, "")
	assert.LessOrEqual(t, len(pass), len(all))
	for _, r := range pass {
		assert.Equal(t, models.StatusPass, r.Status)
		assert.Contains(t, all, r)
	}
	assert.Equal(t, []string{"2330.TW", "6488.TWO"}, tickers(pass))
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	rows := sampleRows()

	lower := Filter(rows, false, "hon")
	upper := Filter(rows, false, "HON")
	assert.Equal(t, lower, upper)
	assert.Equal(t, []string{"2317.TW"}, tickers(lower))
}

func TestFilterSearchMatchesTickerOrName(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, []string{"6488.TWO", "3105.TWO"}, tickers(Filter(rows, false, ".two")))
	assert.Equal(t, []string{"2454.TW"}, tickers(Filter(rows, false, "media")))
}

func TestFilterSearchIsNotTrimmed(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, []string{"2317.TW"}, tickers(Filter(rows, false, "hon ")))
	assert.Empty(t, Filter(rows, false, " tsmc"))
}

func TestFilterComposition(t *testing.T) {
	rows := sampleRows()

	both := Filter(rows, true, "tw")
	searchThenPass := Filter(Filter(rows, false, "tw"), true, "")
	passThenSearch := Filter(Filter(rows, true, ""), false, "tw")
	assert.Equal(t, searchThenPass, both)
	assert.Equal(t, passThenSearch, both)
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	rows := sampleRows()
	before := append([]models.StockData(nil), rows...)

	out := Filter(rows, true, "")
	require.NotEmpty(t, out)
	out[0].Ticker = "changed"
	assert.Equal(t, before, rows)
}

func TestSortDefaultKeysTieBreak(t *testing.T) {
	a := row("A", "A", models.StatusPass, 80)
	b := row("B", "B", models.StatusPass, 95)
	c := row("C", "C", models.StatusFail, 99)

	out, err := Sort([]models.StockData{a, b, c}, DefaultSortKeys())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, tickers(out))
}

func TestSortIsStable(t *testing.T) {
	rows := []models.StockData{
		row("X1", "x", models.StatusPass, 70),
		row("X2", "x", models.StatusPass, 70),
		row("Y", "y", models.StatusPass, 90),
		row("X3", "x", models.StatusPass, 70),
	}

	out, err := Sort(rows, []SortKey{{Field: FieldRSRating, Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X1", "X2", "X3"}, tickers(out))

	out, err = Sort(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, tickers(rows), tickers(out))
}

func TestSortMatchCountIsNumeric(t *testing.T) {
	ten := row("TEN", "ten", models.StatusFail, 10)
	ten.MatchCount = "10/8"
	two := row("TWO", "two", models.StatusFail, 10)
	two.MatchCount = "2/8"

	out, err := Sort([]models.StockData{ten, two}, []SortKey{{Field: FieldMatchCount}})
	require.NoError(t, err)
	assert.Equal(t, []string{"TWO", "TEN"}, tickers(out))

	out, err = Sort([]models.StockData{two, ten}, []SortKey{{Field: FieldMatchCount, Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"TEN", "TWO"}, tickers(out))
}

func TestSortByEachField(t *testing.T) {
	rows := sampleRows()
	rows[0].Price, rows[1].Price, rows[2].Price, rows[3].Price, rows[4].Price = 1000, 150, 500, 1200, 80
	rows[0].VolAvg, rows[1].VolAvg, rows[2].VolAvg, rows[3].VolAvg, rows[4].VolAvg = 5e6, 9e6, 1e6, 2e6, 3e5

	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortKey{Field: FieldTicker}, []string{"2317.TW", "2330.TW", "2454.TW", "3105.TWO", "6488.TWO"}},
		{SortKey{Field: FieldName}, []string{"6488.TWO", "2317.TW", "2454.TW", "2330.TW", "3105.TWO"}},
		{SortKey{Field: FieldPrice}, []string{"3105.TWO", "2317.TW", "6488.TWO", "2330.TW", "2454.TW"}},
		{SortKey{Field: FieldVolAvg, Desc: true}, []string{"2317.TW", "2330.TW", "2454.TW", "6488.TWO", "3105.TWO"}},
		{SortKey{Field: FieldStatus}, []string{"2330.TW", "6488.TWO", "2317.TW", "2454.TW", "3105.TWO"}},
		{SortKey{Field: FieldStatus, Desc: true}, []string{"2317.TW", "2454.TW", "3105.TWO", "2330.TW", "6488.TWO"}},
	}
	for _, tc := range cases {
		t.Run(FormatSortKeys([]SortKey{tc.key}), func(t *testing.T) {
			out, err := Sort(rows, []SortKey{tc.key})
			require.NoError(t, err)
			assert.Equal(t, tc.want, tickers(out))
		})
	}
}

func TestSortRejectsUnknownField(t *testing.T) {
	_, err := Sort(sampleRows(), []SortKey{{Field: "sector"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSortRejectsMalformedMatchCount(t *testing.T) {
	rows := sampleRows()
	rows[2].MatchCount = "x/8"

	_, err := Sort(rows, []SortKey{{Field: FieldMatchCount}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMatchCount)

	// match_count is only parsed when it is a key
	_, err = Sort(rows, DefaultSortKeys())
	assert.NoError(t, err)
}

func TestParseSortKeys(t *testing.T) {
	keys, err := ParseSortKeys("status, -rs_rating,match_count")
	require.NoError(t, err)
	assert.Equal(t, []SortKey{
		{Field: FieldStatus},
		{Field: FieldRSRating, Desc: true},
		{Field: FieldMatchCount},
	}, keys)
	assert.Equal(t, "status,-rs_rating,match_count", FormatSortKeys(keys))

	_, err = ParseSortKeys("status,-sector")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseMatchCount(t *testing.T) {
	m, n, err := ParseMatchCount("7/8")
	require.NoError(t, err)
	assert.Equal(t, 7, m)
	assert.Equal(t, 8, n)

	for _, bad := range []string{"", "7", "a/8", "7/b", "/8"} {
		_, _, err := ParseMatchCount(bad)
		assert.ErrorIs(t, err, ErrMalformedMatchCount, bad)
	}
}

func TestPaginateBounds(t *testing.T) {
	rows := numberedRows(45)

	res := Paginate(rows, Page{Index: 2, Size: 20})
	assert.Equal(t, rows[40:45], res.Rows)
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, 2, res.PageIndex)
	assert.Equal(t, 3, res.PageCount)
	assert.Equal(t, 45, res.TotalCount)
	assert.Equal(t, 41, res.FirstRow)
	assert.Equal(t, 45, res.LastRow)
	assert.True(t, res.CanPrev)
	assert.False(t, res.CanNext)

	first := Paginate(rows, Page{Index: 0, Size: 20})
	assert.Equal(t, rows[0:20], first.Rows)
	assert.False(t, first.CanPrev)
	assert.True(t, first.CanNext)
}

func TestPaginateClampsShrunkenSet(t *testing.T) {
	rows := numberedRows(45)
	page := Page{Index: 2, Size: 20}

	res := Paginate(rows[:5], page)
	assert.Equal(t, 0, res.PageIndex)
	assert.Equal(t, rows[0:5], res.Rows)
	assert.False(t, res.CanPrev)
	assert.False(t, res.CanNext)

	res = Paginate(rows[:25], page)
	assert.Equal(t, 1, res.PageIndex)
	assert.Equal(t, rows[20:25], res.Rows)
}

func TestPaginateHugeIndex(t *testing.T) {
	rows := numberedRows(45)

	for _, index := range []int{math.MaxInt/20 + 1, math.MaxInt/10 + 1, math.MaxInt} {
		res := Paginate(rows, Page{Index: index, Size: 20})
		assert.Equal(t, 2, res.PageIndex, "index %d", index)
		assert.Equal(t, rows[40:45], res.Rows)
		assert.True(t, res.CanPrev)
		assert.False(t, res.CanNext)
	}
}

func TestWithPageSizeHugeIndex(t *testing.T) {
	s := NewViewState().WithPageIndex(math.MaxInt)

	s, err := s.WithPageSize(50)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Page.Index, 0)

	res := Paginate(numberedRows(45), s.Page)
	assert.Equal(t, 0, res.PageIndex)
	assert.Len(t, res.Rows, 45)
}

func TestPaginateEmpty(t *testing.T) {
	res := Paginate(nil, Page{Index: 3, Size: 10})
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.Rows)
	assert.Equal(t, 0, res.TotalCount)
	assert.Equal(t, 0, res.FirstRow)
	assert.False(t, res.CanPrev)
	assert.False(t, res.CanNext)
}

func TestPaginateExactMultiple(t *testing.T) {
	res := Paginate(numberedRows(40), Page{Index: 1, Size: 20})
	assert.Len(t, res.Rows, 20)
	assert.False(t, res.CanNext)
	assert.Equal(t, 2, res.PageCount)
}

func TestToggleSortFlipsOnlyThatKey(t *testing.T) {
	s := NewViewState()

	s, err := s.ToggleSort(FieldRSRating)
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: FieldStatus}, {Field: FieldRSRating}}, s.SortKeys)

	s, err = s.ToggleSort(FieldPrice)
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: FieldStatus}, {Field: FieldRSRating}, {Field: FieldPrice}}, s.SortKeys)

	s, err = s.ToggleSort(FieldStatus)
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: FieldStatus, Desc: true}, {Field: FieldRSRating}, {Field: FieldPrice}}, s.SortKeys)

	_, err = s.ToggleSort("sector")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := NewViewState()
	next, err := s.ToggleSort(FieldStatus)
	require.NoError(t, err)
	expanded := next.ToggleExpanded("2330.TW")

	assert.Equal(t, DefaultSortKeys(), s.SortKeys)
	assert.False(t, next.IsExpanded("2330.TW"))
	assert.True(t, expanded.IsExpanded("2330.TW"))
}

func TestToggleExpandedIsPerRow(t *testing.T) {
	s := NewViewState().ToggleExpanded("A").ToggleExpanded("B")
	assert.Equal(t, []string{"A", "B"}, s.ExpandedIDs())

	s = s.ToggleExpanded("A")
	assert.False(t, s.IsExpanded("A"))
	assert.True(t, s.IsExpanded("B"))
}

func TestFilterTransitionsRewindPage(t *testing.T) {
	s := NewViewState().WithPageIndex(4)
	assert.Equal(t, 0, s.WithSearch("tsmc").Page.Index)
	assert.Equal(t, 0, s.WithPassOnly(true).Page.Index)
	assert.Equal(t, 0, NewViewState().WithPageIndex(-3).Page.Index)
	assert.Equal(t, 5, s.NextPage().Page.Index)
	assert.Equal(t, 3, s.PrevPage().Page.Index)
}

func TestWithPageSizeKeepsFirstVisibleRow(t *testing.T) {
	s := NewViewState().WithPageIndex(3) // rows 30..39 at size 10

	s, err := s.WithPageSize(20)
	require.NoError(t, err)
	assert.Equal(t, Page{Index: 1, Size: 20}, s.Page) // rows 20..39

	s, err = s.WithPageSize(50)
	require.NoError(t, err)
	assert.Equal(t, Page{Index: 0, Size: 50}, s.Page)

	_, err = s.WithPageSize(25)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestReconcileAdoptsClampedIndex(t *testing.T) {
	s := NewViewState().WithPageIndex(7)
	res := Paginate(numberedRows(15), s.Page)
	s = s.Reconcile(res)
	assert.Equal(t, 1, s.Page.Index)
}
