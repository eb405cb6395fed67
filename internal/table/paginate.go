package table

import "github.com/jwaldner/mtts/internal/models"

// PageSizeOptions are the page sizes a host may offer
var PageSizeOptions = []int{10, 20, 30, 40, 50}

// DefaultPageSize is the size a fresh ViewState starts with
const DefaultPageSize = 10

// ValidPageSize reports whether size is one of PageSizeOptions
func ValidPageSize(size int) bool {
	for _, s := range PageSizeOptions {
		if s == size {
			return true
		}
	}
	return false
}

// Page is the pagination cursor
type Page struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// PageResult is one page of the working set plus the numbers pagination
// controls need. FirstRow and LastRow are 1-based and 0 when empty.
type PageResult struct {
	Rows       []models.StockData `json:"rows"`
	PageIndex  int                `json:"page_index"`
	PageSize   int                `json:"page_size"`
	PageCount  int                `json:"page_count"`
	TotalCount int                `json:"total_count"`
	FirstRow   int                `json:"first_row"`
	LastRow    int                `json:"last_row"`
	CanPrev    bool               `json:"can_prev"`
	CanNext    bool               `json:"can_next"`
}

// Paginate slices rows for page. An index past the end of a non-empty set is
// clamped to the last page instead of producing a blank page.
func Paginate(rows []models.StockData, page Page) PageResult {
	size := page.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	res := PageResult{PageSize: size, TotalCount: total, Rows: []models.StockData{}}
	if total == 0 {
		return res
	}

	res.PageCount = (total + size - 1) / size
	index := page.Index
	if index < 0 {
		index = 0
	}
	if index >= res.PageCount {
		index = res.PageCount - 1
	}

	start := index * size
	end := start + size
	if end > total {
		end = total
	}
	res.PageIndex = index
	res.Rows = rows[start:end:end]
	res.FirstRow = start + 1
	res.LastRow = end
	res.CanPrev = index > 0
	res.CanNext = end < total
	return res
}
