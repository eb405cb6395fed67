package table

import (
	"github.com/jwaldner/mtts/internal/logger"
	"github.com/jwaldner/mtts/internal/models"
)

// Stages are the pure functions a Pipeline runs. Any nil stage falls back to
// the package default, which lets tests swap in a single instrumented stage.
type Stages struct {
	Filter   func(rows []models.StockData, passOnly bool, searchText string) []models.StockData
	Sort     func(rows []models.StockData, keys []SortKey) ([]models.StockData, error)
	Paginate func(rows []models.StockData, page Page) PageResult
}

// DefaultStages wires Filter, Sort and Paginate
func DefaultStages() Stages {
	return Stages{Filter: Filter, Sort: Sort, Paginate: Paginate}
}

// View is everything a host needs to render the table once
type View struct {
	Page      PageResult     `json:"page"`
	Rows      []PresentedRow `json:"rows"`
	Filtered  int            `json:"filtered"`
	Total     int            `json:"total"`
	PassCount int            `json:"pass_count"`
}

type filterMemo struct {
	valid    bool
	rowsGen  uint64
	passOnly bool
	search   string
	gen      uint64
	out      []models.StockData
}

type sortMemo struct {
	valid     bool
	filterGen uint64
	keys      []SortKey
	gen       uint64
	out       []models.StockData
}

type pageMemo struct {
	valid   bool
	sortGen uint64
	page    Page
	out     PageResult
}

// Pipeline runs filter -> sort -> paginate -> present over one row set and
// memoizes each stage on its inputs. It is not safe for concurrent use; hosts
// drive it from their single event loop.
type Pipeline struct {
	stages Stages
	rows   []models.StockData
	gen    uint64
	pass   int

	filter filterMemo
	sorted sortMemo
	page   pageMemo
}

// NewPipeline builds a pipeline over rows with the given stages
func NewPipeline(rows []models.StockData, stages Stages) *Pipeline {
	def := DefaultStages()
	if stages.Filter == nil {
		stages.Filter = def.Filter
	}
	if stages.Sort == nil {
		stages.Sort = def.Sort
	}
	if stages.Paginate == nil {
		stages.Paginate = def.Paginate
	}
	p := &Pipeline{stages: stages}
	p.Load(rows)
	return p
}

// Load replaces the whole row set and drops every memoized stage.
func (p *Pipeline) Load(rows []models.StockData) {
	p.rows = rows
	p.gen++
	p.pass = 0
	for i := range rows {
		if rows[i].Status == models.StatusPass {
			p.pass++
		}
	}
	p.filter.valid = false
	p.sorted.valid = false
	p.page.valid = false
	logger.Debug.Printf("table: loaded %d rows (generation %d)", len(rows), p.gen)
}

func sameKeys(a, b []SortKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *Pipeline) filtered(state ViewState) ([]models.StockData, uint64) {
	m := &p.filter
	if !m.valid || m.rowsGen != p.gen || m.passOnly != state.PassOnly || m.search != state.SearchText {
		m.out = p.stages.Filter(p.rows, state.PassOnly, state.SearchText)
		logger.Verbose.Printf("table: filter pass=%t search=%q kept %d of %d", state.PassOnly, state.SearchText, len(m.out), len(p.rows))
		m.rowsGen, m.passOnly, m.search = p.gen, state.PassOnly, state.SearchText
		m.gen++
		m.valid = true
	}
	return m.out, m.gen
}

func (p *Pipeline) sortedRows(state ViewState) ([]models.StockData, uint64, error) {
	in, filterGen := p.filtered(state)
	m := &p.sorted
	if !m.valid || m.filterGen != filterGen || !sameKeys(m.keys, state.SortKeys) {
		out, err := p.stages.Sort(in, state.SortKeys)
		if err != nil {
			m.valid = false
			return nil, 0, err
		}
		m.out = out
		m.filterGen = filterGen
		m.keys = append([]SortKey(nil), state.SortKeys...)
		m.gen++
		m.valid = true
	}
	return m.out, m.gen, nil
}

// Sorted returns the filtered and sorted working set, e.g. for export.
func (p *Pipeline) Sorted(state ViewState) ([]models.StockData, error) {
	out, _, err := p.sortedRows(state)
	return out, err
}

// PageOf returns the current page without presenting it
func (p *Pipeline) PageOf(state ViewState) (PageResult, error) {
	in, sortGen, err := p.sortedRows(state)
	if err != nil {
		return PageResult{}, err
	}
	m := &p.page
	if !m.valid || m.sortGen != sortGen || m.page != state.Page {
		m.out = p.stages.Paginate(in, state.Page)
		m.sortGen, m.page = sortGen, state.Page
		m.valid = true
	}
	return m.out, nil
}

// Run computes the rendered view for state. Expanded rows on the page also
// carry their expansion panel.
func (p *Pipeline) Run(state ViewState) (View, error) {
	page, err := p.PageOf(state)
	if err != nil {
		return View{}, err
	}
	rows := make([]PresentedRow, 0, len(page.Rows))
	for _, r := range page.Rows {
		expanded := state.IsExpanded(RowID(&r))
		pr, err := Present(r, expanded)
		if err != nil {
			return View{}, err
		}
		if expanded {
			panel, err := PresentExpansion(r)
			if err != nil {
				return View{}, err
			}
			pr.Expansion = &panel
		}
		rows = append(rows, pr)
	}
	return View{
		Page:      page,
		Rows:      rows,
		Filtered:  page.TotalCount,
		Total:     len(p.rows),
		PassCount: p.pass,
	}, nil
}
