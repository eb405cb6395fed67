package table

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ViewState is everything the user controls about the table. Transitions
// return a new value and never modify the receiver, so a ViewState can be
// shared between the host and a memoized pipeline.
type ViewState struct {
	SearchText string    `json:"search_text"`
	PassOnly   bool      `json:"pass_only"`
	SortKeys   []SortKey `json:"sort_keys"`
	Page       Page      `json:"page"`

	expanded map[string]struct{}
}

// NewViewState returns the state a freshly mounted table starts with
func NewViewState() ViewState {
	return ViewState{
		SortKeys: DefaultSortKeys(),
		Page:     Page{Index: 0, Size: DefaultPageSize},
	}
}

// WithSearch sets the search text. The working set may shrink, so the
// cursor goes back to the first page.
func (v ViewState) WithSearch(text string) ViewState {
	v.SearchText = text
	v.Page.Index = 0
	return v
}

// WithPassOnly sets the pass-only toggle and rewinds to the first page.
func (v ViewState) WithPassOnly(on bool) ViewState {
	v.PassOnly = on
	v.Page.Index = 0
	return v
}

// ToggleSort flips the direction of field's key, or appends it ascending when
// the field is not sorted yet. Other keys keep their position and direction.
func (v ViewState) ToggleSort(field Field) (ViewState, error) {
	if !field.Valid() {
		return v, errors.Wrapf(ErrUnknownField, "%q", field)
	}
	keys := make([]SortKey, len(v.SortKeys), len(v.SortKeys)+1)
	copy(keys, v.SortKeys)
	found := false
	for i := range keys {
		if keys[i].Field == field {
			keys[i].Desc = !keys[i].Desc
			found = true
			break
		}
	}
	if !found {
		keys = append(keys, SortKey{Field: field})
	}
	v.SortKeys = keys
	return v, nil
}

// WithSortKeys replaces the whole key list
func (v ViewState) WithSortKeys(keys []SortKey) (ViewState, error) {
	for _, k := range keys {
		if !k.Field.Valid() {
			return v, errors.Wrapf(ErrUnknownField, "%q", k.Field)
		}
	}
	v.SortKeys = append([]SortKey(nil), keys...)
	return v, nil
}

// ToggleExpanded adds or removes id from the expanded set without touching
// any other row's membership.
func (v ViewState) ToggleExpanded(id string) ViewState {
	next := make(map[string]struct{}, len(v.expanded)+1)
	for k := range v.expanded {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	v.expanded = next
	return v
}

// IsExpanded reports whether row id is expanded
func (v ViewState) IsExpanded(id string) bool {
	_, ok := v.expanded[id]
	return ok
}

// ExpandedIDs lists expanded row ids in sorted order
func (v ViewState) ExpandedIDs() []string {
	ids := make([]string, 0, len(v.expanded))
	for id := range v.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithPageIndex moves the cursor. Negative indexes become 0; indexes past the
// end are clamped by Paginate.
func (v ViewState) WithPageIndex(index int) ViewState {
	if index < 0 {
		index = 0
	}
	v.Page.Index = index
	return v
}

// NextPage advances the cursor by one page
func (v ViewState) NextPage() ViewState { return v.WithPageIndex(v.Page.Index + 1) }

// PrevPage moves the cursor back one page
func (v ViewState) PrevPage() ViewState { return v.WithPageIndex(v.Page.Index - 1) }

// WithPageSize changes the page size and re-derives the index so the first
// row that was visible stays visible.
func (v ViewState) WithPageSize(size int) (ViewState, error) {
	if !ValidPageSize(size) {
		return v, errors.Wrapf(ErrInvalidPageSize, "%d", size)
	}
	oldSize := v.Page.Size
	if oldSize <= 0 {
		oldSize = DefaultPageSize
	}
	// an index this large is past any row set; Paginate clamps it anyway
	index := v.Page.Index
	if index > math.MaxInt/oldSize {
		index = math.MaxInt / oldSize
	}
	first := index * oldSize
	v.Page = Page{Index: first / size, Size: size}
	return v, nil
}

// Reconcile adopts the index Paginate actually used, so a clamped cursor
// does not jump back once the working set grows again.
func (v ViewState) Reconcile(res PageResult) ViewState {
	v.Page.Index = res.PageIndex
	return v
}
