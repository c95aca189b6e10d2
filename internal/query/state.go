package query

import (
	"strings"
	"time"
)

// ParseSort reads "status,-birthDate" style sort parameters. A leading '-'
// sorts descending, '+' ascending; keys without a prefix use defaultOrder.
func ParseSort(raw, defaultOrder string) []SortKey {
	dir := Asc
	if strings.EqualFold(strings.TrimSpace(defaultOrder), string(Desc)) {
		dir = Desc
	}

	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part[0] {
		case '-':
			keys = append(keys, SortKey{Field: part[1:], Direction: Desc})
		case '+':
			keys = append(keys, SortKey{Field: part[1:], Direction: Asc})
		default:
			keys = append(keys, SortKey{Field: part, Direction: dir})
		}
	}
	return keys
}

// ViewState is the list-screen state behind one table. Changing the query or
// the sort field resets to the first page; picking the current sort field
// again flips its direction.
type ViewState struct {
	Query    string
	Sort     []SortKey
	Page     int
	PageSize int
}

// NewViewState starts on page 1 with the given page size.
func NewViewState(pageSize int) *ViewState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ViewState{Page: 1, PageSize: pageSize}
}

// SetQuery replaces the filter text and goes back to page 1.
func (v *ViewState) SetQuery(q string) {
	v.Query = q
	v.Page = 1
}

// ToggleSort sorts by field ascending, or flips the direction when field is
// already the primary key.
func (v *ViewState) ToggleSort(field string) {
	if len(v.Sort) > 0 && v.Sort[0].Field == field {
		if v.Sort[0].Direction == Asc {
			v.Sort[0].Direction = Desc
		} else {
			v.Sort[0].Direction = Asc
		}
		return
	}
	v.Sort = []SortKey{{Field: field, Direction: Asc}}
	v.Page = 1
}

// SetPageSize changes the page size and goes back to page 1.
func (v *ViewState) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.PageSize = size
	v.Page = 1
}

// SetPage moves to page, clamped against the current result size.
func (v *ViewState) SetPage(page, total int) {
	v.Page = ClampPage(page, total, v.PageSize)
}

// Sync re-clamps the page after the result size changed.
func (v *ViewState) Sync(total int) {
	v.Page = ClampPage(v.Page, total, v.PageSize)
}

// Params converts the state into a list request.
func (v *ViewState) Params() Params {
	return Params{Query: v.Query, Sort: v.Sort, Page: v.Page, PageSize: v.PageSize}
}

// Rows renders records as a header plus one row per record, using every
// schema field in declaration order. Used by spreadsheet export.
func (s *Schema[T]) Rows(records []T) ([]string, [][]any) {
	header := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		header = append(header, f.Name)
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		row := make([]any, 0, len(s.fields))
		for _, f := range s.fields {
			row = append(row, cell(f, r))
		}
		rows = append(rows, row)
	}
	return header, rows
}

func cell[T any](f Field[T], r T) any {
	v := deref(f.Value(r))
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	}
	if n, ok := Numeric(v); ok && f.Kind != String {
		return n
	}
	return Stringify(v)
}
