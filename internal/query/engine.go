// Package query is the list engine shared by every entity screen: substring
// filter over configured fields, typed multi-key stable sort and pagination,
// always composed in that order.
package query

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/pigfarm/internal/apperror"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 500
)

// Kind is the declared value kind of a field; it picks the comparator.
type Kind int

const (
	String Kind = iota
	Number
	Date
)

// Field describes one sortable/searchable attribute of T.
type Field[T any] struct {
	Name       string
	Kind       Kind
	Searchable bool
	Value      func(T) any
}

// Direction of a sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey names a field and a direction.
type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Params is one list request.
type Params struct {
	Query    string
	Sort     []SortKey
	Page     int
	PageSize int
}

// Page is the paginated result of a list request.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// Schema binds the field set of one entity.
type Schema[T any] struct {
	fields []Field[T]
	byName map[string]Field[T]
	lang   language.Tag
}

// NewSchema builds a schema. String fields are collated with the root locale
// unless WithLanguage is used.
func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	byName := make(map[string]Field[T], len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return &Schema[T]{fields: fields, byName: byName, lang: language.Und}
}

// WithLanguage sets the collation locale for string fields.
func (s *Schema[T]) WithLanguage(tag language.Tag) *Schema[T] {
	s.lang = tag
	return s
}

// Fields returns the declared fields in order.
func (s *Schema[T]) Fields() []Field[T] {
	return s.fields
}

// Searchable returns the fields used by the filter.
func (s *Schema[T]) Searchable() []Field[T] {
	out := make([]Field[T], 0, len(s.fields))
	for _, f := range s.fields {
		if f.Searchable {
			out = append(out, f)
		}
	}
	return out
}

// Run filters and sorts without paginating.
func (s *Schema[T]) Run(records []T, q string, keys []SortKey) ([]T, error) {
	by := make([]SortBy[T], 0, len(keys))
	for _, k := range keys {
		f, ok := s.byName[k.Field]
		if !ok {
			return nil, apperror.Field("sort", "unknown sort field "+k.Field)
		}
		by = append(by, SortBy[T]{Field: f, Direction: k.Direction})
	}

	filtered := Filter(records, q, s.Searchable())
	return sortWith(filtered, by, s.lang), nil
}

// Apply runs filter, sort and paginate. The requested page is clamped to the
// range the filtered set actually has.
func (s *Schema[T]) Apply(records []T, p Params) (Page[T], error) {
	sorted, err := s.Run(records, p.Query, p.Sort)
	if err != nil {
		return Page[T]{}, err
	}

	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(sorted)
	page := ClampPage(p.Page, total, size)

	return Page[T]{
		Items:      Paginate(sorted, page, size),
		Total:      total,
		TotalPages: TotalPages(total, size),
		Page:       page,
		PageSize:   size,
	}, nil
}

// Filter keeps records where any field's string form contains q, ignoring
// case. An empty query keeps everything. Order is preserved.
func Filter[T any](records []T, q string, fields []Field[T]) []T {
	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if needle == "" || matches(r, needle, fields) {
			out = append(out, r)
		}
	}
	return out
}

func matches[T any](r T, needle string, fields []Field[T]) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(Stringify(f.Value(r))), needle) {
			return true
		}
	}
	return false
}

// SortBy is a resolved sort key.
type SortBy[T any] struct {
	Field     Field[T]
	Direction Direction
}

// Sort returns a stably sorted copy of records ordered by one field.
func Sort[T any](records []T, field Field[T], dir Direction) []T {
	return sortWith(records, []SortBy[T]{{Field: field, Direction: dir}}, language.Und)
}

// SortMulti returns a stably sorted copy ordered by several keys in turn.
func SortMulti[T any](records []T, keys ...SortBy[T]) []T {
	return sortWith(records, keys, language.Und)
}

func sortWith[T any](records []T, keys []SortBy[T], lang language.Tag) []T {
	out := slices.Clone(records)
	if out == nil {
		out = make([]T, 0)
	}
	if len(keys) == 0 {
		return out
	}

	// Collators keep internal buffers; one per sort call.
	col := collate.New(lang)
	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range keys {
			c := compareField(a, b, k.Field, col)
			if k.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func compareField[T any](a, b T, f Field[T], col *collate.Collator) int {
	va, vb := f.Value(a), f.Value(b)
	if f.Kind == String {
		return col.CompareString(Stringify(va), Stringify(vb))
	}

	na, okA := Numeric(va)
	nb, okB := Numeric(vb)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	default:
		return cmp.Compare(na, nb)
	}
}

// Paginate returns records[(page-1)*size : page*size], bounded to the slice.
func Paginate[T any](records []T, page, size int) []T {
	if size <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(records) {
		return records[len(records):]
	}
	end := min(start+size, len(records))
	return records[start:end]
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within [1, TotalPages] so a shrinking result set never
// lands on an empty page.
func ClampPage(page, total, size int) int {
	last := TotalPages(total, size)
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Stringify renders a field value for searching and string comparison.
func Stringify(v any) string {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	default:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.String {
			return rv.String()
		}
		return fmt.Sprint(x)
	}
}

// Numeric converts numeric and date values to float64; dates become epoch ms.
func Numeric(v any) (float64, bool) {
	v = deref(v)
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return 0, false
		}
		return float64(x.UnixMilli()), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
