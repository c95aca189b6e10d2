package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pigfarm/internal/apperror"
)

type animal struct {
	Tag    string
	Status string
	Born   time.Time
	Weight *float64
	Litter int
}

func weight(v float64) *float64 { return &v }

func animalSchema() *Schema[animal] {
	return NewSchema(
		Field[animal]{Name: "tag", Kind: String, Searchable: true, Value: func(a animal) any { return a.Tag }},
		Field[animal]{Name: "status", Kind: String, Searchable: true, Value: func(a animal) any { return a.Status }},
		Field[animal]{Name: "born", Kind: Date, Searchable: true, Value: func(a animal) any { return a.Born }},
		Field[animal]{Name: "weight", Kind: Number, Value: func(a animal) any { return a.Weight }},
		Field[animal]{Name: "litter", Kind: Number, Value: func(a animal) any { return a.Litter }},
	)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func herd() []animal {
	return []animal{
		{Tag: "S-003", Status: "ACTIVE", Born: day(2021, 3, 1), Weight: weight(1.4), Litter: 10},
		{Tag: "S-001", Status: "PREGNANT", Born: day(2020, 1, 15), Weight: nil, Litter: 12},
		{Tag: "s-010", Status: "ACTIVE", Born: day(2022, 6, 30), Weight: weight(1.2), Litter: 9},
		{Tag: "S-002", Status: "LACTATING", Born: day(2020, 1, 15), Weight: weight(1.4), Litter: 12},
	}
}

func tags(items []animal) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Tag)
	}
	return out
}

func TestFilterIsCaseInsensitiveAndKeepsOrder(t *testing.T) {
	s := animalSchema()

	got := Filter(herd(), "active", s.Searchable())
	assert.Equal(t, []string{"S-003", "s-010"}, tags(got))

	got = Filter(herd(), "  S-0 ", s.Searchable())
	assert.Equal(t, []string{"S-003", "S-001", "s-010", "S-002"}, tags(got))

	got = Filter(herd(), "2020-01-15", s.Searchable())
	assert.Equal(t, []string{"S-001", "S-002"}, tags(got))

	assert.Len(t, Filter(herd(), "", s.Searchable()), 4)
	assert.Empty(t, Filter(herd(), "boar", s.Searchable()))
}

func TestFilterSkipsFieldsThatAreNotSearchable(t *testing.T) {
	s := animalSchema()
	assert.Empty(t, Filter(herd(), "12", s.Searchable()))
}

func TestSortIsStable(t *testing.T) {
	s := animalSchema()

	sorted, err := s.Run(herd(), "", []SortKey{{Field: "born", Direction: Asc}})
	require.NoError(t, err)
	// S-001 and S-002 share a birth date; input order decides.
	assert.Equal(t, []string{"S-001", "S-002", "S-003", "s-010"}, tags(sorted))

	again, err := s.Run(sorted, "", []SortKey{{Field: "born", Direction: Asc}})
	require.NoError(t, err)
	assert.Equal(t, tags(sorted), tags(again))
}

func TestSortDirectionRoundTripKeepsTiesInFilteredOrder(t *testing.T) {
	s := animalSchema()
	asc := []SortKey{{Field: "litter", Direction: Asc}}
	desc := []SortKey{{Field: "litter", Direction: Desc}}

	filtered, err := s.Run(herd(), "s-0", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"S-003", "S-001", "s-010", "S-002"}, tags(filtered))

	first, err := s.Run(filtered, "", asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-010", "S-003", "S-001", "S-002"}, tags(first))

	down, err := s.Run(first, "", desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"S-001", "S-002", "S-003", "s-010"}, tags(down))

	back, err := s.Run(down, "", asc)
	require.NoError(t, err)
	assert.Equal(t, tags(first), tags(back))

	fresh, err := s.Run(herd(), "s-0", asc)
	require.NoError(t, err)
	assert.Equal(t, tags(first), tags(fresh))
}

func TestSortDescendingReversesDistinctKeys(t *testing.T) {
	s := animalSchema()

	desc, err := s.Run(herd(), "", []SortKey{{Field: "litter", Direction: Desc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"S-001", "S-002", "S-003", "s-010"}, tags(desc))
}

func TestSortPutsMissingValuesFirstAscending(t *testing.T) {
	s := animalSchema()

	asc, err := s.Run(herd(), "", []SortKey{{Field: "weight", Direction: Asc}})
	require.NoError(t, err)
	assert.Equal(t, "S-001", asc[0].Tag)

	desc, err := s.Run(herd(), "", []SortKey{{Field: "weight", Direction: Desc}})
	require.NoError(t, err)
	assert.Equal(t, "S-001", desc[len(desc)-1].Tag)
}

func TestSortNumbersAreNotComparedAsStrings(t *testing.T) {
	items := []animal{{Tag: "a", Litter: 10}, {Tag: "b", Litter: 9}, {Tag: "c", Litter: 100}}
	s := animalSchema()

	sorted, err := s.Run(items, "", []SortKey{{Field: "litter", Direction: Asc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, tags(sorted))
}

func TestSortStringsUseCollation(t *testing.T) {
	s := animalSchema()

	sorted, err := s.Run(herd(), "", []SortKey{{Field: "tag", Direction: Asc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"S-001", "S-002", "S-003", "s-010"}, tags(sorted))
}

func TestMultiKeySort(t *testing.T) {
	s := animalSchema()

	sorted, err := s.Run(herd(), "", []SortKey{
		{Field: "litter", Direction: Desc},
		{Field: "tag", Direction: Desc},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S-002", "S-001", "S-003", "s-010"}, tags(sorted))
}

func TestUnknownSortFieldIsAValidationError(t *testing.T) {
	_, err := animalSchema().Run(herd(), "", []SortKey{{Field: "colour", Direction: Asc}})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := herd()
	_, err := animalSchema().Run(in, "", []SortKey{{Field: "tag", Direction: Desc}})
	require.NoError(t, err)
	assert.Equal(t, tags(herd()), tags(in))
}

func TestPaginateCoversEveryRecordExactlyOnce(t *testing.T) {
	records := make([]int, 23)
	for i := range records {
		records[i] = i
	}

	for _, size := range []int{1, 5, 10, 23, 50} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			seen := make([]int, 0, len(records))
			pages := TotalPages(len(records), size)
			for p := 1; p <= pages; p++ {
				chunk := Paginate(records, p, size)
				assert.LessOrEqual(t, len(chunk), size)
				seen = append(seen, chunk...)
			}
			assert.Equal(t, records, seen)
		})
	}
}

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))

	assert.Equal(t, 1, ClampPage(5, 0, 10))
	assert.Equal(t, 3, ClampPage(9, 25, 10))
	assert.Equal(t, 1, ClampPage(-2, 25, 10))
	assert.Equal(t, 2, ClampPage(2, 25, 10))
}

func TestApplyComposesFilterSortPaginate(t *testing.T) {
	s := animalSchema()

	page, err := s.Apply(herd(), Params{
		Query:    "s-0",
		Sort:     []SortKey{{Field: "tag", Direction: Desc}},
		Page:     2,
		PageSize: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, []string{"S-001"}, tags(page.Items))
}

func TestApplyClampsPageAfterFilterShrinksResult(t *testing.T) {
	page, err := animalSchema().Apply(herd(), Params{Query: "lactating", Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, []string{"S-002"}, tags(page.Items))
}

func TestApplyOnEmptySet(t *testing.T) {
	page, err := animalSchema().Apply(nil, Params{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}
