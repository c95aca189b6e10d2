package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		order string
		want  []SortKey
	}{
		{name: "empty", raw: "", order: "", want: nil},
		{name: "default ascending", raw: "tag", want: []SortKey{{Field: "tag", Direction: Asc}}},
		{name: "order param", raw: "tag", order: "DESC", want: []SortKey{{Field: "tag", Direction: Desc}}},
		{
			name:  "prefixes win over order",
			raw:   "-born, +tag,status",
			order: "desc",
			want: []SortKey{
				{Field: "born", Direction: Desc},
				{Field: "tag", Direction: Asc},
				{Field: "status", Direction: Desc},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSort(tt.raw, tt.order))
		})
	}
}

func TestToggleSortFlipsSameFieldAndResetsOnNewField(t *testing.T) {
	v := NewViewState(10)
	v.SetPage(3, 100)
	require.Equal(t, 3, v.Page)

	v.ToggleSort("tag")
	assert.Equal(t, []SortKey{{Field: "tag", Direction: Asc}}, v.Sort)
	assert.Equal(t, 1, v.Page)

	v.SetPage(2, 100)
	v.ToggleSort("tag")
	assert.Equal(t, Desc, v.Sort[0].Direction)
	assert.Equal(t, 2, v.Page)

	v.ToggleSort("tag")
	assert.Equal(t, Asc, v.Sort[0].Direction)

	v.ToggleSort("born")
	assert.Equal(t, []SortKey{{Field: "born", Direction: Asc}}, v.Sort)
	assert.Equal(t, 1, v.Page)
}

func TestQueryAndPageSizeChangesResetPage(t *testing.T) {
	v := NewViewState(0)
	assert.Equal(t, DefaultPageSize, v.PageSize)

	v.SetPage(4, 100)
	v.SetQuery("sow")
	assert.Equal(t, 1, v.Page)

	v.SetPage(4, 100)
	v.SetPageSize(25)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 25, v.PageSize)
}

func TestSyncClampsAfterResultShrinks(t *testing.T) {
	v := NewViewState(10)
	v.SetPage(5, 50)
	require.Equal(t, 5, v.Page)

	v.Sync(12)
	assert.Equal(t, 2, v.Page)

	v.Sync(0)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, Params{Page: 1, PageSize: 10}, v.Params())
}

func TestRowsRendersCellsByKind(t *testing.T) {
	header, rows := animalSchema().Rows(herd()[:2])

	assert.Equal(t, []string{"tag", "status", "born", "weight", "litter"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"S-003", "ACTIVE", "2021-03-01", 1.4, float64(10)}, rows[0])
	assert.Equal(t, []any{"S-001", "PREGNANT", "2020-01-15", "", float64(12)}, rows[1])
}
