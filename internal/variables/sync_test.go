package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/paginate"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

func queryColumn(name, variable string) types.ColumnConfig {
	return types.ColumnConfig{
		Field: types.FieldSource{Source: "A", Name: name},
		Filter: types.FilterConfig{
			Enabled:  true,
			Mode:     types.FilterModeQuery,
			Variable: variable,
		},
	}
}

func TestVariableColumnFilters(t *testing.T) {
	columns := []types.ColumnConfig{
		queryColumn("service", "service"),
		queryColumn("level", "levels"),
		queryColumn("host", "host"),
		{
			// Client-mode columns never derive from variables.
			Field:  types.FieldSource{Source: "A", Name: "local"},
			Filter: types.FilterConfig{Enabled: true, Mode: types.FilterModeClient},
		},
	}
	vars := []Variable{
		{Name: "service", Type: TypeTextbox, Current: Option{Value: []string{"checkout"}}},
		{Name: "levels", Type: TypeCustom, Multi: true, Current: Option{Value: []string{"error", "warn"}}},
		{Name: "host", Type: TypeDatasource, Current: Option{Value: []string{"db-1"}}},
	}

	filters := VariableColumnFilters(columns, vars)
	require.Len(t, filters, 3, "one entry per query-mode column")

	require.NotNil(t, filters[0].Value)
	assert.Equal(t, filtering.NewSearch("checkout", false), *filters[0].Value)

	require.NotNil(t, filters[1].Value)
	assert.Equal(t, filtering.NewFaceted([]string{"error", "warn"}), *filters[1].Value)

	assert.Equal(t, "A:host", filters[2].ID)
	assert.Nil(t, filters[2].Value, "unsupported variable kinds yield a clearing entry")
}

func TestVariableColumnFiltersMissingVariable(t *testing.T) {
	filters := VariableColumnFilters([]types.ColumnConfig{queryColumn("service", "gone")}, nil)
	require.Len(t, filters, 1)
	assert.Nil(t, filters[0].Value)
}

func TestFilterFromVariableEmptySelections(t *testing.T) {
	assert.Nil(t, filterFromVariable(Variable{Name: "v", Type: TypeTextbox}))
	assert.Nil(t, filterFromVariable(Variable{Name: "v", Type: TypeTextbox, Current: Option{Value: []string{""}}}))
	assert.Nil(t, filterFromVariable(Variable{Name: "v", Multi: true, Current: Option{Value: []string{"", ""}}}))
}

func TestMergeColumnFilters(t *testing.T) {
	search := func(text string) *filtering.Value {
		v := filtering.NewSearch(text, false)
		return &v
	}

	current := []filtering.ColumnFilter{
		{ID: "a", Value: search("manual-a")},
		{ID: "b", Value: search("manual-b")},
		{ID: "c", Value: search("manual-c")},
	}
	overrides := []filtering.ColumnFilter{
		{ID: "b", Value: search("var-b")},
		{ID: "c", Value: nil},
		{ID: "d", Value: search("var-d")},
	}

	merged := MergeColumnFilters(current, overrides)
	require.Len(t, merged, 3)

	// Untouched entries keep their position, replaced entries stay in
	// place, removed entries drop, new entries append.
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "manual-a", merged[0].Value.Search.Value)
	assert.Equal(t, "b", merged[1].ID)
	assert.Equal(t, "var-b", merged[1].Value.Search.Value)
	assert.Equal(t, "d", merged[2].ID)

	// Re-applying the same overrides changes nothing.
	assert.Equal(t, merged, MergeColumnFilters(merged, overrides))
}

type staticProvider struct{ vars []Variable }

func (p staticProvider) Variables() []Variable { return p.vars }

type recordingLocation struct{ params map[string]string }

func (l *recordingLocation) UpdateQueryParams(params map[string]string) {
	if l.params == nil {
		l.params = make(map[string]string)
	}
	for k, v := range params {
		l.params[k] = v
	}
}

func TestSynchronizerSync(t *testing.T) {
	provider := staticProvider{vars: []Variable{
		{Name: "service", Type: TypeTextbox, Current: Option{Value: []string{"checkout"}}},
	}}
	s := NewSynchronizer(zap.NewNop(), provider, nil)

	merged := s.Sync([]types.ColumnConfig{queryColumn("service", "service")}, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "checkout", merged[0].Value.Search.Value)
}

func TestSaveQueryFilter(t *testing.T) {
	location := &recordingLocation{}
	s := NewSynchronizer(zap.NewNop(), staticProvider{}, location)
	col := queryColumn("service", "service")

	search := filtering.NewSearch("checkout", false)
	s.SaveQueryFilter(col, &search)
	assert.Equal(t, "checkout", location.params["var-service"])

	faceted := filtering.NewFaceted([]string{"error", "warn"})
	s.SaveQueryFilter(col, &faceted)
	assert.Equal(t, "error,warn", location.params["var-service"])

	s.SaveQueryFilter(col, nil)
	assert.Equal(t, "", location.params["var-service"], "clearing writes the empty value")
}

func TestSavePageState(t *testing.T) {
	location := &recordingLocation{}
	s := NewSynchronizer(zap.NewNop(), staticProvider{}, location)

	cfg := types.PaginationConfig{
		Enabled: true,
		Mode:    types.PaginationQuery,
		Query: &types.QueryPaginationConfig{
			PageIndexVariable: "page",
			PageSizeVariable:  "size",
			OffsetVariable:    "offset",
		},
	}
	s.SavePageState(cfg, paginate.State{PageIndex: 2, PageSize: 25})

	assert.Equal(t, "2", location.params["var-page"])
	assert.Equal(t, "25", location.params["var-size"])
	assert.Equal(t, "50", location.params["var-offset"])
}

func TestSavePageStatePartialVariables(t *testing.T) {
	location := &recordingLocation{}
	s := NewSynchronizer(zap.NewNop(), staticProvider{}, location)

	cfg := types.PaginationConfig{
		Enabled: true,
		Mode:    types.PaginationQuery,
		Query:   &types.QueryPaginationConfig{PageIndexVariable: "page"},
	}
	s.SavePageState(cfg, paginate.State{PageIndex: 3, PageSize: 10})

	assert.Equal(t, map[string]string{"var-page": "3"}, location.params)
}

func TestSavePageStateClientMode(t *testing.T) {
	location := &recordingLocation{}
	s := NewSynchronizer(zap.NewNop(), staticProvider{}, location)

	cfg := types.PaginationConfig{Enabled: true, Mode: types.PaginationClient}
	s.SavePageState(cfg, paginate.State{PageIndex: 1, PageSize: 10})

	assert.Empty(t, location.params, "client paging never touches variables")
}

func TestNonMultiQueryVariableClears(t *testing.T) {
	columns := []types.ColumnConfig{queryColumn("service", "service")}
	vars := []Variable{
		{Name: "service", Type: TypeQuery, Current: Option{Value: []string{"checkout"}}},
	}

	filters := VariableColumnFilters(columns, vars)
	require.Len(t, filters, 1)
	assert.Nil(t, filters[0].Value, "query variables are not string-valued")
}
