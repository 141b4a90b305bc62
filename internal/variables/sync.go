package variables

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/paginate"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// VariableColumnFilters derives the filter entry for every query-mode
// filterable column from the current template variables. A column whose
// variable is missing, unsupported or empty still yields an entry with a
// nil value so a later merge clears any stale variable-derived filter.
func VariableColumnFilters(columns []types.ColumnConfig, vars []Variable) []filtering.ColumnFilter {
	out := make([]filtering.ColumnFilter, 0, len(columns))
	for _, col := range columns {
		if !col.Filter.Enabled || col.Filter.Mode != types.FilterModeQuery {
			continue
		}
		entry := filtering.ColumnFilter{ID: col.ID()}
		if v, ok := findVariable(vars, col.Filter.Variable); ok {
			entry.Value = filterFromVariable(v)
		}
		out = append(out, entry)
	}
	return out
}

// filterFromVariable maps a variable onto a filter value. Multi-value list
// variables become faceted filters; string-valued variables (custom
// strings, constants, textboxes) become search filters; other kinds are
// unsupported and stay nil.
func filterFromVariable(v Variable) *filtering.Value {
	if v.Multi {
		selected := nonEmpty(v.Current.Value)
		if len(selected) == 0 {
			return nil
		}
		value := filtering.NewFaceted(selected)
		return &value
	}
	switch v.Type {
	case TypeConstant, TypeTextbox, TypeCustom:
		if len(v.Current.Value) == 0 || v.Current.Value[0] == "" {
			return nil
		}
		value := filtering.NewSearch(v.Current.Value[0], false)
		return &value
	default:
		return nil
	}
}

// MergeColumnFilters overlays the override entries onto the current filter
// set, keyed by column id. A defined override replaces the current entry
// in place; a nil override removes it; unrelated entries keep their order.
// Re-applying the same overrides is a no-op.
func MergeColumnFilters(current, overrides []filtering.ColumnFilter) []filtering.ColumnFilter {
	overrideByID := make(map[string]filtering.ColumnFilter, len(overrides))
	for _, ov := range overrides {
		overrideByID[ov.ID] = ov
	}

	out := make([]filtering.ColumnFilter, 0, len(current)+len(overrides))
	applied := make(map[string]struct{}, len(overrides))
	for _, cur := range current {
		ov, ok := overrideByID[cur.ID]
		if !ok {
			out = append(out, cur)
			continue
		}
		applied[cur.ID] = struct{}{}
		if ov.Value != nil {
			out = append(out, ov)
		}
	}
	for _, ov := range overrides {
		if _, done := applied[ov.ID]; done {
			continue
		}
		if ov.Value != nil {
			out = append(out, ov)
		}
	}
	return out
}

// Synchronizer reconstitutes variable-derived filters on mount and on each
// host refresh signal, merging them atop the user's manual filter state.
// Resync is pure recomputation and never feeds back into refresh, so every
// trigger runs a full pass.
type Synchronizer struct {
	provider Provider
	location LocationService
	logger   *zap.Logger
}

func NewSynchronizer(log *zap.Logger, provider Provider, location LocationService) *Synchronizer {
	return &Synchronizer{
		provider: provider,
		location: location,
		logger:   log,
	}
}

// Sync recomputes the variable-derived filter set and merges it onto the
// current filters. The returned slice is the new filter state.
func (s *Synchronizer) Sync(columns []types.ColumnConfig, current []filtering.ColumnFilter) []filtering.ColumnFilter {
	overrides := VariableColumnFilters(columns, s.provider.Variables())
	merged := MergeColumnFilters(current, overrides)
	s.logger.Debug("Synchronized column filters from variables",
		zap.Int("overrides", len(overrides)),
		zap.Int("merged", len(merged)))
	return merged
}

// SaveQueryFilter pushes a filter value into the column's backing template
// variable via query params. A nil value clears the variable.
func (s *Synchronizer) SaveQueryFilter(col types.ColumnConfig, value *filtering.Value) {
	if s.location == nil || col.Filter.Variable == "" {
		return
	}
	param := "var-" + col.Filter.Variable
	s.location.UpdateQueryParams(map[string]string{param: encodeFilterValue(value)})
}

// SavePageState pushes query-mode page state into the configured template
// variables via query params, so the datasource query can re-run with the
// requested page.
func (s *Synchronizer) SavePageState(cfg types.PaginationConfig, page paginate.State) {
	if s.location == nil || cfg.Mode != types.PaginationQuery || cfg.Query == nil {
		return
	}
	params := make(map[string]string, 3)
	if name := cfg.Query.PageIndexVariable; name != "" {
		params["var-"+name] = strconv.Itoa(page.PageIndex)
	}
	if name := cfg.Query.PageSizeVariable; name != "" {
		params["var-"+name] = strconv.Itoa(page.PageSize)
	}
	if name := cfg.Query.OffsetVariable; name != "" {
		params["var-"+name] = strconv.Itoa(page.PageIndex * page.PageSize)
	}
	if len(params) == 0 {
		return
	}
	s.location.UpdateQueryParams(params)
}

func encodeFilterValue(value *filtering.Value) string {
	if value == nil {
		return ""
	}
	switch value.Type {
	case filtering.TypeSearch:
		if value.Search == nil {
			return ""
		}
		return value.Search.Value
	case filtering.TypeFaceted:
		if value.Faceted == nil {
			return ""
		}
		return strings.Join(value.Faceted.Value, ",")
	default:
		return ""
	}
}
