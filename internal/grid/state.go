package grid

import (
	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/paginate"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// SortState is the active sorting of one column.
type SortState struct {
	ColumnID string `json:"columnId"`
	Desc     bool   `json:"desc"`
}

// PinState lists the columns pinned to each edge.
type PinState struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// State is the transient runtime state of one grid instance. The persisted
// table configuration is immutable input owned by the host; everything a
// user changes at render time lives here and is mutated only through the
// engine's callbacks.
type State struct {
	Sorting  []SortState              `json:"sorting"`
	Filters  []filtering.ColumnFilter `json:"filters"`
	Pinning  PinState                 `json:"pinning"`
	Expanded map[string]bool          `json:"expanded"`
	Page     paginate.State           `json:"page"`
}

// NewState seeds the runtime state from the table configuration: default
// client filters, configured pinning and the default page size.
func NewState(cfg types.TableConfig) *State {
	s := &State{
		Expanded: make(map[string]bool),
	}

	for _, col := range cfg.Items {
		if col.Filter.Enabled && col.Filter.Mode == types.FilterModeClient && col.Filter.DefaultClientValue != nil {
			value := *col.Filter.DefaultClientValue
			s.Filters = append(s.Filters, filtering.ColumnFilter{ID: col.ID(), Value: &value})
		}
		switch col.Pin {
		case types.PinLeft:
			s.Pinning.Left = append(s.Pinning.Left, col.ID())
		case types.PinRight:
			s.Pinning.Right = append(s.Pinning.Right, col.ID())
		}
	}

	if cfg.Pagination.Enabled {
		size := cfg.Pagination.DefaultPageSize
		if size <= 0 {
			size = paginate.DefaultPageSize
		}
		s.Page = paginate.State{PageIndex: 0, PageSize: size}
	}
	return s
}

// Filter returns the active filter value for a column.
func (s *State) Filter(columnID string) (*filtering.Value, bool) {
	for _, f := range s.Filters {
		if f.ID == columnID {
			return f.Value, f.Value != nil
		}
	}
	return nil, false
}

// SetFilter replaces the column's filter entry in place, appends a new
// one, or removes it when value is nil.
func (s *State) SetFilter(columnID string, value *filtering.Value) {
	for i, f := range s.Filters {
		if f.ID != columnID {
			continue
		}
		if value == nil {
			s.Filters = append(s.Filters[:i], s.Filters[i+1:]...)
		} else {
			s.Filters[i].Value = value
		}
		return
	}
	if value != nil {
		s.Filters = append(s.Filters, filtering.ColumnFilter{ID: columnID, Value: value})
	}
}
