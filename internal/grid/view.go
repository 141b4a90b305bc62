package grid

import (
	"fmt"
	"strconv"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/paginate"
	"github.com/gridworks/datagrid-panel/pkg/types"
	"github.com/gridworks/datagrid-panel/pkg/virtual"
)

// SortOrder is the rendered sort indicator of a header cell.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// HeaderCell is the render model of one header cell.
type HeaderCell struct {
	ID           string                `json:"id"`
	Label        string                `json:"label"`
	Sortable     bool                  `json:"sortable"`
	Sort         SortOrder             `json:"sort,omitempty"`
	Filterable   bool                  `json:"filterable"`
	FilterActive bool                  `json:"filterActive"`
	Pin          types.ColumnPin       `json:"pin,omitempty"`
	PinOffset    float64               `json:"pinOffset"`
	Width        float64               `json:"width"`
	Alignment    types.ColumnAlignment `json:"alignment,omitempty"`
	Background   string                `json:"background,omitempty"`
	Color        string                `json:"color,omitempty"`
	FontSize     string                `json:"fontSize,omitempty"`
}

// Cell is the render model of one body or footer cell. A cell whose value
// is missing renders with empty text; the grid never fails on partially
// invalid configuration.
type Cell struct {
	ColumnID   string          `json:"columnId"`
	Type       types.CellType  `json:"type"`
	Value      any             `json:"value,omitempty"`
	Text       string          `json:"text"`
	Color      string          `json:"color,omitempty"`
	Background string          `json:"background,omitempty"`
	Pin        types.ColumnPin `json:"pin,omitempty"`
	PinOffset  float64         `json:"pinOffset"`
	Editable   bool            `json:"editable,omitempty"`
}

// RenderedRow is one mounted row of the virtualized body.
type RenderedRow struct {
	Kind        RowKind `json:"kind"`
	DisplayIdx  int     `json:"displayIndex"`
	SourceIndex int     `json:"sourceIndex"`
	Cells       []Cell  `json:"cells"`
	Striped     bool    `json:"striped"`
	Highlighted bool    `json:"highlighted"`
	Background  string  `json:"background,omitempty"`

	GroupID    string `json:"groupId,omitempty"`
	GroupValue string `json:"groupValue,omitempty"`
	Count      int    `json:"count,omitempty"`
	Expanded   bool   `json:"expanded,omitempty"`
}

// ScrollTarget asks the host to scroll the viewport once.
type ScrollTarget struct {
	DisplayIdx int                  `json:"displayIndex"`
	Offset     float64              `json:"offset"`
	Align      types.ScrollPosition `json:"align"`
	Smooth     bool                 `json:"smooth"`
}

// ActionsColumn is the render model of the trailing actions column. It is
// present only when at least one row action is enabled.
type ActionsColumn struct {
	Label     string                `json:"label"`
	Width     float64               `json:"width"`
	Alignment types.ColumnAlignment `json:"alignment,omitempty"`
	CanEdit   bool                  `json:"canEdit"`
	CanAdd    bool                  `json:"canAdd"`
	CanDelete bool                  `json:"canDelete"`
}

// ViewModel is the complete render model of one grid pass: header, the
// visible body window, footer aggregates, paging metadata and an optional
// one-shot scroll request.
type ViewModel struct {
	Header     []HeaderCell      `json:"header"`
	Rows       []RenderedRow     `json:"rows"`
	Footer     []Cell            `json:"footer,omitempty"`
	Actions    *ActionsColumn    `json:"actions,omitempty"`
	Window     virtual.Range     `json:"window"`
	TotalRows  int               `json:"totalRows"`
	TotalSize  float64           `json:"totalSize"`
	Pagination paginate.Metadata `json:"pagination"`
	Draft      frame.Row         `json:"draft,omitempty"`
	ScrollTo   *ScrollTarget     `json:"scrollTo,omitempty"`
}

const defaultColumnWidth = 150

func widthOf(w types.ColumnWidth) float64 {
	if !w.Auto && w.Value > 0 {
		return w.Value
	}
	if w.Min > 0 {
		return w.Min
	}
	return defaultColumnWidth
}

func columnWidth(cfg types.ColumnConfig) float64 {
	return widthOf(cfg.Appearance.Width)
}

// pinOffsets computes the sticky offset of every pinned column: the sum of
// the widths of the columns pinned before it on the same side.
func pinOffsets(defs []frame.ColumnDef, pinning PinState) map[string]float64 {
	offsets := make(map[string]float64)
	widths := make(map[string]float64, len(defs))
	for _, d := range defs {
		widths[d.ID] = columnWidth(d.Config)
	}
	offset := 0.0
	for _, id := range pinning.Left {
		offsets[id] = offset
		offset += widths[id]
	}
	offset = 0.0
	for i := len(pinning.Right) - 1; i >= 0; i-- {
		id := pinning.Right[i]
		offsets[id] = offset
		offset += widths[id]
	}
	return offsets
}

func pinFor(id string, pinning PinState) types.ColumnPin {
	for _, l := range pinning.Left {
		if l == id {
			return types.PinLeft
		}
	}
	for _, r := range pinning.Right {
		if r == id {
			return types.PinRight
		}
	}
	return types.PinNone
}

// cellText formats a value through the field's display processor when the
// host provided one, falling back to plain string coercion. Missing values
// render empty.
func cellText(def frame.ColumnDef, value any) (text, color string) {
	if value == nil {
		return "", ""
	}
	if def.Field != nil && def.Field.Display != nil {
		dv := def.Field.Display(value)
		return dv.Text, dv.Color
	}
	return filtering.CoerceString(value), ""
}

// formatAggregate renders an aggregate result; extents format as a range.
func formatAggregate(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case []float64:
		if len(t) == 2 {
			return fmt.Sprintf("%s - %s",
				strconv.FormatFloat(t[0], 'f', -1, 64),
				strconv.FormatFloat(t[1], 'f', -1, 64))
		}
		return filtering.CoerceString(t)
	case []string:
		out := ""
		for i, s := range t {
			if i > 0 {
				out += ", "
			}
			out += s
		}
		return out
	default:
		return filtering.CoerceString(value)
	}
}
