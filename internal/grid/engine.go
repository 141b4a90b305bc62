package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/paginate"
	"github.com/gridworks/datagrid-panel/pkg/types"
	"github.com/gridworks/datagrid-panel/pkg/virtual"
)

const (
	rowSizeEstimate = 36
	rowOverscan     = 4
)

// Viewport is the host-reported scroll container geometry.
type Viewport struct {
	Height       float64 `json:"height"`
	ScrollOffset float64 `json:"scrollOffset"`
}

// Engine drives one table: it owns the runtime state, turns frames plus
// configuration into display rows, and renders the virtualized window the
// host mounts. All mutation goes through its methods; View never mutates
// anything except the cached filter resolutions and the scroll latch.
type Engine struct {
	logger *zap.Logger
	cfg    types.TableConfig

	frames []frame.Frame
	defs   []frame.ColumnDef
	rows   []frame.Row

	state *State
	virt  *virtual.Virtualizer
	draft frame.Row

	// scrollPending arms the one-shot scroll-to-highlight request; it is
	// set on every data refresh and consumed by the next View.
	scrollPending bool

	now func() time.Time
}

// New builds an engine for one table configuration.
func New(cfg types.TableConfig, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}
	return &Engine{
		logger: logger,
		cfg:    cfg,
		state:  NewState(cfg),
		virt:   virtual.New(0, rowSizeEstimate, rowOverscan),
		now:    time.Now,
	}, nil
}

// SetData replaces the engine's frames, rebuilding column definitions and
// rows and re-arming the scroll-to-highlight request.
func (e *Engine) SetData(frames []frame.Frame) {
	e.frames = frames
	e.defs = frame.BuildColumnDefs(frames, e.cfg)
	e.rows = frame.BuildRows(frames, e.cfg)
	e.scrollPending = true
	e.logger.Debug("table data updated",
		zap.String("table", e.cfg.Name),
		zap.Int("frames", len(frames)),
		zap.Int("rows", len(e.rows)))
}

// Config returns the immutable table configuration.
func (e *Engine) Config() types.TableConfig { return e.cfg }

// Frames returns the last frames pushed into the engine.
func (e *Engine) Frames() []frame.Frame { return e.frames }

// State exposes the runtime state for persistence and variable sync.
func (e *Engine) State() *State { return e.state }

// RowAt returns the source row at the given dataset index.
func (e *Engine) RowAt(index int) (frame.Row, bool) {
	if index < 0 || index >= len(e.rows) {
		return nil, false
	}
	return e.rows[index], true
}

func (e *Engine) defFor(columnID string) (frame.ColumnDef, bool) {
	for _, d := range e.defs {
		if d.ID == columnID {
			return d, true
		}
	}
	return frame.ColumnDef{}, false
}

// ToggleSort advances the column through its sort cycle. Columns without
// sorting enabled are ignored.
func (e *Engine) ToggleSort(columnID string) {
	def, ok := e.defFor(columnID)
	if !ok || !def.Config.Sort.Enabled {
		return
	}
	e.state.Sorting = nextSorting(e.state.Sorting, def)
}

// SetFilter sets or clears one column's filter.
func (e *Engine) SetFilter(columnID string, value *filtering.Value) {
	e.state.SetFilter(columnID, value)
	if e.cfg.Pagination.Enabled {
		e.state.Page = e.state.Page.WithPageIndex(0)
	}
}

// SetFilters replaces the whole filter set, keeping entry order. Used by
// template-variable sync, which hands back a merged overlay.
func (e *Engine) SetFilters(filters []filtering.ColumnFilter) {
	e.state.Filters = filters
}

// SetPage moves to the given page index.
func (e *Engine) SetPage(index int) {
	e.state.Page = e.state.Page.WithPageIndex(index)
}

// SetPageSize changes the page size, which always returns to the first
// page.
func (e *Engine) SetPageSize(size int) {
	e.state.Page = e.state.Page.WithPageSize(size)
}

// ToggleGroup flips a group header between collapsed and expanded.
func (e *Engine) ToggleGroup(groupID string) {
	e.state.Expanded[groupID] = !e.state.Expanded[groupID]
}

// SetPin moves a column to the given edge, or unpins it.
func (e *Engine) SetPin(columnID string, pin types.ColumnPin) {
	e.state.Pinning.Left = removeString(e.state.Pinning.Left, columnID)
	e.state.Pinning.Right = removeString(e.state.Pinning.Right, columnID)
	switch pin {
	case types.PinLeft:
		e.state.Pinning.Left = append(e.state.Pinning.Left, columnID)
	case types.PinRight:
		e.state.Pinning.Right = append(e.state.Pinning.Right, columnID)
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// StartAddRow opens an empty draft row with one slot per column.
func (e *Engine) StartAddRow() {
	if e.draft != nil {
		return
	}
	e.draft = make(frame.Row, len(e.defs))
	for _, d := range e.defs {
		e.draft[d.ID] = nil
	}
}

// SetDraftValue writes one cell of the add-row draft.
func (e *Engine) SetDraftValue(columnID string, value any) {
	if e.draft == nil {
		return
	}
	e.draft[columnID] = value
}

// Draft returns the in-progress add-row draft, nil when none is open.
func (e *Engine) Draft() frame.Row {
	if e.draft == nil {
		return nil
	}
	return e.draft.Clone()
}

// CancelAddRow discards the draft.
func (e *Engine) CancelAddRow() { e.draft = nil }

// Measure feeds one mounted row's rendered height back into the
// virtualizer.
func (e *Engine) Measure(displayIndex int, size float64) {
	e.virt.Measure(displayIndex, size)
}

// resolveFilters recomputes every filter's cached evaluation form once,
// then returns the entries the engine evaluates locally. Query-mode
// columns filter remotely through template variables.
func (e *Engine) resolveFilters() []filtering.ColumnFilter {
	now := e.now()
	local := make([]filtering.ColumnFilter, 0, len(e.state.Filters))
	for i, f := range e.state.Filters {
		if f.Value == nil {
			continue
		}
		resolved := filtering.Resolve(*f.Value, now)
		e.state.Filters[i].Value = &resolved
		if def, ok := e.defFor(f.ID); ok && def.Config.Filter.Mode == types.FilterModeQuery {
			continue
		}
		local = append(local, filtering.ColumnFilter{ID: f.ID, Value: &resolved})
	}
	return local
}

func (e *Engine) filteredRefs() []rowRef {
	local := e.resolveFilters()
	refs := make([]rowRef, 0, len(e.rows))
	for i, row := range e.rows {
		keep := true
		for _, f := range local {
			if !filtering.Evaluate(row, f.ID, *f.Value) {
				keep = false
				break
			}
		}
		if keep {
			refs = append(refs, rowRef{index: i, row: row})
		}
	}
	return refs
}

// queryTotal reads the remote total row count from the configured field,
// falling back to the local row count.
func (e *Engine) queryTotal(fallback int) int {
	q := e.cfg.Pagination.Query
	if q == nil || q.TotalCountField == nil {
		return fallback
	}
	field := frame.LookupField(e.frames, *q.TotalCountField)
	if field == nil {
		return fallback
	}
	if v, ok := field.LastNonNil(); ok {
		if n, ok := filtering.CoerceFloat(v); ok {
			return int(n)
		}
	}
	return fallback
}

// View renders one frame of the grid for the given viewport.
func (e *Engine) View(vp Viewport) ViewModel {
	refs := e.filteredRefs()
	sortRefs(refs, e.state.Sorting)
	display := buildDisplayRows(refs, e.defs, e.state.Expanded)

	total := len(display)
	meta := paginate.Metadata{Total: total, PageSize: total, PageCount: 1}
	if e.cfg.Pagination.Enabled {
		switch e.cfg.Pagination.Mode {
		case types.PaginationQuery:
			meta = paginate.Describe(e.queryTotal(total), e.state.Page)
		default:
			meta = paginate.Describe(total, e.state.Page)
			display = paginate.Slice(display, e.state.Page)
		}
	}

	e.virt.SetCount(len(display))
	window := e.virt.Window(vp.ScrollOffset, vp.Height)
	offsets := pinOffsets(e.defs, e.state.Pinning)

	vm := ViewModel{
		Header:     e.headerCells(offsets),
		Rows:       e.renderWindow(display, window, offsets),
		Footer:     e.footerCells(refs, offsets),
		Actions:    e.actionsColumn(),
		Window:     window,
		TotalRows:  len(display),
		TotalSize:  e.virt.TotalSize(),
		Pagination: meta,
		Draft:      e.Draft(),
	}

	if e.scrollPending {
		vm.ScrollTo = e.scrollTarget(display, vp)
		e.scrollPending = false
	}
	return vm
}

func (e *Engine) headerCells(offsets map[string]float64) []HeaderCell {
	if !e.cfg.ShowHeader {
		return nil
	}
	header := make([]HeaderCell, 0, len(e.defs))
	for _, d := range e.defs {
		appearance := d.Config.Appearance.Header
		cell := HeaderCell{
			ID:         d.ID,
			Label:      d.Header,
			Sortable:   d.Config.Sort.Enabled,
			Filterable: d.Config.Filter.Enabled,
			Pin:        pinFor(d.ID, e.state.Pinning),
			PinOffset:  offsets[d.ID],
			Width:      columnWidth(d.Config),
			Alignment:  appearance.Alignment,
			Background: appearance.BackgroundColor,
			Color:      appearance.TextColor,
			FontSize:   appearance.FontSize,
		}
		for _, s := range e.state.Sorting {
			if s.ColumnID == d.ID {
				if s.Desc {
					cell.Sort = SortDesc
				} else {
					cell.Sort = SortAsc
				}
			}
		}
		if v, ok := e.state.Filter(d.ID); ok && v.Active() {
			cell.FilterActive = true
		}
		header = append(header, cell)
	}
	return header
}

// actionsColumn describes the trailing actions column, nil when no row
// action is enabled.
func (e *Engine) actionsColumn() *ActionsColumn {
	canEdit := e.cfg.Update.Enabled
	canAdd := e.cfg.AddRow.Enabled
	canDelete := e.cfg.DeleteRow.Enabled
	if !canEdit && !canAdd && !canDelete {
		return nil
	}
	cfg := e.cfg.ActionsColumn
	label := cfg.Label
	if label == "" {
		label = "Actions"
	}
	return &ActionsColumn{
		Label:     label,
		Width:     widthOf(cfg.Width),
		Alignment: cfg.Alignment,
		CanEdit:   canEdit,
		CanAdd:    canAdd,
		CanDelete: canDelete,
	}
}

func (e *Engine) renderWindow(display []DisplayRow, window virtual.Range, offsets map[string]float64) []RenderedRow {
	highlight := e.cfg.RowHighlight
	out := make([]RenderedRow, 0, window.End-window.Start)
	for i := window.Start; i < window.End; i++ {
		d := display[i]
		row := RenderedRow{
			Kind:        d.Kind,
			DisplayIdx:  i,
			SourceIndex: d.Index,
			Striped:     e.cfg.StripedRows && i%2 == 1,
			GroupID:     d.GroupID,
			GroupValue:  d.GroupValue,
			Count:       d.Count,
			Expanded:    d.Expanded,
		}
		if d.Kind == RowGroup {
			row.Cells = e.groupCells(d, offsets)
		} else {
			row.Cells, row.Background = e.dataCells(d.Row, offsets)
			// Highlight wins over a column-driven row background.
			if highlight.Enabled && highlight.ColumnID != "" && truthy(d.Row[highlight.ColumnID]) {
				row.Highlighted = true
				row.Background = highlight.BackgroundColor
			}
		}
		out = append(out, row)
	}
	return out
}

// dataCells renders one data row's cells and reports the row background a
// column with applyToRow contributes, the last such column winning.
func (e *Engine) dataCells(row frame.Row, offsets map[string]float64) ([]Cell, string) {
	cells := make([]Cell, 0, len(e.defs))
	rowBackground := ""
	for _, d := range e.defs {
		value := row[d.ID]
		text, color := cellText(d, value)
		cell := Cell{
			ColumnID:  d.ID,
			Type:      d.Config.Type,
			Value:     value,
			Text:      text,
			Pin:       pinFor(d.ID, e.state.Pinning),
			PinOffset: offsets[d.ID],
			Editable:  d.Config.Edit.Enabled,
		}
		switch d.Config.Type {
		case types.CellColoredBackground:
			cell.Background = color
		default:
			cell.Color = color
		}
		if cell.Background == "" {
			cell.Background = d.Config.Appearance.BackgroundColor
		}
		if d.Config.Appearance.ApplyToRow && cell.Background != "" {
			rowBackground = cell.Background
		}
		cells = append(cells, cell)
	}
	return cells, rowBackground
}

func (e *Engine) groupCells(d DisplayRow, offsets map[string]float64) []Cell {
	cells := make([]Cell, 0, len(e.defs))
	for _, def := range e.defs {
		cell := Cell{
			ColumnID:  def.ID,
			Type:      def.Config.Type,
			Pin:       pinFor(def.ID, e.state.Pinning),
			PinOffset: offsets[def.ID],
		}
		if def.Config.Group {
			cell.Value = d.Row[def.ID]
			cell.Text = filtering.CoerceString(d.Row[def.ID])
		} else if agg, ok := d.Aggregates[def.ID]; ok && agg != nil {
			cell.Value = agg
			cell.Text = formatAggregate(agg)
		}
		cells = append(cells, cell)
	}
	return cells
}

// footerCells aggregates each column's footer stat over all filtered rows,
// not just the visible page.
func (e *Engine) footerCells(refs []rowRef, offsets map[string]float64) []Cell {
	has := false
	cells := make([]Cell, 0, len(e.defs))
	for _, d := range e.defs {
		cell := Cell{
			ColumnID:  d.ID,
			Pin:       pinFor(d.ID, e.state.Pinning),
			PinOffset: offsets[d.ID],
		}
		if len(d.Config.Footer) > 0 && d.Config.Footer[0] != types.AggNone {
			values := make([]any, 0, len(refs))
			for _, ref := range refs {
				values = append(values, ref.row[d.ID])
			}
			cell.Value = Aggregate(d.Config.Footer[0], values)
			cell.Text = formatAggregate(cell.Value)
			has = true
		}
		cells = append(cells, cell)
	}
	if !has {
		return nil
	}
	return cells
}

// scrollTarget locates the first highlighted data row of the current
// display set and asks the host to bring it into view.
func (e *Engine) scrollTarget(display []DisplayRow, vp Viewport) *ScrollTarget {
	h := e.cfg.RowHighlight
	if !h.Enabled || h.ColumnID == "" || h.ScrollTo == types.ScrollNone {
		return nil
	}
	for i, d := range display {
		if d.Kind != RowData || !truthy(d.Row[h.ColumnID]) {
			continue
		}
		align := virtual.Align(h.ScrollTo)
		return &ScrollTarget{
			DisplayIdx: i,
			Offset:     e.virt.ScrollTo(i, align, vp.Height),
			Align:      h.ScrollTo,
			Smooth:     h.Smooth,
		}
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		if n, ok := filtering.CoerceFloat(v); ok {
			return n != 0
		}
		return false
	}
}

// ExportCSV writes the filtered and sorted dataset, ungrouped and
// unpaginated, with one header row of column titles.
func (e *Engine) ExportCSV(w io.Writer) error {
	refs := e.filteredRefs()
	sortRefs(refs, e.state.Sorting)

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(e.defs))
	for _, d := range e.defs {
		header = append(header, d.Header)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(e.defs))
	for _, ref := range refs {
		for i, d := range e.defs {
			text, _ := cellText(d, ref.row[d.ID])
			record[i] = text
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
