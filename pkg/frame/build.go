package frame

import (
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// ColumnDef is the runtime definition of one grid column: the accessor id
// into built rows plus the per-column metadata the grid consumes.
type ColumnDef struct {
	ID     string
	Header string
	Type   FieldType
	Config types.ColumnConfig
	// Field points into the source frame for display formatting; nil when
	// the configured field could not be resolved.
	Field *Field
}

// LookupField finds the field a manual column refers to. Frames without a
// refId are addressed by their index.
func LookupField(frames []Frame, source types.FieldSource) *Field {
	if idx, numeric := source.FrameIndex(); numeric {
		if idx >= len(frames) || frames[idx].RefID != "" {
			return nil
		}
		f, ok := frames[idx].FieldByName(source.Name)
		if !ok {
			return nil
		}
		return f
	}
	for i := range frames {
		if frames[i].RefID != source.Source {
			continue
		}
		if f, ok := frames[i].FieldByName(source.Name); ok {
			return f
		}
	}
	return nil
}

// BuildColumnDefs derives runtime column definitions from the table
// configuration. In auto mode only the first frame contributes, one column
// per field. In manual mode every configured column yields a definition
// even when its field no longer resolves, so the grid degrades to an empty
// column instead of dropping it.
func BuildColumnDefs(frames []Frame, cfg types.TableConfig) []ColumnDef {
	if cfg.Mode == types.ColumnModeAuto {
		if len(frames) == 0 {
			return []ColumnDef{}
		}
		first := frames[0]
		defs := make([]ColumnDef, 0, len(first.Fields))
		for i := range first.Fields {
			f := &first.Fields[i]
			header := f.Name
			if f.Config.DisplayName != "" {
				header = f.Config.DisplayName
			}
			defs = append(defs, ColumnDef{
				ID:     f.Name,
				Header: header,
				Type:   f.Type,
				Config: types.ColumnConfig{
					Field: types.FieldSource{Source: "0", Name: f.Name},
					Type:  types.CellAuto,
				},
				Field: f,
			})
		}
		return defs
	}

	defs := make([]ColumnDef, 0, len(cfg.Items))
	for _, col := range cfg.Items {
		def := ColumnDef{
			ID:     col.ID(),
			Header: col.Title(),
			Type:   FieldTypeOther,
			Config: col,
		}
		if f := LookupField(frames, col.Field); f != nil {
			def.Type = f.Type
			def.Field = f
		}
		defs = append(defs, def)
	}
	return defs
}

// BuildRows joins the configured fields into row objects. The row index is
// the join key: every resolved field writes its value at each index into
// the row with that index, growing the row set as needed. Unresolvable
// columns are skipped silently.
func BuildRows(frames []Frame, cfg types.TableConfig) []Row {
	if len(frames) == 0 {
		return []Row{}
	}

	if cfg.Mode == types.ColumnModeAuto {
		// Auto mode reads the first frame only.
		first := frames[0]
		rows := make([]Row, 0, first.Length())
		for i := range first.Fields {
			f := &first.Fields[i]
			for idx, v := range f.Values {
				for idx >= len(rows) {
					rows = append(rows, Row{})
				}
				rows[idx][f.Name] = v
			}
		}
		return rows
	}

	rows := []Row{}
	for _, col := range cfg.Items {
		f := LookupField(frames, col.Field)
		if f == nil {
			continue
		}
		key := col.ID()
		for idx, v := range f.Values {
			for idx >= len(rows) {
				rows = append(rows, Row{})
			}
			rows[idx][key] = v
		}
	}
	return rows
}
