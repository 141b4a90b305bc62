package grid

import (
	"strings"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// RowKind distinguishes data rows from synthetic group header rows.
type RowKind string

const (
	RowData  RowKind = "data"
	RowGroup RowKind = "group"
)

// DisplayRow is one entry of the flattened row model the body renders:
// either a data row or a group header carrying the bucket's aggregates.
type DisplayRow struct {
	Kind RowKind
	// Index is the source row index for data rows, -1 for group rows.
	Index int
	Row   frame.Row

	GroupID    string
	GroupValue string
	Count      int
	Expanded   bool
	Aggregates map[string]any
}

func groupColumns(defs []frame.ColumnDef) []frame.ColumnDef {
	var out []frame.ColumnDef
	for _, d := range defs {
		if d.Config.Group {
			out = append(out, d)
		}
	}
	return out
}

// groupKey is the distinct tuple of grouped-column values; it doubles as
// the stable synthetic row id the expanded-state map is keyed by.
func groupKey(row frame.Row, groupCols []frame.ColumnDef) string {
	parts := make([]string, 0, len(groupCols))
	for _, col := range groupCols {
		parts = append(parts, filtering.CoerceString(row[col.ID]))
	}
	return "group:" + strings.Join(parts, "\x1f")
}

// buildDisplayRows flattens filtered, sorted rows into the display model.
// Without grouping every row passes through as a data row. With grouping,
// rows bucket by their grouped-value tuple in first-seen order; each
// bucket renders a header row, collapsed unless expanded, and non-group
// columns aggregate per bucket with their configured function.
func buildDisplayRows(refs []rowRef, defs []frame.ColumnDef, expanded map[string]bool) []DisplayRow {
	groupCols := groupColumns(defs)
	if len(groupCols) == 0 {
		out := make([]DisplayRow, 0, len(refs))
		for _, ref := range refs {
			out = append(out, DisplayRow{Kind: RowData, Index: ref.index, Row: ref.row})
		}
		return out
	}

	order := make([]string, 0)
	buckets := make(map[string][]rowRef)
	for _, ref := range refs {
		key := groupKey(ref.row, groupCols)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], ref)
	}

	out := make([]DisplayRow, 0, len(refs)+len(order))
	for _, key := range order {
		members := buckets[key]
		isExpanded := expanded[key]

		header := DisplayRow{
			Kind:       RowGroup,
			Index:      -1,
			Row:        members[0].row,
			GroupID:    key,
			GroupValue: groupLabel(members[0].row, groupCols),
			Count:      len(members),
			Expanded:   isExpanded,
			Aggregates: make(map[string]any, len(defs)),
		}
		for _, d := range defs {
			if d.Config.Group {
				continue
			}
			agg := d.Config.Aggregation
			if agg == "" || agg == types.AggNone {
				// No aggregation renders an empty cell on group rows.
				header.Aggregates[d.ID] = nil
				continue
			}
			values := make([]any, 0, len(members))
			for _, m := range members {
				values = append(values, m.row[d.ID])
			}
			header.Aggregates[d.ID] = Aggregate(agg, values)
		}
		out = append(out, header)

		if isExpanded {
			for _, m := range members {
				out = append(out, DisplayRow{Kind: RowData, Index: m.index, Row: m.row})
			}
		}
	}
	return out
}

func groupLabel(row frame.Row, groupCols []frame.ColumnDef) string {
	parts := make([]string, 0, len(groupCols))
	for _, col := range groupCols {
		parts = append(parts, filtering.CoerceString(row[col.ID]))
	}
	return strings.Join(parts, " / ")
}
