package grid

import (
	"sort"
	"strings"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
)

// nextSorting cycles the column through its sort states. The default cycle
// is ascending, descending, off; a desc-first column starts descending.
// Sorting is single-column: cycling one column drops any other.
func nextSorting(current []SortState, col frame.ColumnDef) []SortState {
	descFirst := col.Config.Sort.DescFirst

	var active *SortState
	for i := range current {
		if current[i].ColumnID == col.ID {
			active = &current[i]
			break
		}
	}

	switch {
	case active == nil:
		return []SortState{{ColumnID: col.ID, Desc: descFirst}}
	case active.Desc == descFirst:
		return []SortState{{ColumnID: col.ID, Desc: !descFirst}}
	default:
		return nil
	}
}

// rowRef keeps the source index of a row through filtering and sorting so
// edit operations address the original dataset position.
type rowRef struct {
	index int
	row   frame.Row
}

// compareValues orders two cell values: numerically when both coerce to
// numbers, by string otherwise. Nil sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	na, aok := filtering.CoerceFloat(a)
	nb, bok := filtering.CoerceFloat(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(filtering.CoerceString(a), filtering.CoerceString(b))
}

func sortRefs(refs []rowRef, sorting []SortState) {
	if len(sorting) == 0 {
		return
	}
	sort.SliceStable(refs, func(i, j int) bool {
		for _, s := range sorting {
			c := compareValues(refs[i].row[s.ColumnID], refs[j].row[s.ColumnID])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
