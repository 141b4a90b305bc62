package cards

import "github.com/gridworks/datagrid-panel/pkg/types"

// Visible applies the display policy: which cards render inline and
// whether a "show all" affordance is needed for the remainder. A nil
// DisplayCount shows everything inline.
func Visible(items []Item, cfg types.CardsEditorConfig) (visible []Item, truncated bool) {
	switch cfg.Display {
	case types.CardsDisplayNone:
		return nil, len(items) > 0
	case types.CardsDisplayFirst:
		if cfg.DisplayCount == nil || *cfg.DisplayCount >= len(items) {
			return items, false
		}
		return items[:*cfg.DisplayCount], true
	case types.CardsDisplayLast:
		if cfg.DisplayCount == nil || *cfg.DisplayCount >= len(items) {
			return items, false
		}
		return items[len(items)-*cfg.DisplayCount:], true
	default:
		return items, false
	}
}
