package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridworks/datagrid-panel/pkg/types"
)

func TestVisible(t *testing.T) {
	items := []Item{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	two := 2
	ten := 10

	tests := []struct {
		name      string
		cfg       types.CardsEditorConfig
		expected  []Item
		truncated bool
	}{
		{
			name:      "none hides everything but flags presence",
			cfg:       types.CardsEditorConfig{Display: types.CardsDisplayNone},
			expected:  nil,
			truncated: true,
		},
		{
			name:      "first two",
			cfg:       types.CardsEditorConfig{Display: types.CardsDisplayFirst, DisplayCount: &two},
			expected:  []Item{{ID: 1}, {ID: 2}},
			truncated: true,
		},
		{
			name:      "last two",
			cfg:       types.CardsEditorConfig{Display: types.CardsDisplayLast, DisplayCount: &two},
			expected:  []Item{{ID: 3}, {ID: 4}},
			truncated: true,
		},
		{
			name:      "count beyond length shows all",
			cfg:       types.CardsEditorConfig{Display: types.CardsDisplayFirst, DisplayCount: &ten},
			expected:  items,
			truncated: false,
		},
		{
			name:      "nil count shows all",
			cfg:       types.CardsEditorConfig{Display: types.CardsDisplayLast},
			expected:  items,
			truncated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, truncated := Visible(items, tt.cfg)
			assert.Equal(t, tt.expected, visible)
			assert.Equal(t, tt.truncated, truncated)
		})
	}

	t.Run("no items is never truncated", func(t *testing.T) {
		visible, truncated := Visible(nil, types.CardsEditorConfig{Display: types.CardsDisplayNone})
		assert.Nil(t, visible)
		assert.False(t, truncated)
	})
}
