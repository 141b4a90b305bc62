package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

func TestControlForFallsBackToString(t *testing.T) {
	c := ControlFor(types.EditorType("hologram"))
	assert.Equal(t, types.EditorString, c.Type)

	v, err := c.Parse(42, types.EditorConfig{})
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestParseNumber(t *testing.T) {
	min, max := 0.0, 100.0
	cfg := types.EditorConfig{Type: types.EditorNumber, Min: &min, Max: &max}
	control := ControlFor(types.EditorNumber)

	tests := []struct {
		name          string
		raw           any
		expected      float64
		expectedError bool
	}{
		{name: "in range", raw: 42, expected: 42},
		{name: "string input", raw: "42.5", expected: 42.5},
		{name: "at minimum", raw: 0, expected: 0},
		{name: "below minimum", raw: -1, expectedError: true},
		{name: "above maximum", raw: 101, expectedError: true},
		{name: "not numeric", raw: "many", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := control.Parse(tt.raw, cfg)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseBoolean(t *testing.T) {
	control := ControlFor(types.EditorBoolean)

	v, err := control.Parse(true, types.EditorConfig{})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = control.Parse("TRUE", types.EditorConfig{})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = control.Parse("maybe", types.EditorConfig{})
	assert.Error(t, err)

	_, err = control.Parse(3.5, types.EditorConfig{})
	assert.Error(t, err)
}

func TestParseDateAndDatetime(t *testing.T) {
	date := ControlFor(types.EditorDate)
	_, err := date.Parse("2026-02-30", types.EditorConfig{})
	assert.Error(t, err)
	v, err := date.Parse("2026-02-28", types.EditorConfig{})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", v)

	datetime := ControlFor(types.EditorDatetime)
	v, err = datetime.Parse("2026-02-28T10:30:00Z", types.EditorConfig{})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28T10:30:00Z", v)
	_, err = datetime.Parse("2026-02-28", types.EditorConfig{})
	assert.Error(t, err)
}

func optionFrames() []frame.Frame {
	return []frame.Frame{{RefID: "OPT", Fields: []frame.Field{
		{Name: "id", Type: frame.FieldTypeString, Values: []any{"a", "b", "c"}},
		{Name: "label", Type: frame.FieldTypeString, Values: []any{"Alpha", "Beta"}},
	}}}
}

func TestSelectOptions(t *testing.T) {
	cfg := types.EditorConfig{
		Type: types.EditorSelect,
		QueryOptions: &types.QueryOptionsConfig{
			Source:     "OPT",
			ValueField: "id",
			LabelField: "label",
		},
	}

	opts := selectOptions(cfg, optionFrames())
	require.Len(t, opts, 3)
	assert.Equal(t, ControlOption{Value: "a", Label: "Alpha"}, opts[0])
	assert.Equal(t, ControlOption{Value: "b", Label: "Beta"}, opts[1])
	// A label field shorter than the value field falls back to the value.
	assert.Equal(t, ControlOption{Value: "c", Label: "c"}, opts[2])

	t.Run("missing label field config reuses values", func(t *testing.T) {
		cfg := types.EditorConfig{
			Type:         types.EditorSelect,
			QueryOptions: &types.QueryOptionsConfig{Source: "OPT", ValueField: "id"},
		}
		opts := selectOptions(cfg, optionFrames())
		require.Len(t, opts, 3)
		assert.Equal(t, ControlOption{Value: "a", Label: "a"}, opts[0])
	})

	t.Run("unresolved value field yields no options", func(t *testing.T) {
		cfg := types.EditorConfig{
			Type:         types.EditorSelect,
			QueryOptions: &types.QueryOptionsConfig{Source: "OPT", ValueField: "gone"},
		}
		assert.Nil(t, selectOptions(cfg, optionFrames()))
	})
}

func TestRegistryCachesOptions(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	cfg := types.EditorConfig{
		Type:         types.EditorSelect,
		QueryOptions: &types.QueryOptionsConfig{Source: "OPT", ValueField: "id", LabelField: "label"},
	}

	first := registry.ControlOptions(cfg, optionFrames())
	require.Len(t, first, 3)

	// With the cache warm the frames are not consulted again.
	cached := registry.ControlOptions(cfg, nil)
	assert.Equal(t, first, cached)

	registry.Invalidate()
	assert.Nil(t, registry.ControlOptions(cfg, nil))

	// Controls without options never hit the cache.
	assert.Nil(t, registry.ControlOptions(types.EditorConfig{Type: types.EditorString}, optionFrames()))
}
