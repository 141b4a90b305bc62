package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// ControlOption is one choice of a select control.
type ControlOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Control is one entry of the editor registry: how a cell value of this
// editor type is parsed from user input and which runtime options the
// control offers.
type Control struct {
	Type types.EditorType
	// Parse validates and converts raw user input into a cell value.
	Parse func(raw any, cfg types.EditorConfig) (any, error)
	// Options derives runtime choices from the dataset; nil for controls
	// without choices.
	Options func(cfg types.EditorConfig, frames []frame.Frame) []ControlOption
}

// controls is the dispatch table over every editor type. A missing entry
// here is a bug; ControlFor falls back to the string control so an
// unknown persisted type still renders something editable.
var controls = map[types.EditorType]Control{
	types.EditorString:   {Type: types.EditorString, Parse: parseString},
	types.EditorTextarea: {Type: types.EditorTextarea, Parse: parseString},
	types.EditorNumber:   {Type: types.EditorNumber, Parse: parseNumber},
	types.EditorBoolean:  {Type: types.EditorBoolean, Parse: parseBoolean},
	types.EditorDate:     {Type: types.EditorDate, Parse: parseDate},
	types.EditorDatetime: {Type: types.EditorDatetime, Parse: parseDatetime},
	types.EditorSelect:   {Type: types.EditorSelect, Parse: parseString, Options: selectOptions},
	types.EditorFile:     {Type: types.EditorFile, Parse: parseString},
}

// ControlFor returns the control for an editor type.
func ControlFor(t types.EditorType) Control {
	if c, ok := controls[t]; ok {
		return c
	}
	return controls[types.EditorString]
}

func parseString(raw any, _ types.EditorConfig) (any, error) {
	return filtering.CoerceString(raw), nil
}

func parseNumber(raw any, cfg types.EditorConfig) (any, error) {
	n, ok := filtering.CoerceFloat(raw)
	if !ok {
		return nil, fmt.Errorf("value %v is not a number", raw)
	}
	if cfg.Min != nil && n < *cfg.Min {
		return nil, fmt.Errorf("value %v is below the minimum %v", n, *cfg.Min)
	}
	if cfg.Max != nil && n > *cfg.Max {
		return nil, fmt.Errorf("value %v is above the maximum %v", n, *cfg.Max)
	}
	return n, nil
}

func parseBoolean(raw any, _ types.EditorConfig) (any, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.ToLower(t))
		if err != nil {
			return nil, fmt.Errorf("value %q is not a boolean", t)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("value %v is not a boolean", raw)
	}
}

func parseDate(raw any, _ types.EditorConfig) (any, error) {
	s := filtering.CoerceString(raw)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil, fmt.Errorf("value %q is not a date: %w", s, err)
	}
	return s, nil
}

func parseDatetime(raw any, _ types.EditorConfig) (any, error) {
	s := filtering.CoerceString(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("value %q is not a datetime", s)
}

// selectOptions zips the configured value and label fields of the source
// frame by index. When either field cannot be resolved the options are
// empty rather than an error.
func selectOptions(cfg types.EditorConfig, frames []frame.Frame) []ControlOption {
	if cfg.QueryOptions == nil {
		return nil
	}
	valueField := frame.LookupField(frames, types.FieldSource{Source: cfg.QueryOptions.Source, Name: cfg.QueryOptions.ValueField})
	if valueField == nil {
		return nil
	}
	labelField := valueField
	if cfg.QueryOptions.LabelField != "" {
		labelField = frame.LookupField(frames, types.FieldSource{Source: cfg.QueryOptions.Source, Name: cfg.QueryOptions.LabelField})
		if labelField == nil {
			return nil
		}
	}

	out := make([]ControlOption, 0, len(valueField.Values))
	for i, v := range valueField.Values {
		opt := ControlOption{Value: filtering.CoerceString(v)}
		opt.Label = filtering.CoerceString(labelField.At(i))
		if opt.Label == "" {
			opt.Label = opt.Value
		}
		out = append(out, opt)
	}
	return out
}

// Registry resolves controls and caches derived select options, which are
// recomputed only when the backing query changes.
type Registry struct {
	options *lru.Cache[string, []ControlOption]
}

func NewRegistry() (*Registry, error) {
	options, err := lru.New[string, []ControlOption](64)
	if err != nil {
		return nil, fmt.Errorf("failed to create options cache: %w", err)
	}
	return &Registry{options: options}, nil
}

// ControlOptions returns the runtime choices of the column's control,
// caching per source/field triple until Invalidate.
func (r *Registry) ControlOptions(cfg types.EditorConfig, frames []frame.Frame) []ControlOption {
	control := ControlFor(cfg.Type)
	if control.Options == nil {
		return nil
	}
	key := ""
	if cfg.QueryOptions != nil {
		key = cfg.QueryOptions.Source + "\x00" + cfg.QueryOptions.ValueField + "\x00" + cfg.QueryOptions.LabelField
		if cached, ok := r.options.Get(key); ok {
			return cached
		}
	}
	opts := control.Options(cfg, frames)
	if key != "" {
		r.options.Add(key, opts)
	}
	return opts
}

// Invalidate drops every cached option set; call on data refresh.
func (r *Registry) Invalidate() {
	r.options.Purge()
}
