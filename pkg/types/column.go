package types

import (
	"fmt"
	"strconv"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
)

// CellType selects how a column's cells are rendered.
type CellType string

const (
	CellAuto              CellType = "auto"
	CellColoredText       CellType = "colored_text"
	CellColoredBackground CellType = "colored_background"
	CellRichText          CellType = "rich_text"
	CellNestedObjects     CellType = "nested_objects"
	CellBoolean           CellType = "boolean"
	CellPreformatted      CellType = "preformatted"
)

// Aggregation names the per-bucket statistic of a column in a grouped table.
type Aggregation string

const (
	AggNone        Aggregation = "none"
	AggSum         Aggregation = "sum"
	AggMin         Aggregation = "min"
	AggMax         Aggregation = "max"
	AggExtent      Aggregation = "extent"
	AggMean        Aggregation = "mean"
	AggMedian      Aggregation = "median"
	AggUnique      Aggregation = "unique"
	AggUniqueCount Aggregation = "uniqueCount"
	AggCount       Aggregation = "count"
)

// ColumnPin anchors a column to one edge of the scrollable grid.
type ColumnPin string

const (
	PinNone  ColumnPin = ""
	PinLeft  ColumnPin = "left"
	PinRight ColumnPin = "right"
)

// FieldSource identifies a field within the queried frames. Source is
// either a frame refId or, for frames without one, the decimal frame index.
type FieldSource struct {
	Source string `json:"source"`
	Name   string `json:"name"`
}

// FrameIndex interprets Source as a zero-based frame index.
func (s FieldSource) FrameIndex() (int, bool) {
	idx, err := strconv.Atoi(s.Source)
	return idx, err == nil && idx >= 0
}

// Key returns the row key for the field: "refId:name" for refId sources,
// the bare field name for index sources.
func (s FieldSource) Key() string {
	if _, numeric := s.FrameIndex(); numeric || s.Source == "" {
		return s.Name
	}
	return s.Source + ":" + s.Name
}

type FilterMode string

const (
	FilterModeClient FilterMode = "client"
	FilterModeQuery  FilterMode = "query"
)

// FilterConfig is the per-column filter declaration.
type FilterConfig struct {
	Enabled bool       `json:"enabled"`
	Mode    FilterMode `json:"mode"`
	// Variable names the template variable backing a query-mode filter.
	Variable string `json:"variable,omitempty"`
	// DefaultClientValue pre-seeds a client-mode filter.
	DefaultClientValue *filtering.Value `json:"defaultClientValue,omitempty"`
}

type SortConfig struct {
	Enabled   bool `json:"enabled"`
	DescFirst bool `json:"descFirst"`
}

type ColumnAlignment string

const (
	AlignStart  ColumnAlignment = "start"
	AlignCenter ColumnAlignment = "center"
	AlignEnd    ColumnAlignment = "end"
)

type ColumnWidth struct {
	Auto  bool    `json:"auto"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
	Value float64 `json:"value"`
}

type ColumnHeaderAppearance struct {
	FontSize        string          `json:"fontSize,omitempty"`
	TextColor       string          `json:"color,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	Alignment       ColumnAlignment `json:"alignment,omitempty"`
}

type ColumnAppearance struct {
	Width ColumnWidth `json:"width"`
	// Wrap lets long cell text wrap onto multiple lines, which makes the
	// row height variable.
	Wrap            bool                   `json:"wrap"`
	Alignment       ColumnAlignment        `json:"alignment,omitempty"`
	BackgroundColor string                 `json:"background,omitempty"`
	ApplyToRow      bool                   `json:"applyToRow,omitempty"`
	Header          ColumnHeaderAppearance `json:"header"`
}

// OrgRole mirrors the host's organization roles.
type OrgRole string

const (
	RoleAdmin  OrgRole = "Admin"
	RoleEditor OrgRole = "Editor"
	RoleViewer OrgRole = "Viewer"
)

type PermissionMode string

const (
	PermissionAlways   PermissionMode = ""
	PermissionUserRole PermissionMode = "userRole"
	PermissionQuery    PermissionMode = "query"
)

// PermissionConfig gates a mutating operation. In query mode the decision
// is read from a boolean field of the dataset.
type PermissionConfig struct {
	Mode     PermissionMode `json:"mode"`
	UserRole []OrgRole      `json:"userRole,omitempty"`
	Field    *FieldSource   `json:"field,omitempty"`
}

type EditorType string

const (
	EditorString   EditorType = "string"
	EditorNumber   EditorType = "number"
	EditorBoolean  EditorType = "boolean"
	EditorTextarea EditorType = "textarea"
	EditorDate     EditorType = "date"
	EditorDatetime EditorType = "datetime"
	EditorSelect   EditorType = "select"
	EditorFile     EditorType = "file"
)

// QueryOptionsConfig sources select-editor choices from another field of
// the dataset: values and labels are zipped by index.
type QueryOptionsConfig struct {
	Source     string `json:"source"`
	ValueField string `json:"value"`
	LabelField string `json:"label,omitempty"`
}

type EditorConfig struct {
	Type EditorType `json:"type"`
	// Min and Max bound the number editor when set.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	// QueryOptions feeds the select editor.
	QueryOptions *QueryOptionsConfig `json:"queryOptions,omitempty"`
}

type EditConfig struct {
	Enabled    bool             `json:"enabled"`
	Permission PermissionConfig `json:"permission"`
	Editor     EditorConfig     `json:"editor"`
}

// ColumnConfig is one user-declared column. Persisted as part of the panel
// options and read-only at render time.
type ColumnConfig struct {
	Field       FieldSource      `json:"field"`
	Label       string           `json:"label,omitempty"`
	Type        CellType         `json:"type"`
	Group       bool             `json:"group"`
	Aggregation Aggregation      `json:"aggregation"`
	Filter      FilterConfig     `json:"filter"`
	Sort        SortConfig       `json:"sort"`
	Appearance  ColumnAppearance `json:"appearance"`
	Pin         ColumnPin        `json:"pin"`
	Edit        EditConfig       `json:"edit"`
	// Footer lists at most one aggregation stat shown in the footer row.
	Footer []Aggregation `json:"footer"`
	// ObjectID references a NestedObjectConfig for nested_objects columns.
	ObjectID string `json:"objectId,omitempty"`
}

// ID returns the column's accessor key into built rows.
func (c ColumnConfig) ID() string {
	return c.Field.Key()
}

// Title returns the header label, falling back to the field name.
func (c ColumnConfig) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Field.Name
}

// Validate checks the invariants a column configuration must hold.
func (c ColumnConfig) Validate() error {
	if c.Field.Name == "" {
		return fmt.Errorf("column field name is required")
	}
	// Aggregation applies to non-group sibling columns of a grouped
	// table; a grouping key cannot carry one itself.
	if c.Group && c.Aggregation != "" && c.Aggregation != AggNone {
		return fmt.Errorf("column %q: a grouping column cannot have aggregation %q", c.ID(), c.Aggregation)
	}
	if len(c.Footer) > 1 {
		return fmt.Errorf("column %q: at most one footer aggregation is allowed", c.ID())
	}
	return nil
}
