package types

import "fmt"

// ColumnMode controls whether columns come from explicit configuration or
// are derived from the first frame.
type ColumnMode string

const (
	ColumnModeAuto   ColumnMode = "auto"
	ColumnModeManual ColumnMode = "manual"
)

type PaginationMode string

const (
	PaginationClient PaginationMode = "client"
	// PaginationQuery leaves paging to the datasource: page state is
	// pushed into template variables and the query re-runs.
	PaginationQuery PaginationMode = "query"
)

type QueryPaginationConfig struct {
	PageIndexVariable string `json:"pageIndexVariable,omitempty"`
	PageSizeVariable  string `json:"pageSizeVariable,omitempty"`
	OffsetVariable    string `json:"offsetVariable,omitempty"`
	// TotalCountField names the field carrying the total row count of the
	// full remote result.
	TotalCountField *FieldSource `json:"totalCount,omitempty"`
}

type PaginationConfig struct {
	Enabled         bool                   `json:"enabled"`
	Mode            PaginationMode         `json:"mode"`
	DefaultPageSize int                    `json:"defaultPageSize,omitempty"`
	Query           *QueryPaginationConfig `json:"query,omitempty"`
}

// RequestConfig describes one remote datasource call.
type RequestConfig struct {
	DatasourceUID string         `json:"datasource"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// TableRequestConfig couples a request with its enable flag and permission.
type TableRequestConfig struct {
	Enabled    bool             `json:"enabled"`
	Permission PermissionConfig `json:"permission"`
	Request    RequestConfig    `json:"request"`
}

type ScrollPosition string

const (
	ScrollNone   ScrollPosition = ""
	ScrollStart  ScrollPosition = "start"
	ScrollCenter ScrollPosition = "center"
	ScrollEnd    ScrollPosition = "end"
)

// RowHighlightConfig marks rows via a boolean column and optionally scrolls
// the first highlighted row into view on refresh.
type RowHighlightConfig struct {
	Enabled         bool           `json:"enabled"`
	ColumnID        string         `json:"columnId,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	ScrollTo        ScrollPosition `json:"scrollTo,omitempty"`
	Smooth          bool           `json:"smooth,omitempty"`
}

type ActionsColumnConfig struct {
	Label     string          `json:"label,omitempty"`
	Width     ColumnWidth     `json:"width"`
	Alignment ColumnAlignment `json:"alignment,omitempty"`
}

// TableConfig is one named table/tab of the panel. Several coexist, one
// active in the UI at a time.
type TableConfig struct {
	Name          string              `json:"name"`
	Mode          ColumnMode          `json:"mode,omitempty"`
	Items         []ColumnConfig      `json:"items"`
	ShowHeader    bool                `json:"showHeader"`
	StripedRows   bool                `json:"stripedRows"`
	Pagination    PaginationConfig    `json:"pagination"`
	Update        TableRequestConfig  `json:"update"`
	AddRow        TableRequestConfig  `json:"addRow"`
	DeleteRow     TableRequestConfig  `json:"deleteRow"`
	RowHighlight  RowHighlightConfig  `json:"rowHighlight"`
	ActionsColumn ActionsColumnConfig `json:"actionsColumnConfig"`
}

// Validate checks the table's column invariants.
func (t TableConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	seen := make(map[string]struct{}, len(t.Items))
	for _, col := range t.Items {
		if err := col.Validate(); err != nil {
			return fmt.Errorf("table %q: %w", t.Name, err)
		}
		id := col.ID()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("table %q: duplicate column %q", t.Name, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// PanelOptions is the persisted root configuration of the panel.
type PanelOptions struct {
	Tables        []TableConfig        `json:"tables"`
	NestedObjects []NestedObjectConfig `json:"nestedObjects,omitempty"`
}

// Table returns the named table configuration.
func (o PanelOptions) Table(name string) (TableConfig, bool) {
	for _, t := range o.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// NestedObject returns the nested-object configuration with the given id.
func (o PanelOptions) NestedObject(id string) (NestedObjectConfig, bool) {
	for _, n := range o.NestedObjects {
		if n.ID == id {
			return n, true
		}
	}
	return NestedObjectConfig{}, false
}

// Validate checks the whole options tree, including name uniqueness across
// tables (renames to a taken or empty name are rejected up front).
func (o PanelOptions) Validate() error {
	names := make(map[string]struct{}, len(o.Tables))
	for _, t := range o.Tables {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		names[t.Name] = struct{}{}
	}
	for _, n := range o.NestedObjects {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	return nil
}
