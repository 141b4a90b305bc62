package types

import "fmt"

// NestedObjectType names the editor variant of a nested object. Cards is
// the only variant today.
type NestedObjectType string

const NestedObjectCards NestedObjectType = "cards"

// NestedRequestConfig is one CRUD leg of a nested object, independently
// enabled and gated.
type NestedRequestConfig struct {
	Enabled    bool             `json:"enabled"`
	Permission PermissionConfig `json:"permission"`
	Request    RequestConfig    `json:"request"`
}

type CardsDisplay string

const (
	CardsDisplayNone  CardsDisplay = "none"
	CardsDisplayFirst CardsDisplay = "first"
	CardsDisplayLast  CardsDisplay = "last"
)

// CardsEditorConfig maps the remote payload's field names onto the
// normalized card shape and controls inline truncation.
type CardsEditorConfig struct {
	IDField     string       `json:"id"`
	TitleField  string       `json:"title,omitempty"`
	TimeField   string       `json:"time,omitempty"`
	AuthorField string       `json:"author,omitempty"`
	BodyField   string       `json:"body,omitempty"`
	Display     CardsDisplay `json:"display,omitempty"`
	// DisplayCount limits how many cards render inline; nil shows all.
	DisplayCount *int `json:"displayCount,omitempty"`
}

// NestedObjectConfig declares one sub-resource type (e.g. comment threads)
// attached to rows via a nested_objects column.
type NestedObjectConfig struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Type   NestedObjectType    `json:"type"`
	Get    NestedRequestConfig `json:"get"`
	Add    NestedRequestConfig `json:"add"`
	Update NestedRequestConfig `json:"update"`
	Delete NestedRequestConfig `json:"delete"`
	Editor CardsEditorConfig   `json:"editor"`
}

func (n NestedObjectConfig) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("nested object id is required")
	}
	if n.Name == "" {
		return fmt.Errorf("nested object %q: name is required", n.ID)
	}
	if n.Type != NestedObjectCards {
		return fmt.Errorf("nested object %q: unknown type %q", n.ID, n.Type)
	}
	if n.Editor.IDField == "" {
		return fmt.Errorf("nested object %q: editor id field mapping is required", n.ID)
	}
	if n.Editor.DisplayCount != nil && *n.Editor.DisplayCount < 0 {
		return fmt.Errorf("nested object %q: displayCount cannot be negative", n.ID)
	}
	return nil
}
