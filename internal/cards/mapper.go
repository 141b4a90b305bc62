// Package cards renders and mutates row-scoped lists of sub-items such as
// comment threads, translating between the remote payload shape and a
// normalized card.
package cards

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Item is the normalized card shape. Field values stay opaque so the
// inverse mapping reproduces the remote payload exactly.
type Item struct {
	ID     any `json:"id"`
	Title  any `json:"title,omitempty"`
	Time   any `json:"time,omitempty"`
	Author any `json:"author,omitempty"`
	Body   any `json:"body,omitempty"`
}

// Mapper translates between the configured remote field names and the
// normalized card shape in both directions.
type Mapper struct {
	cfg types.CardsEditorConfig
}

func NewMapper(cfg types.CardsEditorConfig) Mapper {
	return Mapper{cfg: cfg}
}

// Config exposes the editor configuration the mapper was built from.
func (m Mapper) Config() types.CardsEditorConfig { return m.cfg }

// CreateObject applies the field mapping forward, normalizing one remote
// payload into a card.
func (m Mapper) CreateObject(payload map[string]any) Item {
	item := Item{ID: payload[m.cfg.IDField]}
	if m.cfg.TitleField != "" {
		item.Title = payload[m.cfg.TitleField]
	}
	if m.cfg.TimeField != "" {
		item.Time = payload[m.cfg.TimeField]
	}
	if m.cfg.AuthorField != "" {
		item.Author = payload[m.cfg.AuthorField]
	}
	if m.cfg.BodyField != "" {
		item.Body = payload[m.cfg.BodyField]
	}
	return item
}

// GetPayload applies the mapping in reverse so the remote API receives its
// own field names back.
func (m Mapper) GetPayload(item Item) map[string]any {
	payload := map[string]any{m.cfg.IDField: item.ID}
	if m.cfg.TitleField != "" {
		payload[m.cfg.TitleField] = item.Title
	}
	if m.cfg.TimeField != "" {
		payload[m.cfg.TimeField] = item.Time
	}
	if m.cfg.AuthorField != "" {
		payload[m.cfg.AuthorField] = item.Author
	}
	if m.cfg.BodyField != "" {
		payload[m.cfg.BodyField] = item.Body
	}
	return payload
}

// NewItem builds a fresh card for the add flow, keyed by a generated id
// and stamped with the current time.
func NewItem(title, body, author string) Item {
	return Item{
		ID:     uuid.NewString(),
		Title:  title,
		Time:   time.Now().UnixMilli(),
		Author: author,
		Body:   body,
	}
}
