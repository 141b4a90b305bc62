package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridworks/datagrid-panel/pkg/types"
)

func fullConfig() types.CardsEditorConfig {
	return types.CardsEditorConfig{
		IDField:     "comment_id",
		TitleField:  "subject",
		TimeField:   "created_at",
		AuthorField: "user",
		BodyField:   "text",
	}
}

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper(fullConfig())
	payload := map[string]any{
		"comment_id": 17,
		"subject":    "Deployment window",
		"created_at": int64(1700000000000),
		"user":       "sam",
		"text":       "Moved to Friday.",
	}

	item := m.CreateObject(payload)
	assert.Equal(t, 17, item.ID)
	assert.Equal(t, "Deployment window", item.Title)
	assert.Equal(t, "sam", item.Author)

	// The inverse mapping reproduces the remote shape exactly, including
	// original value types.
	assert.Equal(t, payload, m.GetPayload(item))
}

func TestMapperPartialConfig(t *testing.T) {
	m := NewMapper(types.CardsEditorConfig{IDField: "id", BodyField: "text"})

	item := m.CreateObject(map[string]any{
		"id":      "c-1",
		"text":    "hello",
		"subject": "ignored",
	})
	assert.Equal(t, "c-1", item.ID)
	assert.Equal(t, "hello", item.Body)
	assert.Nil(t, item.Title, "unconfigured fields stay empty")

	payload := m.GetPayload(item)
	assert.Equal(t, map[string]any{"id": "c-1", "text": "hello"}, payload)
	_, hasSubject := payload["subject"]
	assert.False(t, hasSubject, "unconfigured fields are not invented")
}

func TestNewItem(t *testing.T) {
	a := NewItem("title", "body", "sam")
	b := NewItem("title", "body", "sam")

	require.IsType(t, "", a.ID)
	assert.NotEqual(t, a.ID, b.ID, "every new card gets its own id")
	assert.Equal(t, "title", a.Title)
	assert.Equal(t, "body", a.Body)
	assert.Equal(t, "sam", a.Author)
	assert.NotNil(t, a.Time)
}
