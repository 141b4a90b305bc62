package editor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

type fakeRequester struct {
	mu       sync.Mutex
	requests []datasource.Request
	resp     *datasource.Response
	err      error
}

func (f *fakeRequester) Request(_ context.Context, req datasource.Request, replace datasource.ReplaceVariables) (*datasource.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &datasource.Response{State: datasource.StateDone}, nil
}

func newTestManager(t *testing.T, requester datasource.Requester) *Manager {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewManager(zap.NewNop(), requester, registry)
}

func updateConfig() types.TableRequestConfig {
	return types.TableRequestConfig{
		Enabled: true,
		Request: types.RequestConfig{DatasourceUID: "ds-1"},
	}
}

func stringColumn(name string) types.ColumnConfig {
	return types.ColumnConfig{
		Field: types.FieldSource{Source: "A", Name: name},
		Edit: types.EditConfig{
			Enabled: true,
			Editor:  types.EditorConfig{Type: types.EditorString},
		},
	}
}

func TestEditLifecycle(t *testing.T) {
	requester := &fakeRequester{}
	m := newTestManager(t, requester)
	row := frame.Row{"A:name": "old", "A:other": "keep"}

	assert.Equal(t, PhaseViewing, m.Phase(0))

	m.StartEdit(0, row)
	assert.Equal(t, PhaseEditing, m.Phase(0))

	require.NoError(t, m.UpdateDraft(0, stringColumn("name"), "new"))
	draft, ok := m.Draft(0)
	require.True(t, ok)
	assert.Equal(t, "new", draft["A:name"])
	assert.Equal(t, "old", row["A:name"], "the original row is untouched")

	require.NoError(t, m.Save(context.Background(), 0, updateConfig(), nil))
	assert.Equal(t, PhaseViewing, m.Phase(0))

	require.Len(t, requester.requests, 1)
	payload := requester.requests[0].Payload
	assert.Equal(t, row, payload["row"], "the full original row rides along")
	assert.Equal(t, "new", payload["A:name"])
	_, sent := payload["A:other"]
	assert.False(t, sent, "untouched columns are not sent")
}

func TestStartEditIsIdempotent(t *testing.T) {
	m := newTestManager(t, &fakeRequester{})
	m.StartEdit(0, frame.Row{"A:name": "old"})
	require.NoError(t, m.UpdateDraft(0, stringColumn("name"), "new"))

	// A second start while editing keeps the draft.
	m.StartEdit(0, frame.Row{"A:name": "old"})
	draft, _ := m.Draft(0)
	assert.Equal(t, "new", draft["A:name"])
}

func TestCancelDiscardsDraft(t *testing.T) {
	requester := &fakeRequester{}
	m := newTestManager(t, requester)
	m.StartEdit(0, frame.Row{"A:name": "old"})
	require.NoError(t, m.UpdateDraft(0, stringColumn("name"), "new"))

	m.Cancel(0)
	assert.Equal(t, PhaseViewing, m.Phase(0))
	assert.Empty(t, requester.requests, "cancel never issues a request")

	// Editing again starts from the row values, not the stale draft.
	m.StartEdit(0, frame.Row{"A:name": "old"})
	draft, _ := m.Draft(0)
	assert.Equal(t, "old", draft["A:name"])
}

func TestSaveFailureKeepsEditing(t *testing.T) {
	tests := []struct {
		name          string
		requester     *fakeRequester
		expectedError string
	}{
		{
			name:          "transport error",
			requester:     &fakeRequester{err: fmt.Errorf("connection refused")},
			expectedError: "connection refused",
		},
		{
			name: "datasource error state",
			requester: &fakeRequester{resp: &datasource.Response{
				State:  datasource.StateError,
				Errors: []string{"row is locked"},
			}},
			expectedError: "row is locked",
		},
		{
			name:          "error state without message",
			requester:     &fakeRequester{resp: &datasource.Response{State: datasource.StateError}},
			expectedError: "Unknown Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, tt.requester)
			m.StartEdit(0, frame.Row{"A:name": "old"})
			require.NoError(t, m.UpdateDraft(0, stringColumn("name"), "new"))

			err := m.Save(context.Background(), 0, updateConfig(), nil)
			require.Error(t, err)

			assert.Equal(t, PhaseEditing, m.Phase(0), "the draft survives a failed save")
			assert.Equal(t, tt.expectedError, m.LastError(0))
			draft, _ := m.Draft(0)
			assert.Equal(t, "new", draft["A:name"])
		})
	}
}

func TestSaveOnRowNotBeingEdited(t *testing.T) {
	m := newTestManager(t, &fakeRequester{})
	assert.Error(t, m.Save(context.Background(), 3, updateConfig(), nil))
}

func TestUpdateDraftParseErrorLeavesDraft(t *testing.T) {
	m := newTestManager(t, &fakeRequester{})
	m.StartEdit(0, frame.Row{"A:count": 5})

	col := types.ColumnConfig{
		Field: types.FieldSource{Source: "A", Name: "count"},
		Edit: types.EditConfig{
			Enabled: true,
			Editor:  types.EditorConfig{Type: types.EditorNumber},
		},
	}
	assert.Error(t, m.UpdateDraft(0, col, "not-a-number"))

	draft, _ := m.Draft(0)
	assert.Equal(t, 5, draft["A:count"])
}

func TestConcurrentSavesAcrossRows(t *testing.T) {
	const rows = 8
	requester := &fakeRequester{}
	m := newTestManager(t, requester)

	for i := 0; i < rows; i++ {
		m.StartEdit(i, frame.Row{"A:name": "old"})
		require.NoError(t, m.UpdateDraft(i, stringColumn("name"), fmt.Sprintf("new-%d", i)))
	}

	errs := make(chan error, rows)
	var wg sync.WaitGroup
	for i := 0; i < rows; i++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			errs <- m.Save(context.Background(), row, updateConfig(), nil)
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, requester.requests, rows, "each row saves independently")
	for i := 0; i < rows; i++ {
		assert.Equal(t, PhaseViewing, m.Phase(i))
	}
}

func TestResetDropsAllEdits(t *testing.T) {
	m := newTestManager(t, &fakeRequester{})
	m.StartEdit(0, frame.Row{})
	m.StartEdit(4, frame.Row{})

	m.Reset()
	assert.Equal(t, PhaseViewing, m.Phase(0))
	assert.Equal(t, PhaseViewing, m.Phase(4))
}
