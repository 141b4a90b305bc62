package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Phase is the edit state of a row.
type Phase string

const (
	PhaseViewing Phase = "viewing"
	PhaseEditing Phase = "editing"
	PhaseSaving  Phase = "saving"
)

// rowEdit tracks the draft of one row being edited.
type rowEdit struct {
	phase     Phase
	original  frame.Row
	draft     frame.Row
	touched   map[string]struct{}
	lastError string
}

// Manager drives the per-row edit state machine and persists drafts
// through the datasource request capability. The manager carries its own
// lock, so callers may save from any goroutine: concurrent saves for the
// same row collapse onto one in-flight request, and different rows save
// independently.
type Manager struct {
	requester datasource.Requester
	registry  *Registry
	logger    *zap.Logger

	mu    sync.Mutex
	saves singleflight.Group
	edits map[int]*rowEdit
}

func NewManager(log *zap.Logger, requester datasource.Requester, registry *Registry) *Manager {
	return &Manager{
		requester: requester,
		registry:  registry,
		logger:    log,
		edits:     make(map[int]*rowEdit),
	}
}

// Phase returns the edit phase of a row.
func (m *Manager) Phase(rowIndex int) Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.edits[rowIndex]; ok {
		return e.phase
	}
	return PhaseViewing
}

// Draft returns the current draft of a row under edit.
func (m *Manager) Draft(rowIndex int) (frame.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.edits[rowIndex]; ok && e.phase != PhaseViewing {
		return e.draft, true
	}
	return nil, false
}

// LastError returns the save error kept for a row still in editing.
func (m *Manager) LastError(rowIndex int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.edits[rowIndex]; ok {
		return e.lastError
	}
	return ""
}

// StartEdit moves a row into editing with a copy of its current values as
// draft. Starting an edit on a row already under edit is a no-op.
func (m *Manager) StartEdit(rowIndex int, row frame.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.edits[rowIndex]; ok {
		return
	}
	m.edits[rowIndex] = &rowEdit{
		phase:    PhaseEditing,
		original: row,
		draft:    row.Clone(),
		touched:  make(map[string]struct{}),
	}
	m.logger.Debug("Row entered edit mode", zap.Int("row", rowIndex))
}

// UpdateDraft applies one edited cell value to the draft, parsed through
// the column's control.
func (m *Manager) UpdateDraft(rowIndex int, col types.ColumnConfig, raw any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edits[rowIndex]
	if !ok || e.phase != PhaseEditing {
		return fmt.Errorf("row %d is not being edited", rowIndex)
	}
	control := ControlFor(col.Edit.Editor.Type)
	value, err := control.Parse(raw, col.Edit.Editor)
	if err != nil {
		return err
	}
	e.draft[col.ID()] = value
	e.touched[col.ID()] = struct{}{}
	return nil
}

// Cancel discards the draft and returns the row to viewing. No request is
// issued.
func (m *Manager) Cancel(rowIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edits, rowIndex)
	m.logger.Debug("Row edit cancelled", zap.Int("row", rowIndex))
}

// Save persists the draft through the update request. On success the row
// returns to viewing; on failure the row stays in editing with a
// normalized error so the user can retry or cancel, and the original
// failure is returned for the calling control.
func (m *Manager) Save(ctx context.Context, rowIndex int, cfg types.TableRequestConfig, replace datasource.ReplaceVariables) error {
	m.mu.Lock()
	e, ok := m.edits[rowIndex]
	if !ok || e.phase == PhaseViewing {
		m.mu.Unlock()
		return fmt.Errorf("row %d is not being edited", rowIndex)
	}

	e.phase = PhaseSaving
	e.lastError = ""

	payload := map[string]any{"row": e.original}
	for key := range e.touched {
		payload[key] = e.draft[key]
	}
	// The lock is released for the duration of the request; overlapping
	// saves of the same row share one flight.
	m.mu.Unlock()

	_, err, _ := m.saves.Do(strconv.Itoa(rowIndex), func() (any, error) {
		resp, err := m.requester.Request(ctx, datasource.Request{
			DatasourceUID: cfg.Request.DatasourceUID,
			Query:         cfg.Request.Payload,
			Payload:       payload,
		}, replace)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			if len(resp.Errors) > 0 {
				return nil, fmt.Errorf("%s", datasource.NormalizeError(resp.Errors))
			}
			return nil, fmt.Errorf("%s", datasource.NormalizeError(nil))
		}
		return resp, nil
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	// The edit may have been cancelled or reset while the request ran.
	e, ok = m.edits[rowIndex]
	if err != nil {
		if ok {
			e.phase = PhaseEditing
			e.lastError = datasource.NormalizeError(err)
		}
		m.logger.Error("Row save failed", zap.Int("row", rowIndex), zap.Error(err))
		return err
	}

	delete(m.edits, rowIndex)
	m.logger.Debug("Row saved", zap.Int("row", rowIndex))
	return nil
}

// Reset drops all edit state; call when the dataset is replaced.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = make(map[int]*rowEdit)
}
