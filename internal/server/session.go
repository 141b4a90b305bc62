package server

import (
	"fmt"
	"sync"

	"github.com/gridworks/datagrid-panel/internal/cards"
	"github.com/gridworks/datagrid-panel/internal/editor"
	"github.com/gridworks/datagrid-panel/internal/grid"
	"github.com/gridworks/datagrid-panel/internal/refresh"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/suggest"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Session is the live server-side state of one table: its engine, row
// editor, typeahead index and nested-object operations. Handlers
// serialize on mu; the engine itself is not safe for concurrent use.
type Session struct {
	mu sync.Mutex

	table   types.TableConfig
	engine  *grid.Engine
	editor  *editor.Manager
	suggest *suggest.Index
	cards   map[string]*cards.Operations
}

func (s *Server) newSession(table types.TableConfig) (*Session, error) {
	engine, err := grid.New(table, s.logger)
	if err != nil {
		return nil, err
	}
	index, err := suggest.NewIndex(s.logger)
	if err != nil {
		return nil, err
	}

	session := &Session{
		table:   table,
		engine:  engine,
		editor:  editor.NewManager(s.logger, s.requester, s.registry),
		suggest: index,
		cards:   make(map[string]*cards.Operations),
	}

	refresher := refresh.NewBroadcastRefresher(s.logger, s.bus)
	for _, col := range table.Items {
		if col.Type != types.CellNestedObjects || col.ObjectID == "" {
			continue
		}
		obj, ok := s.options.NestedObject(col.ObjectID)
		if !ok {
			return nil, fmt.Errorf("column %q references unknown nested object %q", col.ID(), col.ObjectID)
		}
		session.cards[obj.ID] = cards.NewOperations(s.logger, obj, s.requester, refresher, s.notifier)
	}
	return session, nil
}

// setData replaces the session's dataset: engine rebuild, edit state
// reset, select-option cache invalidation and typeahead reindex.
func (sess *Session) setData(s *Server, frames []frame.Frame) error {
	sess.engine.SetData(frames)
	sess.editor.Reset()
	s.registry.Invalidate()

	merged := s.sync.Sync(sess.table.Items, sess.engine.State().Filters)
	sess.engine.SetFilters(merged)

	return sess.reindex()
}

// reindex rebuilds the typeahead index over the filterable text columns.
func (sess *Session) reindex() error {
	rows := make([]frame.Row, 0)
	for i := 0; ; i++ {
		row, ok := sess.engine.RowAt(i)
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	for _, col := range sess.table.Items {
		if !col.Filter.Enabled {
			continue
		}
		id := col.ID()
		values := make([]any, 0, len(rows))
		for _, row := range rows {
			values = append(values, row[id])
		}
		if err := sess.suggest.IndexColumn(id, values); err != nil {
			return fmt.Errorf("failed to index column %q: %w", id, err)
		}
	}
	return nil
}
