package cards

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/internal/editor"
	"github.com/gridworks/datagrid-panel/internal/refresh"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Notifier is the host's alert channel for operation outcomes.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// ErrNotAllowed marks an operation rejected by its enable flag or
// permission before any request is made.
var ErrNotAllowed = fmt.Errorf("operation not allowed")

// Operations performs the CRUD legs of one nested object type. Each leg:
// clear the previous error, issue the request, surface failures through
// the notifier and keep them locally, and on success notify and trigger
// the composed refresher. Concurrent mutations of the same item collapse
// onto one in-flight request.
type Operations struct {
	cfg       types.NestedObjectConfig
	mapper    Mapper
	requester datasource.Requester
	refresher refresh.Refresher
	notifier  Notifier
	logger    *zap.Logger

	inflight  singleflight.Group
	lastError string
}

func NewOperations(log *zap.Logger, cfg types.NestedObjectConfig, requester datasource.Requester, refresher refresh.Refresher, notifier Notifier) *Operations {
	return &Operations{
		cfg:       cfg,
		mapper:    NewMapper(cfg.Editor),
		requester: requester,
		refresher: refresher,
		notifier:  notifier,
		logger:    log,
	}
}

// Mapper exposes the configured field mapping.
func (o *Operations) Mapper() Mapper { return o.mapper }

// LastError returns the error kept from the most recent failed operation;
// empty after a success.
func (o *Operations) LastError() string { return o.lastError }

// Get fetches the row's items and normalizes them through the mapper.
func (o *Operations) Get(ctx context.Context, user contextutil.User, frames []frame.Frame, row frame.Row, replace datasource.ReplaceVariables) ([]Item, error) {
	if !o.cfg.Get.Enabled || !editor.Allowed(o.cfg.Get.Permission, user, frames) {
		return nil, ErrNotAllowed
	}
	payloads, err := o.fetch(ctx, row, replace)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, o.mapper.CreateObject(p))
	}
	return items, nil
}

// Add creates a new item for the row.
func (o *Operations) Add(ctx context.Context, user contextutil.User, frames []frame.Frame, row frame.Row, item Item, replace datasource.ReplaceVariables) error {
	if !o.cfg.Add.Enabled || !editor.Allowed(o.cfg.Add.Permission, user, frames) {
		return ErrNotAllowed
	}
	return o.mutate(ctx, "add", o.cfg.Add.Request, row, &item, replace)
}

// Update persists an edited item. A nil payload (the editor was dismissed
// without a value) is a silent no-op.
func (o *Operations) Update(ctx context.Context, user contextutil.User, frames []frame.Frame, row frame.Row, item *Item, replace datasource.ReplaceVariables) error {
	if item == nil {
		return nil
	}
	if !o.cfg.Update.Enabled || !editor.Allowed(o.cfg.Update.Permission, user, frames) {
		return ErrNotAllowed
	}
	return o.mutate(ctx, "update", o.cfg.Update.Request, row, item, replace)
}

// Delete removes an item from the row.
func (o *Operations) Delete(ctx context.Context, user contextutil.User, frames []frame.Frame, row frame.Row, item Item, replace datasource.ReplaceVariables) error {
	if !o.cfg.Delete.Enabled || !editor.Allowed(o.cfg.Delete.Permission, user, frames) {
		return ErrNotAllowed
	}
	return o.mutate(ctx, "delete", o.cfg.Delete.Request, row, &item, replace)
}

func (o *Operations) fetch(ctx context.Context, row frame.Row, replace datasource.ReplaceVariables) ([]map[string]any, error) {
	resp, err := o.requester.Request(ctx, datasource.Request{
		DatasourceUID: o.cfg.Get.Request.DatasourceUID,
		Query:         o.cfg.Get.Request.Payload,
		Payload:       map[string]any{"row": row},
	}, replace)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%s", datasource.NormalizeError(resp.Errors))
	}
	return resp.Data, nil
}

func (o *Operations) mutate(ctx context.Context, op string, request types.RequestConfig, row frame.Row, item *Item, replace datasource.ReplaceVariables) error {
	o.lastError = ""

	key := op + "\x00" + fmt.Sprint(item.ID)
	_, err, _ := o.inflight.Do(key, func() (any, error) {
		resp, err := o.requester.Request(ctx, datasource.Request{
			DatasourceUID: request.DatasourceUID,
			Query:         request.Payload,
			Payload: map[string]any{
				"row":  row,
				"item": o.mapper.GetPayload(*item),
			},
		}, replace)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return nil, fmt.Errorf("%s", datasource.NormalizeError(resp.Errors))
		}
		return resp, nil
	})

	if err != nil {
		o.lastError = datasource.NormalizeError(err)
		o.notifier.Failure(fmt.Sprintf("Failed to %s %s: %s", op, o.cfg.Name, o.lastError))
		o.logger.Error("Nested object operation failed",
			zap.String("object", o.cfg.ID),
			zap.String("operation", op),
			zap.Error(err))
		return err
	}

	past := map[string]string{"add": "added", "update": "updated", "delete": "deleted"}
	o.notifier.Success(fmt.Sprintf("%s %s", o.cfg.Name, past[op]))
	o.logger.Debug("Nested object operation finished",
		zap.String("object", o.cfg.ID),
		zap.String("operation", op))
	o.refresher.Refresh()
	return nil
}
