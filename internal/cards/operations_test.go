package cards

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/internal/datasource"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

type fakeRequester struct {
	requests []datasource.Request
	resp     *datasource.Response
	err      error
}

func (f *fakeRequester) Request(_ context.Context, req datasource.Request, _ datasource.ReplaceVariables) (*datasource.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &datasource.Response{State: datasource.StateDone}, nil
}

type fakeNotifier struct {
	successes []string
	failures  []string
}

func (n *fakeNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *fakeNotifier) Failure(msg string) { n.failures = append(n.failures, msg) }

type countingRefresher struct{ count int }

func (r *countingRefresher) Refresh() { r.count++ }

func commentsConfig() types.NestedObjectConfig {
	enabled := types.NestedRequestConfig{
		Enabled: true,
		Request: types.RequestConfig{DatasourceUID: "ds-1"},
	}
	return types.NestedObjectConfig{
		ID:     "comments",
		Name:   "Comment",
		Type:   types.NestedObjectCards,
		Get:    enabled,
		Add:    enabled,
		Update: enabled,
		Delete: enabled,
		Editor: types.CardsEditorConfig{IDField: "id", BodyField: "text"},
	}
}

func newTestOperations(cfg types.NestedObjectConfig, requester datasource.Requester) (*Operations, *fakeNotifier, *countingRefresher) {
	notifier := &fakeNotifier{}
	refresher := &countingRefresher{}
	return NewOperations(zap.NewNop(), cfg, requester, refresher, notifier), notifier, refresher
}

func TestGet(t *testing.T) {
	requester := &fakeRequester{resp: &datasource.Response{
		State: datasource.StateDone,
		Data: []map[string]any{
			{"id": "c-1", "text": "first"},
			{"id": "c-2", "text": "second"},
		},
	}}
	ops, _, _ := newTestOperations(commentsConfig(), requester)
	row := frame.Row{"A:service": "checkout"}

	items, err := ops.Get(context.Background(), contextutil.User{}, nil, row, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c-1", items[0].ID)
	assert.Equal(t, "second", items[1].Body)

	require.Len(t, requester.requests, 1)
	assert.Equal(t, row, requester.requests[0].Payload["row"], "the owning row rides along")
}

func TestGetDisabled(t *testing.T) {
	cfg := commentsConfig()
	cfg.Get.Enabled = false
	ops, _, _ := newTestOperations(cfg, &fakeRequester{})

	_, err := ops.Get(context.Background(), contextutil.User{}, nil, frame.Row{}, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestGetPermissionDenied(t *testing.T) {
	cfg := commentsConfig()
	cfg.Get.Permission = types.PermissionConfig{
		Mode:     types.PermissionUserRole,
		UserRole: []types.OrgRole{types.RoleAdmin},
	}
	ops, _, _ := newTestOperations(cfg, &fakeRequester{})

	_, err := ops.Get(context.Background(), contextutil.User{OrgRole: types.RoleViewer}, nil, frame.Row{}, nil)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestAddSuccess(t *testing.T) {
	requester := &fakeRequester{}
	ops, notifier, refresher := newTestOperations(commentsConfig(), requester)
	item := NewItem("", "a comment", "sam")

	err := ops.Add(context.Background(), contextutil.User{}, nil, frame.Row{}, item, nil)
	require.NoError(t, err)

	require.Len(t, requester.requests, 1)
	sent, ok := requester.requests[0].Payload["item"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a comment", sent["text"], "the item is sent in remote field names")

	require.Len(t, notifier.successes, 1)
	assert.Equal(t, "Comment added", notifier.successes[0])
	assert.Empty(t, notifier.failures)
	assert.Equal(t, 1, refresher.count, "a successful mutation triggers a refresh")
	assert.Empty(t, ops.LastError())
}

func TestAddFailure(t *testing.T) {
	requester := &fakeRequester{resp: &datasource.Response{
		State:  datasource.StateError,
		Errors: []string{"insert rejected"},
	}}
	ops, notifier, refresher := newTestOperations(commentsConfig(), requester)

	err := ops.Add(context.Background(), contextutil.User{}, nil, frame.Row{}, NewItem("", "x", ""), nil)
	require.Error(t, err)

	assert.Equal(t, "insert rejected", ops.LastError())
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, "Failed to add Comment: insert rejected", notifier.failures[0])
	assert.Empty(t, notifier.successes)
	assert.Equal(t, 0, refresher.count, "a failed mutation never refreshes")
}

func TestLastErrorClearsOnNextAttempt(t *testing.T) {
	requester := &fakeRequester{err: fmt.Errorf("network down")}
	ops, _, _ := newTestOperations(commentsConfig(), requester)

	require.Error(t, ops.Add(context.Background(), contextutil.User{}, nil, frame.Row{}, NewItem("", "x", ""), nil))
	assert.Equal(t, "network down", ops.LastError())

	requester.err = nil
	require.NoError(t, ops.Add(context.Background(), contextutil.User{}, nil, frame.Row{}, NewItem("", "y", ""), nil))
	assert.Empty(t, ops.LastError())
}

func TestUpdateNilItemIsNoOp(t *testing.T) {
	requester := &fakeRequester{}
	ops, notifier, refresher := newTestOperations(commentsConfig(), requester)

	err := ops.Update(context.Background(), contextutil.User{}, nil, frame.Row{}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, requester.requests)
	assert.Empty(t, notifier.successes)
	assert.Equal(t, 0, refresher.count)
}

func TestDelete(t *testing.T) {
	requester := &fakeRequester{}
	ops, notifier, _ := newTestOperations(commentsConfig(), requester)

	err := ops.Delete(context.Background(), contextutil.User{}, nil, frame.Row{}, Item{ID: "c-1"}, nil)
	require.NoError(t, err)
	require.Len(t, notifier.successes, 1)
	assert.Equal(t, "Comment deleted", notifier.successes[0])
}
