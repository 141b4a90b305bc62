package contextutil

import (
	"context"

	"github.com/gridworks/datagrid-panel/pkg/types"
)

type contextKey string

const userContextKey contextKey = "user"

// User is the viewing context permissions are evaluated against.
type User struct {
	Login   string
	OrgRole types.OrgRole
}

// SetUser stores the requesting user in the context
func SetUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUser retrieves the requesting user from the context
func GetUser(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey).(User)
	return user, ok
}
