package editor

import (
	"github.com/gridworks/datagrid-panel/internal/contextutil"
	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/frame"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Allowed evaluates a permission descriptor for the given viewing context.
// Query-mode permissions read the last non-null value of the designated
// boolean field.
func Allowed(perm types.PermissionConfig, user contextutil.User, frames []frame.Frame) bool {
	switch perm.Mode {
	case types.PermissionUserRole:
		for _, role := range perm.UserRole {
			if role == user.OrgRole {
				return true
			}
		}
		return false
	case types.PermissionQuery:
		if perm.Field == nil {
			return false
		}
		f := frame.LookupField(frames, *perm.Field)
		if f == nil {
			return false
		}
		v, ok := f.LastNonNil()
		if !ok {
			return false
		}
		return coerceBool(v)
	default:
		return true
	}
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	default:
		n, ok := filtering.CoerceFloat(v)
		return ok && n != 0
	}
}
