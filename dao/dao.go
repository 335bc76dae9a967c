// api/dao/dao.go
package dao

import (
	"context"
	"time"

	helper_util "github.com/mapcanvas/atlas/api/util/helper"
)

// RequestingUserKey is the context key under which request handling
// records the acting user's username for audit trails.
const RequestingUserKey = "requestingUsername"

func requestingUsername(ctx context.Context) string {
	if v, ok := ctx.Value(RequestingUserKey).(string); ok {
		return v
	}
	return ""
}

// Property accessors tolerating absent or differently-typed values.
// Neo4j drops null properties entirely, so optional fields need the
// lenient form.

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func boolProp(props map[string]interface{}, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func timeProp(props map[string]interface{}, key string) time.Time {
	if v, ok := props[key].(string); ok {
		if parsed, err := helper_util.ParseTime(v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
