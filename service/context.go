// api/service/context.go
package service

import "context"

type contextKey string

const silentMutationKey contextKey = "silentMutation"

// WithSilentMutations marks every mutation on the request as exempt
// from the activity feed. Only the dataset owner may ask for this.
func WithSilentMutations(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentMutationKey, true)
}

func silentMutations(ctx context.Context) bool {
	silent, _ := ctx.Value(silentMutationKey).(bool)
	return silent
}
