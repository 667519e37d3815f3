package port

import "context"

// DecisionCache caches the resolved permission-name set for one
// (user, scope-key) pair. A miss is reported via the ok flag, never as
// an error; cache failures must not fail an authorization check.
type DecisionCache interface {
	Get(ctx context.Context, userID, scopeKey string) ([]string, bool, error)
	Set(ctx context.Context, userID, scopeKey string, permissions []string) error
	Invalidate(ctx context.Context, userID, scopeKey string) error
}
