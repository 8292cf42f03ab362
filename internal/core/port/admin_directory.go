package port

import "context"

// AdminDirectory resolves the primary admin account id. Implementations may
// cache the lookup, but only behind an explicit TTL so an admin change is
// picked up without a process restart.
type AdminDirectory interface {
	PrimaryAdminID(ctx context.Context) (string, error)
}
