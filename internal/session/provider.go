package session

import (
	"context"
	"errors"
)

// Sentinel errors for session-level failures.
var (
	ErrProviderUnavailable = errors.New("signing provider unavailable")
	ErrAccessDenied        = errors.New("wallet access denied")
	ErrUnknownAccount      = errors.New("account not known to this session")
)

// Provider is the external signing capability (e.g. a browser wallet
// extension bridge). The manager treats any unexpected provider failure as
// ErrProviderUnavailable; a user decline must be reported by RequestAccess
// as ErrAccessDenied.
type Provider interface {
	IsAvailable(ctx context.Context) (bool, error)
	IsAuthorized(ctx context.Context) (bool, error)
	RequestAccess(ctx context.Context) (string, error)
}
