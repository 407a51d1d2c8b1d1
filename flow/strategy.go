package flow

import (
	"context"

	"github.com/pongsapak26/Bullet-Journal/identity"
)

// LoginStrategy authenticates a user for a specific method. Both paths
// resolve to the same upsert-on-verify account provisioning: the magic-link
// strategy takes (email, token), the code-exchange strategy takes
// (provider, code).
type LoginStrategy interface {
	ID() string
	Authenticate(ctx context.Context, identifier, secret string) (*identity.Upsert, error)
}

// Initiator is implemented by strategies that begin authentication
// server-side, e.g. by issuing a magic-link token.
type Initiator interface {
	Initiate(ctx context.Context, identifier string) (any, error)
}
