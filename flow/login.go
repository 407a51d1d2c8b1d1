package flow

import (
	"context"
	"fmt"

	"github.com/pongsapak26/Bullet-Journal/identity"
)

// Manager dispatches login calls to registered strategies by method name.
type Manager struct {
	strategies map[string]LoginStrategy
}

func NewManager() *Manager {
	return &Manager{strategies: make(map[string]LoginStrategy)}
}

func (m *Manager) RegisterStrategy(s LoginStrategy) {
	m.strategies[s.ID()] = s
}

// Initiate begins authentication for the given method. The result depends on
// the strategy: the magic-link strategy returns the issued *domain.AuthToken
// for out-of-band delivery.
func (m *Manager) Initiate(ctx context.Context, method, identifier string) (any, error) {
	strategy, ok := m.strategies[method]
	if !ok {
		return nil, fmt.Errorf("login: unknown method %q", method)
	}
	init, ok := strategy.(Initiator)
	if !ok {
		return nil, fmt.Errorf("login: method %q cannot initiate", method)
	}
	return init.Initiate(ctx, identifier)
}

// Authenticate delegates to the strategy for method.
func (m *Manager) Authenticate(ctx context.Context, method, identifier, secret string) (*identity.Upsert, error) {
	strategy, ok := m.strategies[method]
	if !ok {
		return nil, fmt.Errorf("login: unknown method %q", method)
	}
	return strategy.Authenticate(ctx, identifier, secret)
}
