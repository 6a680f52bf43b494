// Package mocksource provides a testify-based mock of the remote users
// source. Store, session and router tests use it to script fetch outcomes
// without a network.
package mocksource

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

// SourceMock implements the fetcher interface consumed by the user store.
type SourceMock struct {
	mock.Mock

	// OnFetchUsers, when set, replaces the testify expectation machinery.
	// Tests use it to block a fetch on a channel and release responses in
	// a chosen order.
	OnFetchUsers func(ctx context.Context) ([]models.User, error)
}

// FetchUsers returns the scripted users or error.
func (m *SourceMock) FetchUsers(ctx context.Context) ([]models.User, error) {
	if m.OnFetchUsers != nil {
		return m.OnFetchUsers(ctx)
	}

	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

// Gate is a scripted fetch response held back until Release is called.
type Gate struct {
	users   []models.User
	err     error
	release chan struct{}
}

func NewGate(users []models.User, err error) *Gate {
	return &Gate{
		users:   users,
		err:     err,
		release: make(chan struct{}),
	}
}

// Release lets the pending fetch return.
func (g *Gate) Release() {
	close(g.release)
}

// Sequence returns a fetch hook that hands out the gates in call order and
// blocks each call until its gate is released.
func Sequence(gates ...*Gate) (func(ctx context.Context) ([]models.User, error), <-chan struct{}) {
	calls := make(chan *Gate, len(gates))
	for _, gate := range gates {
		calls <- gate
	}
	started := make(chan struct{}, len(gates))

	return func(ctx context.Context) ([]models.User, error) {
		gate := <-calls
		started <- struct{}{}

		select {
		case <-gate.release:
			return gate.users, gate.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, started
}
