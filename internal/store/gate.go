package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moviex/internal/shared"
)

// Confirmer obtains a username from the user.
type Confirmer interface {
	ConfirmUsername(ctx context.Context) (string, error)
}

// ConfirmerFunc adapts a function to [Confirmer].
type ConfirmerFunc func(ctx context.Context) (string, error)

func (f ConfirmerFunc) ConfirmUsername(ctx context.Context) (string, error) {
	return f(ctx)
}

// Gate holds back mutations until the store knows who is making them.
type Gate struct {
	Confirmer Confirmer
}

// Run calls action with the current username, asking the [Confirmer] first when there is none.
//
// A confirmed username is dispatched with [SetCurrentUsername] before action runs.
// A blank answer, a missing Confirmer or a Confirmer error returns [shared.ErrUsernameRequired]
// without calling action.
func (g Gate) Run(ctx context.Context, s *Store, action func(username string) error) error {
	if name := s.State().CurrentUsername; name != "" {
		return action(name)
	}

	if g.Confirmer == nil {
		return shared.ErrUsernameRequired
	}

	name, err := g.Confirmer.ConfirmUsername(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUsernameRequired, err)
	}
	if strings.TrimSpace(name) == "" {
		return shared.ErrUsernameRequired
	}

	s.Dispatch(SetCurrentUsername(name))
	return action(name)
}
