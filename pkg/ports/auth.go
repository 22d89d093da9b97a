package ports

import (
	"context"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Authenticator signs users in.
// Refusals must wrap domain.ErrAuthFailure.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
}
