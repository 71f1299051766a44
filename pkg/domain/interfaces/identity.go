package interfaces

import (
	"context"

	"github.com/secmon-lab/leetwatch/pkg/domain/model"
)

// Identity is the sign-in state of the process. Subscribers receive the
// current account (nil when signed out) once shortly after subscribing and
// then once per actual transition.
type Identity interface {
	SignIn(ctx context.Context, credential string) (*model.Account, error)
	SignOut(ctx context.Context) error
	Current() *model.Account
	Subscribe(handler func(*model.Account)) (unsubscribe func())
}
