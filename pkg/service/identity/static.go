package identity

import (
	"context"

	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
)

// Static signs in a fixed account regardless of the credential. It backs
// single-user deployments without an identity provider.
type Static struct {
	*observable
	account model.Account
}

var _ interfaces.Identity = &Static{}

func NewStatic(account model.Account) *Static {
	return &Static{
		observable: newObservable(),
		account:    account,
	}
}

func (s *Static) SignIn(ctx context.Context, credential string) (*model.Account, error) {
	s.set(&s.account)
	return copyAccount(&s.account), nil
}

func (s *Static) SignOut(ctx context.Context) error {
	s.set(nil)
	return nil
}
