package identity

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
)

const (
	// DefaultJWKSURL publishes the keys that sign Firebase ID tokens
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	issuerPrefix = "https://securetoken.google.com/"
)

// Firebase verifies Firebase Authentication ID tokens
type Firebase struct {
	*observable
	projectID string
	jwksURL   string
	skew      time.Duration
}

var _ interfaces.Identity = &Firebase{}

type FirebaseOption func(*Firebase)

// WithJWKSURL overrides the key set location
func WithJWKSURL(url string) FirebaseOption {
	return func(f *Firebase) {
		f.jwksURL = url
	}
}

// WithAcceptableSkew sets the allowed clock difference for exp/iat/nbf
func WithAcceptableSkew(d time.Duration) FirebaseOption {
	return func(f *Firebase) {
		f.skew = d
	}
}

func NewFirebase(projectID string, opts ...FirebaseOption) (*Firebase, error) {
	if projectID == "" {
		return nil, goerr.New("firebase project ID is required")
	}

	f := &Firebase{
		observable: newObservable(),
		projectID:  projectID,
		jwksURL:    DefaultJWKSURL,
		skew:       10 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firebase) SignIn(ctx context.Context, credential string) (*model.Account, error) {
	if credential == "" {
		return nil, goerr.Wrap(ErrInvalidCredential, "empty credential")
	}

	account, err := f.verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("signed in", "account_id", account.ID)
	f.set(account)
	return copyAccount(account), nil
}

func (f *Firebase) SignOut(ctx context.Context) error {
	f.set(nil)
	return nil
}

func (f *Firebase) verify(ctx context.Context, credential string) (*model.Account, error) {
	keySet, err := jwk.Fetch(ctx, f.jwksURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch firebase public keys", goerr.V("jwks_url", f.jwksURL))
	}

	token, err := jwt.Parse([]byte(credential),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAudience(f.projectID),
		jwt.WithIssuer(issuerPrefix+f.projectID),
		jwt.WithAcceptableSkew(f.skew),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidCredential, "failed to verify ID token", goerr.V("reason", err.Error()))
	}

	if token.Subject() == "" {
		return nil, goerr.Wrap(ErrInvalidCredential, "sub claim not found in token")
	}

	account := &model.Account{ID: token.Subject()}
	if v, ok := token.Get("email"); ok {
		if s, ok := v.(string); ok {
			account.Email = s
		}
	}
	if v, ok := token.Get("name"); ok {
		if s, ok := v.(string); ok {
			account.Name = s
		}
	}

	return account, nil
}
