package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/domain/model"
	"github.com/secmon-lab/leetwatch/pkg/service/identity"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	IdentityFirebase = "firebase"
	IdentityStatic   = "static"
	IdentityNone     = "none"
)

// Identity holds CLI flags for the sign-in provider
type Identity struct {
	provider          string
	firebaseProjectID string
	staticAccountID   string
	staticEmail       string
}

func (x *Identity) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "identity",
			Category:    "Authentication",
			Usage:       "Identity provider (firebase, static or none)",
			Value:       IdentityNone,
			Sources:     cli.EnvVars("LEETWATCH_IDENTITY"),
			Destination: &x.provider,
		},
		&cli.StringFlag{
			Name:        "firebase-project-id",
			Category:    "Authentication",
			Usage:       "Firebase project whose ID tokens are accepted",
			Sources:     cli.EnvVars("LEETWATCH_FIREBASE_PROJECT_ID"),
			Destination: &x.firebaseProjectID,
		},
		&cli.StringFlag{
			Name:        "static-account-id",
			Category:    "Authentication",
			Usage:       "Account signed in by the static provider (development only)",
			Value:       "local",
			Sources:     cli.EnvVars("LEETWATCH_STATIC_ACCOUNT_ID"),
			Destination: &x.staticAccountID,
		},
		&cli.StringFlag{
			Name:        "static-account-email",
			Category:    "Authentication",
			Usage:       "Email of the static account",
			Sources:     cli.EnvVars("LEETWATCH_STATIC_ACCOUNT_EMAIL"),
			Destination: &x.staticEmail,
		},
	}
}

func (x Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", x.provider),
		slog.String("firebase_project_id", x.firebaseProjectID),
	)
}

// Configure builds the identity provider, or returns nil when sign-in is disabled
func (x *Identity) Configure() (interfaces.Identity, error) {
	switch x.provider {
	case IdentityNone, "":
		return nil, nil

	case IdentityFirebase:
		if x.firebaseProjectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firebase-project-id is required when using firebase identity",
				goerr.V(FlagKey, "firebase-project-id"))
		}
		provider, err := identity.NewFirebase(x.firebaseProjectID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firebase identity")
		}
		logging.Default().Info("Firebase sign-in enabled", "project_id", x.firebaseProjectID)
		return provider, nil

	case IdentityStatic:
		if x.staticAccountID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "static-account-id is required when using static identity",
				goerr.V(FlagKey, "static-account-id"))
		}
		logging.Default().Warn("Static sign-in enabled (development only)", "account_id", x.staticAccountID)
		return identity.NewStatic(model.Account{ID: x.staticAccountID, Email: x.staticEmail}), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid identity provider", goerr.V(BackendKey, x.provider))
	}
}
