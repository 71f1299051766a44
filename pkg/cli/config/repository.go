package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"github.com/secmon-lab/leetwatch/pkg/repository"
	"github.com/secmon-lab/leetwatch/pkg/repository/firestore"
	"github.com/secmon-lab/leetwatch/pkg/repository/memory"
	"github.com/secmon-lab/leetwatch/pkg/repository/sqlstore"
	"github.com/secmon-lab/leetwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendNone      = "none"
)

// Repository holds CLI flags for the local store and the cloud store
type Repository struct {
	localBackend string
	sqlitePath   string
	postgresDSN  string `masq:"secret"`

	cloudBackend     string
	projectID        string
	databaseID       string
	collectionPrefix string
	credentialsFile  string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "local-backend",
			Category:    "Storage",
			Usage:       "Local store backend (sqlite, postgres or memory)",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("LEETWATCH_LOCAL_BACKEND"),
			Destination: &r.localBackend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Category:    "Storage",
			Usage:       "SQLite database file",
			Value:       "leetwatch.db",
			Sources:     cli.EnvVars("LEETWATCH_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Category:    "Storage",
			Usage:       "PostgreSQL DSN (required when using postgres backend)",
			Sources:     cli.EnvVars("LEETWATCH_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
		&cli.StringFlag{
			Name:        "cloud-backend",
			Category:    "Storage",
			Usage:       "Cloud store backend for signed-in sync (firestore, memory or none)",
			Value:       BackendNone,
			Sources:     cli.EnvVars("LEETWATCH_CLOUD_BACKEND"),
			Destination: &r.cloudBackend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Category:    "Storage",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("LEETWATCH_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Category:    "Storage",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("LEETWATCH_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Category:    "Storage",
			Usage:       "Prefix of Firestore collection names",
			Sources:     cli.EnvVars("LEETWATCH_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "firestore-credentials",
			Category:    "Storage",
			Usage:       "Service account key file for Firestore. Application default credentials are used when empty",
			Sources:     cli.EnvVars("LEETWATCH_FIRESTORE_CREDENTIALS"),
			Destination: &r.credentialsFile,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("local_backend", r.localBackend),
		slog.String("sqlite_path", r.sqlitePath),
		slog.String("cloud_backend", r.cloudBackend),
		slog.String("firestore_project_id", r.projectID),
		slog.String("firestore_database_id", r.databaseID),
	)
}

// ConfigureLocal opens the local store. The caller is responsible for
// calling Close() on the returned store.
func (r *Repository) ConfigureLocal(ctx context.Context) (*repository.LocalStore, error) {
	var kv interfaces.KeyValueStore

	switch r.localBackend {
	case BackendSQLite:
		if r.sqlitePath == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "sqlite-path is required", goerr.V(FlagKey, "sqlite-path"))
		}
		store, err := sqlstore.New(ctx, sqlstore.DriverSQLite, r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open sqlite store")
		}
		logging.Default().Info("Using SQLite local store", "path", r.sqlitePath)
		kv = store

	case BackendPostgres:
		if r.postgresDSN == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "postgres-dsn is required", goerr.V(FlagKey, "postgres-dsn"))
		}
		store, err := sqlstore.New(ctx, sqlstore.DriverPostgres, r.postgresDSN)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open postgres store")
		}
		logging.Default().Info("Using PostgreSQL local store")
		kv = store

	case BackendMemory:
		logging.Default().Info("Using in-memory local store (state is lost on exit)")
		kv = memory.NewKeyValueStore()

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid local backend", goerr.V(BackendKey, r.localBackend))
	}

	return repository.NewLocalStore(kv), nil
}

// ConfigureCloud opens the cloud store, or returns nil when sync is disabled
func (r *Repository) ConfigureCloud(ctx context.Context) (interfaces.CloudStore, error) {
	switch r.cloudBackend {
	case BackendNone, "":
		return nil, nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required when using firestore backend",
				goerr.V(FlagKey, "firestore-project-id"))
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		if r.credentialsFile != "" {
			opts = append(opts, firestore.WithClientOptions(option.WithCredentialsFile(r.credentialsFile)))
		}
		store, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore cloud store")
		}
		logging.Default().Info("Using Firestore cloud store",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return store, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory cloud store (development mode)")
		return memory.NewCloudStore(), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid cloud backend", goerr.V(BackendKey, r.cloudBackend))
	}
}
