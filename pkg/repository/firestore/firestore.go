package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
	"google.golang.org/api/option"
)

// CloudStore keeps each account's tracked user list in Firestore
type CloudStore struct {
	client           *firestore.Client
	collectionPrefix string
	now              func() time.Time
	clientOptions    []option.ClientOption
}

var _ interfaces.CloudStore = &CloudStore{}

type Option func(*CloudStore)

func WithCollectionPrefix(prefix string) Option {
	return func(s *CloudStore) {
		s.collectionPrefix = prefix
	}
}

// WithClientOptions passes options such as credentials to the Firestore client
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *CloudStore) {
		s.clientOptions = append(s.clientOptions, opts...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *CloudStore) {
		s.now = now
	}
}

// New connects to databaseID in projectID. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*CloudStore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	s := &CloudStore{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, s.clientOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}
	s.client = client

	return s, nil
}

func (s *CloudStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
