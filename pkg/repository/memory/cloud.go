package memory

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
)

type userListDoc struct {
	usernames []string
	updatedAt time.Time
}

// CloudStore keeps per-account user lists in process memory
type CloudStore struct {
	mu   sync.RWMutex
	docs map[string]userListDoc
}

var _ interfaces.CloudStore = &CloudStore{}

func NewCloudStore() *CloudStore {
	return &CloudStore{
		docs: make(map[string]userListDoc),
	}
}

func (s *CloudStore) LoadUserList(ctx context.Context, accountID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[accountID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, doc.usernames...), nil
}

func (s *CloudStore) SaveUserList(ctx context.Context, accountID string, usernames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[accountID] = userListDoc{
		usernames: append([]string{}, usernames...),
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// UpdatedAt returns when the account's list was last saved
func (s *CloudStore) UpdatedAt(accountID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[accountID]
	return doc.updatedAt, ok
}

func (s *CloudStore) Close() error {
	return nil
}
