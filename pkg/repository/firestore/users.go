package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type userDoc struct {
	LeetcodeUsers []string `firestore:"leetcodeUsers"`
	UpdatedAt     string   `firestore:"updatedAt"`
}

func (s *CloudStore) userDocRef(accountID string) *firestore.DocumentRef {
	return s.client.Collection(s.collectionPrefix + usersCollection).Doc(accountID)
}

func (s *CloudStore) LoadUserList(ctx context.Context, accountID string) ([]string, error) {
	if accountID == "" {
		return nil, goerr.New("empty account ID")
	}

	doc, err := s.userDocRef(accountID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return []string{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user list from firestore", goerr.V("accountID", accountID))
	}

	var data userDoc
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user list", goerr.V("accountID", accountID))
	}
	if data.LeetcodeUsers == nil {
		return []string{}, nil
	}

	return data.LeetcodeUsers, nil
}

func (s *CloudStore) SaveUserList(ctx context.Context, accountID string, usernames []string) error {
	if accountID == "" {
		return goerr.New("empty account ID")
	}
	if usernames == nil {
		usernames = []string{}
	}

	// Merge keeps any other fields a client may have written to the document
	data := map[string]interface{}{
		"leetcodeUsers": usernames,
		"updatedAt":     s.now().UTC().Format(time.RFC3339),
	}
	if _, err := s.userDocRef(accountID).Set(ctx, data, firestore.MergeAll); err != nil {
		return goerr.Wrap(err, "failed to save user list to firestore",
			goerr.V("accountID", accountID),
			goerr.V("count", len(usernames)))
	}

	return nil
}
