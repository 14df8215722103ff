package progress

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const progressCollection = "progress"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) Get(ctx context.Context, userID string) (*UserProgress, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	doc, err := r.client.Collection(progressCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return NewUserProgress(userID, time.Now().UTC()), nil
	}
	if err != nil {
		return nil, err
	}

	var p UserProgress
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	p.UserID = userID
	p.normalize()
	return &p, nil
}

// Update applies mutate inside a Firestore transaction so two concurrent
// answers never clobber each other's counter increments. The write is
// all-or-nothing: on conflict or unavailability no partial state persists and
// the error surfaces to the caller.
func (r *firestoreRepository) Update(ctx context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	docRef := r.client.Collection(progressCollection).Doc(userID)

	var updated *UserProgress
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var p UserProgress

		doc, err := tx.Get(docRef)
		if status.Code(err) == codes.NotFound {
			p = *NewUserProgress(userID, time.Now().UTC())
		} else if err != nil {
			return err
		} else {
			if err := doc.DataTo(&p); err != nil {
				return fmt.Errorf("unmarshal progress: %w", err)
			}
		}
		p.UserID = userID
		p.normalize()

		if err := mutate(&p); err != nil {
			return err
		}

		updated = &p
		return tx.Set(docRef, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *firestoreRepository) TopByXP(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	iter := r.client.Collection(progressCollection).
		OrderBy("stats.xp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	entries := make([]LeaderboardEntry, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var snapshot struct {
			Stats struct {
				XP    int `firestore:"xp"`
				Level int `firestore:"level"`
			} `firestore:"stats"`
		}
		if err := doc.DataTo(&snapshot); err != nil {
			continue // Skip invalid entries
		}

		entries = append(entries, LeaderboardEntry{
			UserID: doc.Ref.ID,
			XP:     snapshot.Stats.XP,
			Level:  snapshot.Stats.Level,
		})
	}
	return entries, nil
}
