// Package firestore backs the daily image-usage counter with Cloud
// Firestore, the production quota store shared by all server workers.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store implements domain.QuotaStore on a Firestore collection keyed
// by "<user_id>_<day>" documents.
type Store struct {
	client     *firestore.Client
	collection string
}

// NewStore creates a Firestore-backed quota store.
func NewStore(ctx context.Context, projectID, collection string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore quota store")
	}
	if collection == "" {
		collection = "tbl_image_usage"
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, collection: collection}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

type usageDoc struct {
	UserID string `firestore:"user_id"`
	Day    string `firestore:"date"`
	Images int    `firestore:"images_generated_today"`
}

func (s *Store) doc(userID, day string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(userID + "_" + day)
}

// IncrementAndGet runs a transaction that reads the current counter
// (implicit zero when the document is missing), adds one, writes it
// back and returns the new total. Firestore retries the transaction on
// contention, which preserves the atomic add-and-return contract.
func (s *Store) IncrementAndGet(ctx context.Context, userID, day string) (int, error) {
	var newTotal int

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := s.doc(userID, day)

		snap, err := tx.Get(ref)
		count := 0
		switch {
		case err == nil:
			var doc usageDoc
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("decode usage doc: %w", err)
			}
			count = doc.Images
		case status.Code(err) == codes.NotFound:
			// first image of the day
		default:
			return err
		}

		newTotal = count + 1
		return tx.Set(ref, usageDoc{
			UserID: userID,
			Day:    day,
			Images: newTotal,
		})
	})
	if err != nil {
		return 0, fmt.Errorf("firestore IncrementAndGet: %w", err)
	}
	return newTotal, nil
}

// Get reads the counter without modifying it.
func (s *Store) Get(ctx context.Context, userID, day string) (int, bool, error) {
	snap, err := s.doc(userID, day).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("firestore Get: %w", err)
	}

	var doc usageDoc
	if err := snap.DataTo(&doc); err != nil {
		return 0, false, fmt.Errorf("decode usage doc: %w", err)
	}
	return doc.Images, true, nil
}
