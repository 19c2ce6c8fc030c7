package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on top of a Cloud Firestore client.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore wraps an initialised Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for FirestoreStore.")
	}
	return &FirestoreStore{client: client, logger: logger}
}

func (s *FirestoreStore) ref(collection, id string) *firestore.DocumentRef {
	if id == "" {
		return s.client.Collection(collection).NewDoc()
	}
	return s.client.Collection(collection).Doc(id)
}

// Create writes a new document and fails with ErrAlreadyExists when the ID is taken.
func (s *FirestoreStore) Create(ctx context.Context, collection, id string, doc interface{}) (string, error) {
	docRef := s.ref(collection, id)
	_, err := docRef.Create(ctx, stampMap(doc, firestore.ServerTimestamp))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("%s/%s: %w", collection, docRef.ID, ErrAlreadyExists)
		}
		s.logger.Error("Firestore create failed", zap.String("collection", collection), zap.String("id", docRef.ID), zap.Error(err))
		return "", fmt.Errorf("failed to create %s/%s: %w", collection, docRef.ID, err)
	}
	return docRef.ID, nil
}

// Get decodes a single document into dst.
func (s *FirestoreStore) Get(ctx context.Context, collection, id string, dst interface{}) error {
	if id == "" {
		return notFound(collection, id)
	}
	snap, err := s.ref(collection, id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(collection, id)
		}
		s.logger.Error("Firestore get failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

// Find runs an equality query. The filters are combined with AND on the server.
func (s *FirestoreStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	query := s.client.Collection(collection).Query
	for _, f := range filters {
		query = query.Where(f.Field, "==", f.Value)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var snaps []Snapshot
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			s.logger.Error("Firestore query failed", zap.String("collection", collection), zap.Error(err))
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}
		snaps = append(snaps, firestoreSnapshot{doc})
	}
	return snaps, nil
}

// Update merges fields into an existing document. The document must exist.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	_, err := s.ref(collection, id).Update(ctx, toFirestoreUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(collection, id)
		}
		s.logger.Error("Firestore update failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document without checking that it exists.
// Subcollections and documents referencing it are left untouched.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.ref(collection, id).Delete(ctx); err != nil {
		s.logger.Error("Firestore delete failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// RunTransaction runs fn in a Firestore transaction. Firestore retries fn on contention.
func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: t})
	})
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

type firestoreSnapshot struct {
	doc *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string                   { return s.doc.Ref.ID }
func (s firestoreSnapshot) DataTo(dst interface{}) error { return s.doc.DataTo(dst) }

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) Get(collection, id string, dst interface{}) error {
	snap, err := t.tx.Get(t.store.ref(collection, id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(collection, id)
		}
		return fmt.Errorf("failed to get %s/%s in transaction: %w", collection, id, err)
	}
	return snap.DataTo(dst)
}

func (t *firestoreTx) Create(collection, id string, doc interface{}) error {
	return t.tx.Create(t.store.ref(collection, id), stampMap(doc, firestore.ServerTimestamp))
}

func (t *firestoreTx) Set(collection, id string, doc interface{}) error {
	return t.tx.Set(t.store.ref(collection, id), doc)
}

func (t *firestoreTx) Update(collection, id string, fields map[string]interface{}) error {
	return t.tx.Update(t.store.ref(collection, id), toFirestoreUpdates(fields))
}

// toFirestoreUpdates converts a field map into Firestore updates, in a stable order,
// always bumping updatedAt with the server time.
func toFirestoreUpdates(fields map[string]interface{}) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == fieldUpdatedAt {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys)+1)
	for _, k := range keys {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: fields[k]})
	}
	return append(updates, firestore.Update{Path: fieldUpdatedAt, Value: firestore.ServerTimestamp})
}
