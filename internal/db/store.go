package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Collection names shared by every backend.
const (
	UsersCollection         = "users"
	PetsCollection          = "pets"
	ServicesCollection      = "services"
	BookingsCollection      = "bookings"
	BookingKeysCollection   = "bookingKeys"
	PaymentsCollection      = "payments"
	NotificationsCollection = "notifications"
	OutboxCollection        = "outbox"
	CountersCollection      = "counters"
)

// Timestamp field names stamped by the store.
const (
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the document ID is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// Filter is an equality condition on a top-level document field.
type Filter struct {
	Field string
	Value interface{}
}

// Where builds an equality Filter.
func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// Snapshot is a document read from a Find query.
type Snapshot interface {
	ID() string
	DataTo(dst interface{}) error
}

// Store is a schemaless document store organised in collections.
// Documents are structs tagged with matching `json` and `firestore` names, or plain maps.
type Store interface {
	// Create writes a new document. An empty id lets the backend allocate one.
	// createdAt/updatedAt are stamped on map documents that do not carry them.
	Create(ctx context.Context, collection, id string, doc interface{}) (string, error)
	// Get decodes the document into dst or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, dst interface{}) error
	// Find returns the documents matching all filters.
	Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error)
	// Update merges fields into an existing document and bumps updatedAt.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// RunTransaction runs fn atomically. fn may be retried by the backend.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Tx is the set of operations available inside RunTransaction.
// Backends that require it (Firestore) expect all reads before the first write.
type Tx interface {
	Get(collection, id string, dst interface{}) error
	Create(collection, id string, doc interface{}) error
	Set(collection, id string, doc interface{}) error
	Update(collection, id string, fields map[string]interface{}) error
}

// stampMap adds createdAt/updatedAt to map documents when missing. stamp is either a
// wall-clock time or a backend sentinel such as firestore.ServerTimestamp.
func stampMap(doc interface{}, stamp interface{}) interface{} {
	m, ok := doc.(map[string]interface{})
	if !ok {
		return doc
	}
	out := make(map[string]interface{}, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	if _, ok := out[fieldCreatedAt]; !ok {
		out[fieldCreatedAt] = stamp
	}
	if _, ok := out[fieldUpdatedAt]; !ok {
		out[fieldUpdatedAt] = stamp
	}
	return out
}

// valuesEqual compares a stored value with a filter value. Numbers compare by value
// regardless of their Go type, since JSON-backed stores decode every number as float64.
func valuesEqual(stored, want interface{}) bool {
	if sf, ok := toFloat(stored); ok {
		if wf, ok := toFloat(want); ok {
			return sf == wf
		}
		return false
	}
	if s, ok := stored.(string); ok {
		w := reflect.ValueOf(want)
		return w.Kind() == reflect.String && s == w.String()
	}
	return reflect.DeepEqual(stored, want)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// notFound wraps ErrNotFound with the document path.
func notFound(collection, id string) error {
	return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
}

// NewDocumentID returns a random 20 character document ID, the same length Firestore allocates.
// IDs are needed up front when a document is created inside a transaction.
func NewDocumentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// decodeAll decodes every snapshot and lets setID copy the document ID into the model.
// Documents that fail to decode are skipped and reported to onErr.
func decodeAll[T any](snaps []Snapshot, setID func(*T, string), onErr func(id string, err error)) []*T {
	out := make([]*T, 0, len(snaps))
	for _, snap := range snaps {
		var v T
		if err := snap.DataTo(&v); err != nil {
			if onErr != nil {
				onErr(snap.ID(), err)
			}
			continue
		}
		setID(&v, snap.ID())
		out = append(out, &v)
	}
	return out
}
