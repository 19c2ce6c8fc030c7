package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	rtdb "firebase.google.com/go/v4/db"
	"github.com/google/uuid"
)

// RealtimeStore is the path-addressed JSON tree holding live data (pet GPS fixes, chats).
type RealtimeStore interface {
	Set(ctx context.Context, path string, v interface{}) error
	// Get decodes the value at path into dst, or returns ErrNotFound if nothing is there.
	Get(ctx context.Context, path string, dst interface{}) error
	// Push appends v under path with a generated key and returns the key.
	Push(ctx context.Context, path string, v interface{}) (string, error)
	// Children returns the direct children of path ordered by a numeric child field.
	Children(ctx context.Context, path, orderBy string) ([]Snapshot, error)
}

// FirebaseRealtimeStore implements RealtimeStore on the Firebase Realtime Database.
type FirebaseRealtimeStore struct {
	client *rtdb.Client
}

// NewFirebaseRealtimeStore wraps a Firebase Realtime Database client.
func NewFirebaseRealtimeStore(client *rtdb.Client) *FirebaseRealtimeStore {
	return &FirebaseRealtimeStore{client: client}
}

func (s *FirebaseRealtimeStore) Set(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("realtime set %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseRealtimeStore) Get(ctx context.Context, path string, dst interface{}) error {
	var raw json.RawMessage
	if err := s.client.NewRef(path).Get(ctx, &raw); err != nil {
		return fmt.Errorf("realtime get %s: %w", path, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return json.Unmarshal(raw, dst)
}

func (s *FirebaseRealtimeStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("realtime push %s: %w", path, err)
	}
	return ref.Key, nil
}

func (s *FirebaseRealtimeStore) Children(ctx context.Context, path, orderBy string) ([]Snapshot, error) {
	nodes, err := s.client.NewRef(path).OrderByChild(orderBy).GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("realtime query %s: %w", path, err)
	}
	snaps := make([]Snapshot, 0, len(nodes))
	for _, n := range nodes {
		snaps = append(snaps, realtimeNode{node: n})
	}
	return snaps, nil
}

type realtimeNode struct {
	node rtdb.QueryNode
}

func (n realtimeNode) ID() string                   { return n.node.Key() }
func (n realtimeNode) DataTo(dst interface{}) error { return n.node.Unmarshal(dst) }

// MemoryRealtimeStore keeps the realtime tree in process memory. Values are stored as
// JSON by full path, so a Set on a parent does not expand into child paths.
type MemoryRealtimeStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryRealtimeStore returns an empty in-process RealtimeStore.
func NewMemoryRealtimeStore() *MemoryRealtimeStore {
	return &MemoryRealtimeStore{values: make(map[string][]byte)}
}

func cleanPath(path string) string {
	return strings.Trim(path, "/")
}

func (s *MemoryRealtimeStore) Set(_ context.Context, path string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("realtime set %s: %w", path, err)
	}
	s.mu.Lock()
	s.values[cleanPath(path)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryRealtimeStore) Get(_ context.Context, path string, dst interface{}) error {
	s.mu.RLock()
	raw, ok := s.values[cleanPath(path)]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return json.Unmarshal(raw, dst)
}

func (s *MemoryRealtimeStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := uuid.NewString()
	if err := s.Set(ctx, cleanPath(path)+"/"+key, v); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryRealtimeStore) Children(_ context.Context, path, orderBy string) ([]Snapshot, error) {
	prefix := cleanPath(path) + "/"

	type child struct {
		snap  jsonSnapshot
		order float64
	}
	var children []child

	s.mu.RLock()
	for p, raw := range s.values {
		key := strings.TrimPrefix(p, prefix)
		if key == p || strings.Contains(key, "/") {
			continue
		}
		var fields map[string]interface{}
		_ = json.Unmarshal(raw, &fields)
		order, _ := toFloat(fields[orderBy])
		children = append(children, child{snap: jsonSnapshot{id: key, raw: raw}, order: order})
	}
	s.mu.RUnlock()

	sort.SliceStable(children, func(i, j int) bool {
		if children[i].order != children[j].order {
			return children[i].order < children[j].order
		}
		return children[i].snap.id < children[j].snap.id
	})

	snaps := make([]Snapshot, 0, len(children))
	for _, c := range children {
		snaps = append(snaps, c.snap)
	}
	return snaps, nil
}
