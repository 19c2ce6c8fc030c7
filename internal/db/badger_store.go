package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// zeroTime is how an unset time.Time looks once encoded to JSON.
const zeroTime = "0001-01-01T00:00:00Z"

const maxTxnRetries = 5

// BadgerOptions configures the embedded store.
type BadgerOptions struct {
	Path     string
	InMemory bool
}

// BadgerStore implements Store on an embedded BadgerDB. Documents are JSON encoded
// under the key "<collection>/<id>".
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
	now    func() time.Time
}

// badgerLogger routes BadgerDB's internal logging through zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }

// OpenBadgerStore opens (or creates) a BadgerDB at opts.Path, or in memory.
func OpenBadgerStore(opts BadgerOptions, logger *zap.Logger) (*BadgerStore, error) {
	if !opts.InMemory && opts.Path == "" {
		return nil, errors.New("badger path is required for a persistent store")
	}

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", opts.Path, err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithLogger(badgerLogger{sugar: logger.Named("badger").Sugar()})

	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	logger.Info("Badger store opened", zap.String("path", opts.Path), zap.Bool("inMemory", opts.InMemory))
	return &BadgerStore{db: bdb, logger: logger, now: time.Now}, nil
}

func docKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (s *BadgerStore) Create(ctx context.Context, collection, id string, doc interface{}) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	err := s.update(ctx, func(tx *badgerTx) error {
		return tx.Create(collection, id, doc)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *BadgerStore) Get(ctx context.Context, collection, id string, dst interface{}) error {
	if id == "" {
		return notFound(collection, id)
	}
	return s.db.View(func(txn *badger.Txn) error {
		return readInto(txn, collection, id, dst)
	})
}

func (s *BadgerStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Snapshot, error) {
	var snaps []Snapshot
	prefix := []byte(collection + "/")

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var fields map[string]interface{}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			if !matches(fields, filters) {
				continue
			}
			id := strings.TrimPrefix(string(item.KeyCopy(nil)), string(prefix))
			snaps = append(snaps, jsonSnapshot{id: id, raw: raw})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Badger query failed", zap.String("collection", collection), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return snaps, nil
}

func (s *BadgerStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.update(ctx, func(tx *badgerTx) error {
		return tx.Update(collection, id, fields)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(collection, id))
	})
}

// RunTransaction runs fn in a serializable Badger transaction, retrying on write conflicts.
func (s *BadgerStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.update(ctx, func(tx *badgerTx) error {
		return fn(ctx, tx)
	})
}

// Close releases the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) update(ctx context.Context, fn func(tx *badgerTx) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTx{store: s, txn: txn})
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("Badger transaction conflict, retrying", zap.Int("attempt", attempt+1))
	}
	return err
}

type jsonSnapshot struct {
	id  string
	raw []byte
}

func (s jsonSnapshot) ID() string { return s.id }

func (s jsonSnapshot) DataTo(dst interface{}) error {
	return json.Unmarshal(s.raw, dst)
}

type badgerTx struct {
	store *BadgerStore
	txn   *badger.Txn
}

func (t *badgerTx) Get(collection, id string, dst interface{}) error {
	return readInto(t.txn, collection, id, dst)
}

func (t *badgerTx) Create(collection, id string, doc interface{}) error {
	_, err := t.txn.Get(docKey(collection, id))
	if err == nil {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return t.Set(collection, id, doc)
}

func (t *badgerTx) Set(collection, id string, doc interface{}) error {
	fields, err := toFields(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	now := t.store.now().UTC()
	for _, f := range []string{fieldCreatedAt, fieldUpdatedAt} {
		if v, ok := fields[f]; !ok || v == nil || v == zeroTime {
			fields[f] = now
		}
	}
	return t.write(collection, id, fields)
}

func (t *badgerTx) Update(collection, id string, fields map[string]interface{}) error {
	var current map[string]interface{}
	if err := readInto(t.txn, collection, id, &current); err != nil {
		return err
	}
	patch, err := toFields(fields)
	if err != nil {
		return fmt.Errorf("encode update for %s/%s: %w", collection, id, err)
	}
	for k, v := range patch {
		current[k] = v
	}
	current[fieldUpdatedAt] = t.store.now().UTC()
	return t.write(collection, id, current)
}

func (t *badgerTx) write(collection, id string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return t.txn.Set(docKey(collection, id), raw)
}

func readInto(txn *badger.Txn, collection, id string, dst interface{}) error {
	item, err := txn.Get(docKey(collection, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound(collection, id)
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dst); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// toFields normalises a struct or map into its JSON field map. The document ID is
// part of the key, so an "id" field is never stored.
func toFields(doc interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	delete(fields, "id")
	return fields, nil
}

func matches(fields map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !valuesEqual(fields[f.Field], f.Value) {
			return false
		}
	}
	return true
}
