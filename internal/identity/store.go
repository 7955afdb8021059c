package identity

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger"
)

// identityKey is the single well-known key the session record lives under.
// Absence of the key means no stored identity.
var identityKey = []byte("identity/current")

// BadgerStore keeps the persisted identity in a local badger database.
// The reconciler is the only writer.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore { return &BadgerStore{db: db} }

func (s *BadgerStore) Close() error { return s.db.Close() }

func (s *BadgerStore) Load() (*Identity, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(identityKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if raw == nil {
		return nil, nil
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	return &id, nil
}

// Save serializes before touching the database, so a marshal failure
// cannot disturb the previous record; the badger transaction itself
// commits atomically.
func (s *BadgerStore) Save(id *Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(identityKey, b)
	})
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *BadgerStore) Clear() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(identityKey)
	})
	if err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}
	return nil
}
