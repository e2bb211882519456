// ABOUTME: Thin BadgerDB wrapper exposing a localStorage-style byte key/value API
// ABOUTME: Missing keys read as nil so callers can treat "absent" and "empty" alike
package kv

import (
	"errors"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// KV is a durable key/value store. One key holds one whole collection.
type KV struct {
	db *badger.DB
}

// Open opens (or creates) a store rooted at dir.
func Open(dir string) (*KV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return open(badger.DefaultOptions(dir).WithLogger(nil))
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*KV, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*KV, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &KV{db: db}, nil
}

// Get returns the value for key, or nil when the key is not set.
func (k *KV) Get(key string) ([]byte, error) {
	var result []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	return result, err
}

func (k *KV) Set(key string, value []byte) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (k *KV) Delete(key string) error {
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys lists every key with the given prefix.
func (k *KV) Keys(prefix string) ([]string, error) {
	var keys []string
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

func (k *KV) Close() error {
	return k.db.Close()
}
