package bank

import (
	"bytes"
	"errors"

	"github.com/cockroachdb/pebble"
)

// pebbleStore durably persists the ledger using cockroachdb/pebble, the
// teacher's current on-disk key-value engine (the modern replacement for
// goleveldb in recent go-ethereum releases).
type pebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (creating if necessary) a pebble database at dir.
func NewPebbleStore(dir string) (Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) Get(key []byte) ([]byte, bool, error) {
	v, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	if closer != nil {
		closer.Close()
	}
	return cp, true, nil
}

func (s *pebbleStore) Put(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *pebbleStore) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

// upperBound returns the smallest key that is strictly greater than every
// key sharing prefix, used to bound a prefix scan.
func upperBound(prefix []byte) []byte {
	ub := make([]byte, len(prefix))
	copy(ub, prefix)
	for i := len(ub) - 1; i >= 0; i-- {
		ub[i]++
		if ub[i] != 0 {
			return ub[:i+1]
		}
	}
	return nil // prefix was all 0xff: unbounded
}

func (s *pebbleStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
