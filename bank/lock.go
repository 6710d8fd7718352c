package bank

import (
	"bytes"
	"sort"
	"sync"

	"github.com/mr01settle/paycheck/mr01"
)

// keyLock hands out one *sync.Mutex per pubkey, created lazily. It lets
// Bank serialize the read-modify-write critical section per account instead
// of behind one global lock, while still allowing unrelated accounts to
// proceed concurrently.
type keyLock struct {
	mu    sync.Mutex
	locks map[mr01.PubKey]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[mr01.PubKey]*sync.Mutex)}
}

func (k *keyLock) lockFor(key mr01.PubKey) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = new(sync.Mutex)
		k.locks[key] = l
	}
	return l
}

// acquire locks the mutexes for the given keys in a deterministic order
// (lexicographic on the raw key bytes) so that two calls naming the same two
// keys in either order can never deadlock. Duplicate keys are locked once.
// It returns a function that releases every mutex it took.
func (k *keyLock) acquire(keys ...mr01.PubKey) func() {
	unique := dedupeKeys(keys)
	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})
	taken := make([]*sync.Mutex, 0, len(unique))
	for _, key := range unique {
		l := k.lockFor(key)
		l.Lock()
		taken = append(taken, l)
	}
	return func() {
		for i := len(taken) - 1; i >= 0; i-- {
			taken[i].Unlock()
		}
	}
}

func dedupeKeys(keys []mr01.PubKey) []mr01.PubKey {
	seen := make(map[mr01.PubKey]struct{}, len(keys))
	out := make([]mr01.PubKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
