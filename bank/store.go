package bank

// Store is a minimal key-value persistence interface, in the shape of the
// teacher's ethdb.KeyValueStore: the ledger is durable without the bank
// needing to know whether it is backed by memory or an on-disk engine.
type Store interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// Iterate calls fn for every key with the given prefix, in
	// unspecified order (history ordering is not semantically meaningful,
	// per the data model). It stops early if fn returns false.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	Close() error
}
