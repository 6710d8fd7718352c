// Package bank implements the authoritative ledger side of the MR01
// settlement protocol: per-pubkey balances and history, double-spend
// detection by coin-interval intersection, and the process_payment /
// deposit / report_double_spend state machine.
//
// Bank is safe for concurrent use. The read-modify-write critical section
// of each operation is serialized per account via a sharded key lock (see
// lock.go) rather than one global mutex, so unrelated accounts never
// contend with each other.
package bank
