package bank

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mr01settle/paycheck/internal/metrics"
	"github.com/mr01settle/paycheck/internal/mlog"
	"github.com/mr01settle/paycheck/mr01"
)

// historyEntry is a stored, already-processed check together with both
// parties' VRF proofs.
type historyEntry struct {
	tx          *mr01.Transaction
	senderSig   []byte
	receiverSig []byte
}

// userRecord is the bank's per-pubkey ledger row: cumulative credits,
// spendable balance, and the set of processed checks keyed by sn (no two
// may share an sn without overlapping, which process_payment enforces
// before insertion).
type userRecord struct {
	totalReceived *uint256.Int
	balance       *uint256.Int
	history       map[uint64]historyEntry
}

// Bank is the settlement ledger.
type Bank struct {
	macropayment uint64
	store        Store
	log          *mlog.Logger

	locks  *keyLock
	mapMu  sync.Mutex
	users  map[mr01.PubKey]*userRecord
}

// New constructs a Bank. A nil store defaults to an in-memory Store; a nil
// logger defaults to mlog.Root(). If store already holds ledger data (from
// a previous run), it is loaded before New returns.
func New(macropayment uint64, store Store, logger *mlog.Logger) (*Bank, error) {
	if macropayment == 0 {
		return nil, errors.New("bank: macropayment unit must be positive")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = mlog.Root()
	}
	b := &Bank{
		macropayment: macropayment,
		store:        store,
		log:          logger,
		locks:        newKeyLock(),
		users:        make(map[mr01.PubKey]*userRecord),
	}
	if err := b.load(); err != nil {
		return nil, fmt.Errorf("bank: load ledger: %w", err)
	}
	return b, nil
}

func (b *Bank) load() error {
	if err := b.store.Iterate(acctPrefix, func(key, value []byte) bool {
		var pub mr01.PubKey
		copy(pub[:], key[len(acctPrefix):])
		tr, bal, decErr := decodeAccount(value)
		if decErr != nil {
			b.log.Error("skipping malformed account record", "err", decErr)
			return true
		}
		b.users[pub] = &userRecord{totalReceived: tr, balance: bal, history: make(map[uint64]historyEntry)}
		return true
	}); err != nil {
		return err
	}

	return b.store.Iterate(histPrefix, func(key, value []byte) bool {
		if len(key) < len(histPrefix)+mr01.PubKeySize+8 {
			b.log.Error("skipping malformed history key")
			return true
		}
		var pub mr01.PubKey
		copy(pub[:], key[len(histPrefix):len(histPrefix)+mr01.PubKeySize])
		sn := binary.BigEndian.Uint64(key[len(histPrefix)+mr01.PubKeySize:])

		entry, decErr := decodeHistory(value)
		if decErr != nil {
			b.log.Error("skipping malformed history record", "err", decErr)
			return true
		}
		rec := b.getOrCreate(pub)
		rec.history[sn] = entry
		return true
	})
}

func (b *Bank) getOrCreate(pub mr01.PubKey) *userRecord {
	b.mapMu.Lock()
	defer b.mapMu.Unlock()
	rec, ok := b.users[pub]
	if !ok {
		rec = &userRecord{totalReceived: new(uint256.Int), balance: new(uint256.Int), history: make(map[uint64]historyEntry)}
		b.users[pub] = rec
	}
	return rec
}

func (b *Bank) get(pub mr01.PubKey) (*userRecord, bool) {
	b.mapMu.Lock()
	defer b.mapMu.Unlock()
	rec, ok := b.users[pub]
	return rec, ok
}

func (b *Bank) persistAccount(pub mr01.PubKey, rec *userRecord) error {
	return b.store.Put(accountKey(pub), encodeAccount(rec.totalReceived, rec.balance))
}

func (b *Bank) persistHistory(pub mr01.PubKey, entry historyEntry) error {
	return b.store.Put(historyKey(pub, entry.tx.SN), encodeHistory(entry))
}

// Deposit credits both balance and total_received by amount, creating the
// user's ledger row on first use. amount must be positive. Deposits are the
// only way total_received grows independently of payments.
func (b *Bank) Deposit(userKey mr01.PubKey, amount uint64) error {
	if amount < 1 {
		return ErrInvalidAmount
	}
	release := b.locks.acquire(userKey)
	defer release()

	rec := b.getOrCreate(userKey)
	amt := new(uint256.Int).SetUint64(amount)
	rec.balance.Add(rec.balance, amt)
	rec.totalReceived.Add(rec.totalReceived, amt)

	if err := b.persistAccount(userKey, rec); err != nil {
		// Roll back the in-memory mutation: a failed operation must leave
		// the ledger exactly as it was.
		rec.balance.Sub(rec.balance, amt)
		rec.totalReceived.Sub(rec.totalReceived, amt)
		return fmt.Errorf("bank: persist deposit: %w", err)
	}

	metrics.Counter(metrics.MetricDeposits).Inc(1)
	b.log.Debug("deposit", "user", userKey, "amount", amount)
	return nil
}

// ProcessPayment validates tx end-to-end and, only if every check passes,
// atomically debits the sender, records the check in its history, and
// credits the receiver. Signature verification runs first so that unsigned
// garbage never touches the ledger; the interval-overlap check precedes the
// range/funds checks because an overlap encodes fraud, which outranks mere
// insufficiency. Any failure leaves the ledger untouched.
func (b *Bank) ProcessPayment(tx *mr01.Transaction, senderSig, receiverSig []byte) error {
	payable, err := tx.Evaluate(senderSig, receiverSig, b.macropayment)
	if err != nil {
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".invalid_signature").Inc(1)
		return err
	}
	if payable == 0 {
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".not_payable").Inc(1)
		return mr01.ErrNotPayable
	}

	release := b.locks.acquire(tx.SenderKey, tx.ReceiverKey)
	defer release()

	senderRec, ok := b.get(tx.SenderKey)
	if !ok {
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".unknown_sender").Inc(1)
		return ErrUnknownSender
	}

	for _, prev := range senderRec.history {
		if !intersects(tx, prev.tx) {
			continue
		}
		if tx.Equal(prev.tx) {
			metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".already_processed").Inc(1)
			return ErrAlreadyProcessed
		}
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".double_spend").Inc(1)
		return ErrDoubleSpend
	}

	// NewTransaction already enforces SN >= Amount, so lo >= 1 always holds
	// and the lower-bound arm is defensive; SN > total_received is the arm
	// that can actually fail.
	lo, _ := tx.Interval()
	if lo < 1 || senderRec.totalReceived.Cmp(uint256.NewInt(tx.SN)) < 0 {
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".invalid_interval").Inc(1)
		return ErrInvalidCoinInterval
	}

	payableAmt := uint256.NewInt(payable)
	if senderRec.balance.Cmp(payableAmt) < 0 {
		metrics.Counter(metrics.MetricPaymentsRejectedPrefix + ".not_enough_funds").Inc(1)
		return ErrNotEnoughFunds
	}

	// Commit: mutate in memory, then persist; roll back in memory on a
	// persistence failure so the two never disagree.
	senderRec.balance.Sub(senderRec.balance, payableAmt)
	senderRec.history[tx.SN] = historyEntry{tx: tx, senderSig: senderSig, receiverSig: receiverSig}

	receiverRec := b.getOrCreate(tx.ReceiverKey)
	receiverRec.balance.Add(receiverRec.balance, payableAmt)
	receiverRec.totalReceived.Add(receiverRec.totalReceived, payableAmt)

	if err := b.commitPersist(tx, senderRec, receiverRec); err != nil {
		senderRec.balance.Add(senderRec.balance, payableAmt)
		delete(senderRec.history, tx.SN)
		receiverRec.balance.Sub(receiverRec.balance, payableAmt)
		receiverRec.totalReceived.Sub(receiverRec.totalReceived, payableAmt)
		return fmt.Errorf("bank: persist payment: %w", err)
	}

	metrics.Counter(metrics.MetricPaymentsProcessed).Inc(1)
	metrics.Histogram(metrics.MetricPaymentsAmount).Update(int64(payable))
	b.log.Debug("processed payment", "sender", tx.SenderKey, "receiver", tx.ReceiverKey, "sn", tx.SN, "payable", payable)
	return nil
}

func (b *Bank) commitPersist(tx *mr01.Transaction, senderRec, receiverRec *userRecord) error {
	if err := b.persistAccount(tx.SenderKey, senderRec); err != nil {
		return err
	}
	if err := b.persistHistory(tx.SenderKey, senderRec.history[tx.SN]); err != nil {
		return err
	}
	return b.persistAccount(tx.ReceiverKey, receiverRec)
}

// ReportDoubleSpend lets a holder surface a double-spend that process_payment
// could never catch on its own: an unpayable (lottery-lost) check is never
// stored, so two unpayable-but-overlapping checks from the same sender are
// only detectable by someone who holds both. Both checks must be validly
// signed; the method returns ErrDoubleSpend if they are distinct, share a
// sender, and overlap, and returns nil otherwise (absence of proof is not
// proof of honesty).
func (b *Bank) ReportDoubleSpend(tx1 *mr01.Transaction, senderSig1, receiverSig1 []byte, tx2 *mr01.Transaction, senderSig2, receiverSig2 []byte) error {
	if _, err := tx1.Evaluate(senderSig1, receiverSig1, b.macropayment); err != nil {
		return err
	}
	if _, err := tx2.Evaluate(senderSig2, receiverSig2, b.macropayment); err != nil {
		return err
	}
	if !tx1.Equal(tx2) && tx1.SenderKey == tx2.SenderKey && intersects(tx1, tx2) {
		metrics.Counter(metrics.MetricDoubleSpendReports).Inc(1)
		return ErrDoubleSpend
	}
	return nil
}

// Balance returns the user's current spendable balance, or 0 for an unknown
// key.
func (b *Bank) Balance(userKey mr01.PubKey) uint64 {
	release := b.locks.acquire(userKey)
	defer release()
	rec, ok := b.get(userKey)
	if !ok {
		return 0
	}
	return rec.balance.Uint64()
}

// TotalReceived returns the user's cumulative credited coins, or 0 for an
// unknown key.
func (b *Bank) TotalReceived(userKey mr01.PubKey) uint64 {
	release := b.locks.acquire(userKey)
	defer release()
	rec, ok := b.get(userKey)
	if !ok {
		return 0
	}
	return rec.totalReceived.Uint64()
}

// HistoryLen returns the number of processed checks on file for userKey.
func (b *Bank) HistoryLen(userKey mr01.PubKey) int {
	release := b.locks.acquire(userKey)
	defer release()
	rec, ok := b.get(userKey)
	if !ok {
		return 0
	}
	return len(rec.history)
}

// Macropayment returns the ledger's configured macropayment unit M.
func (b *Bank) Macropayment() uint64 {
	return b.macropayment
}

// Close releases the underlying store.
func (b *Bank) Close() error {
	return b.store.Close()
}
