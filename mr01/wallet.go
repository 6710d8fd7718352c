package mr01

import (
	"fmt"
	"sync"
	"time"

	"github.com/mr01settle/paycheck/internal/vrf"
)

// Wallet holds one payer keypair plus the payer-side counters needed to
// construct checks: a monotonically non-decreasing serial-number cursor and
// a locally tracked *estimate* of the spendable balance.
//
// The local Amount estimate is informational only: because payments pay
// probabilistically, it diverges from the bank's authoritative balance and
// "averages out over time" (the MR01 reference implementation's own
// characterization). Nothing on the bank side may depend on it.
type Wallet struct {
	mu      sync.Mutex
	privKey [32]byte
	pubKey  PubKey
	sn      uint64
	amount  uint64
}

// NewWallet creates a wallet from a 32-byte secret key and a starting local
// balance estimate.
func NewWallet(privKey [32]byte, amount uint64) (*Wallet, error) {
	pub, err := vrf.Keygen(privKey)
	if err != nil {
		return nil, fmt.Errorf("mr01: derive pubkey: %w", err)
	}
	return &Wallet{privKey: privKey, pubKey: pub, amount: amount}, nil
}

// PubKey returns the wallet's public key.
func (w *Wallet) PubKey() PubKey {
	return w.pubKey
}

// Snapshot is a read-only view of wallet-local state, for introspection by
// callers.
type Snapshot struct {
	PubKey PubKey
	SN     uint64
	Amount uint64
}

// Snapshot returns the wallet's current local state.
func (w *Wallet) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{PubKey: w.pubKey, SN: w.sn, Amount: w.amount}
}

// Pay constructs a check for amount coins to receiverKey and produces this
// wallet's VRF proof over it. timestamp defaults to the current wall-clock
// second when zero.
//
// On success the wallet's sn advances by amount and its local Amount
// estimate decreases by amount, both before returning — a failed
// precondition check leaves wallet state untouched.
func (w *Wallet) Pay(receiverKey PubKey, amount uint64, timestamp int64) (*Transaction, []byte, error) {
	if amount < 1 {
		return nil, nil, ErrAmountTooSmall
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount > w.amount {
		return nil, nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientLocalBalance, w.amount, amount)
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	tx, err := NewTransaction(w.sn+amount, amount, w.pubKey, receiverKey, timestamp)
	if err != nil {
		return nil, nil, err
	}
	senderSig, err := vrf.Prove(w.privKey, []byte(tx.Msg()))
	if err != nil {
		return nil, nil, fmt.Errorf("mr01: sign check: %w", err)
	}

	w.sn += amount
	w.amount -= amount
	return tx, senderSig, nil
}

// SignReceive verifies the sender's VRF proof on tx and, if tx is indeed
// addressed to this wallet, produces the receiver's counter-proof over the
// sender's VRF output. It is purely functional with respect to wallet
// state: receiving a check does not adjust the local balance estimate — the
// bank is the source of truth for credited funds.
func (w *Wallet) SignReceive(tx *Transaction, senderSig []byte) (*Transaction, []byte, error) {
	w.mu.Lock()
	pubKey := w.pubKey
	privKey := w.privKey
	w.mu.Unlock()

	if tx.ReceiverKey != pubKey {
		return nil, nil, ErrWrongRecipient
	}
	betaSender, err := vrf.FullVerify(tx.SenderKey, senderSig, []byte(tx.Msg()))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	receiverSig, err := vrf.Prove(privKey, betaSender[:])
	if err != nil {
		return nil, nil, fmt.Errorf("mr01: countersign check: %w", err)
	}
	return tx, receiverSig, nil
}
