// Package mr01 implements the check-construction and evaluation protocol of
// the MR01 probabilistic micropayment scheme (Rivest & Micali,
// "Micropayments Revisited"), together with the payer-side Wallet.
//
// A Transaction ("check") is an immutable proposal to pay amount coins,
// identified by the top sn of a coin interval (sn-amount, sn]. Evaluate
// deterministically decides, from both parties' VRF contributions, whether
// the check actually pays 0 or the macropayment unit M (plus any
// deterministic whole-M chunks for amount > M).
package mr01

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr01settle/paycheck/internal/vrf"
)

// PubKey identifies a wallet: a compressed secp256k1 point, the VRF's public
// key type.
type PubKey = vrf.PubKey

// PubKeySize is the length in bytes of a PubKey.
const PubKeySize = vrf.PubKeySize

// Transaction is an immutable check: a proposed payment of Amount coins,
// claiming the coin interval (SN-Amount, SN].
type Transaction struct {
	SN          uint64
	Amount      uint64
	SenderKey   PubKey
	ReceiverKey PubKey
	Timestamp   int64 // seconds, truncated
}

// NewTransaction constructs a Transaction, enforcing SN >= 1, Amount >= 1 and
// SN >= Amount (the interval (SN-Amount, SN] must be non-negative and of
// cardinality Amount).
func NewTransaction(sn, amount uint64, senderKey, receiverKey PubKey, timestamp int64) (*Transaction, error) {
	if sn < 1 {
		return nil, fmt.Errorf("%w: sn must be >= 1, got %d", ErrInvalidTransaction, sn)
	}
	if amount < 1 {
		return nil, fmt.Errorf("%w: amount must be >= 1, got %d", ErrInvalidTransaction, amount)
	}
	if sn < amount {
		return nil, fmt.Errorf("%w: sn (%d) must be >= amount (%d)", ErrInvalidTransaction, sn, amount)
	}
	return &Transaction{
		SN:          sn,
		Amount:      amount,
		SenderKey:   senderKey,
		ReceiverKey: receiverKey,
		Timestamp:   timestamp,
	}, nil
}

// Interval returns the inclusive coin-id range (lo, hi] this check claims,
// as [lo, hi] with lo = SN-Amount+1.
func (tx *Transaction) Interval() (lo, hi uint64) {
	return tx.SN - tx.Amount + 1, tx.SN
}

// Equal reports whether tx and other describe the same check, componentwise
// over all five fields.
func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	return tx.SN == other.SN &&
		tx.Amount == other.Amount &&
		tx.SenderKey == other.SenderKey &&
		tx.ReceiverKey == other.ReceiverKey &&
		tx.Timestamp == other.Timestamp
}

// Msg returns the canonical signing message: the hex Keccak256 digest of
//
//	"sn=<sn>;amt=<amount>;r=<receiver_key_hex>;t=<timestamp>"
//
// The sender's own key is deliberately absent — the sender binds itself
// implicitly via the VRF key used to produce its proof over this message.
func (tx *Transaction) Msg() string {
	canonical := fmt.Sprintf("sn=%d;amt=%d;r=%s;t=%d",
		tx.SN, tx.Amount, hex.EncodeToString(tx.ReceiverKey[:]), tx.Timestamp)
	digest := crypto.Keccak256([]byte(canonical))
	return hex.EncodeToString(digest)
}

// Evaluate verifies both VRF contributions and deterministically computes
// the payable amount:
//
//  1. beta_sender  = VRF.FullVerify(SenderKey,   senderSig,   Msg())
//  2. beta_receiver = VRF.FullVerify(ReceiverKey, receiverSig, beta_sender)
//  3. full := (Amount/M)*M deterministic macro chunks; rem := Amount%M;
//     the remainder wins the macropayment with probability rem/M, decided
//     by comparing beta_receiver (as an unsigned integer) against a
//     threshold.
//
// Any verification failure is returned as ErrInvalidSignature, distinct
// from a correctly-signed-but-unlucky check (which returns 0, nil).
func (tx *Transaction) Evaluate(senderSig, receiverSig []byte, macropayment uint64) (uint64, error) {
	msg := tx.Msg()
	betaSender, err := vrf.FullVerify(tx.SenderKey, senderSig, []byte(msg))
	if err != nil {
		return 0, fmt.Errorf("%w: sender: %v", ErrInvalidSignature, err)
	}
	betaReceiver, err := vrf.FullVerify(tx.ReceiverKey, receiverSig, betaSender[:])
	if err != nil {
		return 0, fmt.Errorf("%w: receiver: %v", ErrInvalidSignature, err)
	}
	return calculatePayment(macropayment, tx.Amount, betaReceiver), nil
}

// calculatePayment implements the lottery: full deterministic macro chunks
// plus a probabilistic win on the remainder, decided by comparing beta
// (interpreted as an unsigned integer in [0, 2^512)) against
// p * 2^512 where p = rem/M. Ties break strictly in favor of a loss
// (X < threshold, never <=).
func calculatePayment(macropayment, amount uint64, beta vrf.Beta) uint64 {
	full := (amount / macropayment) * macropayment
	rem := amount % macropayment
	if rem == 0 {
		return full
	}

	x := new(big.Int).SetBytes(beta[:])
	two512 := new(big.Int).Lsh(big.NewInt(1), uint(len(beta))*8)
	// threshold = (rem/macropayment) * 2^512, computed without float loss:
	// threshold = rem * 2^512 / macropayment
	threshold := new(big.Int).Mul(big.NewInt(int64(rem)), two512)
	threshold.Div(threshold, big.NewInt(int64(macropayment)))

	if x.Cmp(threshold) < 0 {
		return full + macropayment
	}
	return full
}
