package bank

import (
	"testing"

	"github.com/mr01settle/paycheck/internal/vrf"
	"github.com/mr01settle/paycheck/mr01"
)

func testKey(seed byte) [32]byte {
	var sk [32]byte
	for i := range sk {
		sk[i] = seed + byte(i)
	}
	return sk
}

func mustWallet(t *testing.T, seed byte, amount uint64) *mr01.Wallet {
	t.Helper()
	w, err := mr01.NewWallet(testKey(seed), amount)
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	return w
}

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	b, err := New(10, NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	return b
}

// buildCheck signs a complete sender+receiver round trip for a check of the
// given (sn, amount) without touching any Wallet's sn cursor, so callers can
// freely search over timestamps without side effects.
func buildCheck(t *testing.T, senderSK, receiverSK [32]byte, sn, amount uint64, ts int64) (*mr01.Transaction, []byte, []byte) {
	t.Helper()
	senderPK, err := vrf.Keygen(senderSK)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	receiverPK, err := vrf.Keygen(receiverSK)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	tx, err := mr01.NewTransaction(sn, amount, senderPK, receiverPK, ts)
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	senderSig, err := vrf.Prove(senderSK, []byte(tx.Msg()))
	if err != nil {
		t.Fatalf("prove sender: %v", err)
	}
	betaSender, err := vrf.FullVerify(senderPK, senderSig, []byte(tx.Msg()))
	if err != nil {
		t.Fatalf("verify sender: %v", err)
	}
	receiverSig, err := vrf.Prove(receiverSK, betaSender[:])
	if err != nil {
		t.Fatalf("prove receiver: %v", err)
	}
	return tx, senderSig, receiverSig
}

// findOutcome searches timestamps starting at baseTs for a check of the
// given (sn, amount) whose payable amount equals want, returning the first
// match. It is used for the sub-macropayment scenarios (S1/S2/S8) whose
// literal outcome depends on the lottery; with win probability amount/M this
// converges quickly within maxTries.
func findOutcome(t *testing.T, senderSK, receiverSK [32]byte, sn, amount, macropayment uint64, baseTs int64, want uint64, maxTries int) (*mr01.Transaction, []byte, []byte) {
	t.Helper()
	for i := 0; i < maxTries; i++ {
		ts := baseTs + int64(i)
		tx, senderSig, receiverSig := buildCheck(t, senderSK, receiverSK, sn, amount, ts)
		payable, err := tx.Evaluate(senderSig, receiverSig, macropayment)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if payable == want {
			return tx, senderSig, receiverSig
		}
	}
	t.Fatalf("could not find a (sn=%d, amount=%d) check with payable=%d within %d tries", sn, amount, want, maxTries)
	return nil, nil, nil
}
