package bank

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr01settle/paycheck/mr01"
)

// Key layout, in the shape of the teacher's core/rawdb prefixed-key
// convention over a flat KV store:
//
//	acct:<pubkey>             -> accountHeader
//	hist:<pubkey><sn be64>    -> historyRecord

var (
	acctPrefix = []byte("acct:")
	histPrefix = []byte("hist:")
)

func accountKey(pub mr01.PubKey) []byte {
	return append(append([]byte(nil), acctPrefix...), pub[:]...)
}

func historyPrefix(pub mr01.PubKey) []byte {
	return append(append([]byte(nil), histPrefix...), pub[:]...)
}

func historyKey(pub mr01.PubKey, sn uint64) []byte {
	key := historyPrefix(pub)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sn)
	return append(key, buf[:]...)
}

// encodeAccount serializes total_received and balance as two big-endian
// 32-byte words, mirroring how the teacher encodes uint256 value fields.
func encodeAccount(totalReceived, balance *uint256.Int) []byte {
	out := make([]byte, 64)
	tr := totalReceived.Bytes32()
	bal := balance.Bytes32()
	copy(out[0:32], tr[:])
	copy(out[32:64], bal[:])
	return out
}

func decodeAccount(data []byte) (totalReceived, balance *uint256.Int, err error) {
	if len(data) != 64 {
		return nil, nil, fmt.Errorf("bank: malformed account record, want 64 bytes got %d", len(data))
	}
	return new(uint256.Int).SetBytes(data[0:32]), new(uint256.Int).SetBytes(data[32:64]), nil
}

// encodeHistory serializes a processed check plus both signatures.
func encodeHistory(entry historyEntry) []byte {
	tx := entry.tx
	buf := make([]byte, 0, 8+8+33+33+8+4+len(entry.senderSig)+4+len(entry.receiverSig))
	var u64 [8]byte

	binary.BigEndian.PutUint64(u64[:], tx.SN)
	buf = append(buf, u64[:]...)
	binary.BigEndian.PutUint64(u64[:], tx.Amount)
	buf = append(buf, u64[:]...)
	buf = append(buf, tx.SenderKey[:]...)
	buf = append(buf, tx.ReceiverKey[:]...)
	binary.BigEndian.PutUint64(u64[:], uint64(tx.Timestamp))
	buf = append(buf, u64[:]...)

	buf = appendBytesWithLen(buf, entry.senderSig)
	buf = appendBytesWithLen(buf, entry.receiverSig)
	return buf
}

func appendBytesWithLen(buf, v []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, v...)
}

func decodeHistory(data []byte) (historyEntry, error) {
	const fixed = 8 + 8 + mr01.PubKeySize*2 + 8
	if len(data) < fixed+8 {
		return historyEntry{}, fmt.Errorf("bank: malformed history record, too short (%d bytes)", len(data))
	}
	off := 0
	sn := binary.BigEndian.Uint64(data[off:])
	off += 8
	amount := binary.BigEndian.Uint64(data[off:])
	off += 8
	var sender, receiver mr01.PubKey
	copy(sender[:], data[off:off+len(sender)])
	off += len(sender)
	copy(receiver[:], data[off:off+len(receiver)])
	off += len(receiver)
	timestamp := int64(binary.BigEndian.Uint64(data[off:]))
	off += 8

	senderSig, off2, err := readBytesWithLen(data, off)
	if err != nil {
		return historyEntry{}, err
	}
	off = off2
	receiverSig, _, err := readBytesWithLen(data, off)
	if err != nil {
		return historyEntry{}, err
	}

	tx, err := mr01.NewTransaction(sn, amount, sender, receiver, timestamp)
	if err != nil {
		return historyEntry{}, fmt.Errorf("bank: decode history: %w", err)
	}
	return historyEntry{tx: tx, senderSig: senderSig, receiverSig: receiverSig}, nil
}

func readBytesWithLen(data []byte, off int) ([]byte, int, error) {
	if off+4 > len(data) {
		return nil, 0, fmt.Errorf("bank: malformed history record, truncated length")
	}
	n := int(binary.BigEndian.Uint32(data[off:]))
	off += 4
	if off+n > len(data) {
		return nil, 0, fmt.Errorf("bank: malformed history record, truncated payload")
	}
	out := make([]byte, n)
	copy(out, data[off:off+n])
	return out, off + n, nil
}
