package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mr01settle/paycheck/mr01"
)

// parsePubKeyArg decodes a 0x-prefixed hex-encoded compressed secp256k1
// public key from a CLI argument.
func parsePubKeyArg(arg string) (mr01.PubKey, error) {
	var pub mr01.PubKey
	b, err := hexutil.Decode(arg)
	if err != nil {
		return pub, fmt.Errorf("invalid pubkey %q: %w", arg, err)
	}
	if len(b) != mr01.PubKeySize {
		return pub, fmt.Errorf("pubkey %q must be %d bytes, got %d", arg, mr01.PubKeySize, len(b))
	}
	copy(pub[:], b)
	return pub, nil
}
