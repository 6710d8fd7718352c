// Package vrf implements the verifiable-random-function black box that the
// MR01 settlement protocol treats as an external primitive: a keyed
// pseudorandom function whose output is publicly checkable against a proof.
//
// The construction here is deliberately simple rather than a faithful
// RFC 9381 ECVRF: a deterministic (RFC 6979) secp256k1 signature already is
// unique per (key, message) and publicly verifiable, so it can stand in for
// the proof pi; the VRF output beta is derived by hashing that proof. This
// gives the three properties evaluate() relies on — determinism,
// unforgeability and a fixed-length, effectively uniform output — without a
// dedicated VRF dependency.
package vrf

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// PubKeySize is the length of a compressed secp256k1 public key.
const PubKeySize = 33

// BetaSize is the length in bytes of a VRF output (512 bits).
const BetaSize = 64

// PubKey is a compressed secp256k1 public key, the wire form of a VRF
// identity.
type PubKey [PubKeySize]byte

// Beta is the pseudorandom output of the VRF.
type Beta [BetaSize]byte

// Keygen derives the public key corresponding to a 32-byte secret key.
func Keygen(sk [32]byte) (PubKey, error) {
	priv, err := crypto.ToECDSA(sk[:])
	if err != nil {
		return PubKey{}, fmt.Errorf("invalid secret key: %w", err)
	}
	return compress(&priv.PublicKey), nil
}

// Prove produces a VRF proof for msg under sk. The proof is a deterministic
// ECDSA signature over Keccak256(msg); "deterministic" is what makes it
// re-derivable (and hence verifiable) from (pk, msg) alone.
func Prove(sk [32]byte, msg []byte) ([]byte, error) {
	priv, err := crypto.ToECDSA(sk[:])
	if err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	digest := crypto.Keccak256(msg)
	sig, err := crypto.Sign(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sig, nil
}

// FullVerify checks proof against (pk, msg) and, on success, returns the VRF
// output beta. It fails if the proof does not recover to pk.
func FullVerify(pk PubKey, proof, msg []byte) (Beta, error) {
	if len(proof) != 65 {
		return Beta{}, fmt.Errorf("%w: proof must be 65 bytes, got %d", ErrInvalidProof, len(proof))
	}
	digest := crypto.Keccak256(msg)
	recovered, err := crypto.SigToPub(digest, proof)
	if err != nil {
		return Beta{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if compress(recovered) != pk {
		return Beta{}, fmt.Errorf("%w: proof does not match public key", ErrInvalidProof)
	}
	return sha3.Sum512(proof), nil
}

// compress renders an ECDSA public key in its 33-byte compressed form.
func compress(pub *ecdsa.PublicKey) PubKey {
	var out PubKey
	copy(out[:], crypto.CompressPubkey(pub))
	return out
}
