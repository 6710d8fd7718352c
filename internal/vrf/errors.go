package vrf

import "errors"

// ErrInvalidProof is returned by FullVerify when the supplied proof does not
// recover to the claimed public key, or is malformed.
var ErrInvalidProof = errors.New("vrf: invalid proof")
