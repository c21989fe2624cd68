package inputsign

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// MinimumSeedSize is the minimum length in bytes of a nonce seed (128
	// bits). Longer seeds of any length are accepted.
	MinimumSeedSize = hdkeychain.MinSeedBytes

	// extraDataSize is the only accepted length of deterministic extra
	// entropy.
	extraDataSize = 32
)

// NonceSource selects how the signing nonce is produced. It is either
// Deterministic or Seeded.
type NonceSource interface {
	nonceSource()
}

// Deterministic derives the nonce from the private key and the message hash
// per RFC6979. ExtraData, when set, must be 32 bytes and is mixed into the
// derivation as described in section 3.6 of the RFC.
type Deterministic struct {
	ExtraData []byte
}

// Seeded derives the nonce from caller supplied entropy. The same seed
// always yields the same nonce, so a seed must never be reused across
// different messages.
type Seeded struct {
	Seed []byte
}

func (Deterministic) nonceSource() {}
func (Seeded) nonceSource()        {}

// isDeterministic reports whether degenerate signatures produced with a
// nonce from source may be retried with the next nonce of the stream.
func isDeterministic(source NonceSource) bool {
	switch source.(type) {
	case nil, Deterministic, *Deterministic:
		return true
	}
	return false
}

// checkNonceSource validates the caller controlled parts of source without
// deriving anything.
func checkNonceSource(source NonceSource) error {
	switch src := source.(type) {
	case nil:
		return nil

	case Deterministic:
		return checkExtraData(src.ExtraData)

	case *Deterministic:
		return checkExtraData(src.ExtraData)

	case Seeded:
		return checkSeed(src.Seed)

	case *Seeded:
		return checkSeed(src.Seed)

	default:
		return fmt.Errorf("unsupported nonce source %T", source)
	}
}

func checkExtraData(extra []byte) error {
	if len(extra) != 0 && len(extra) != extraDataSize {
		str := fmt.Sprintf("extra data must be %d bytes, got %d",
			extraDataSize, len(extra))
		return signError(ErrInvalidExtraData, str)
	}
	return nil
}

func checkSeed(seed []byte) error {
	if len(seed) < MinimumSeedSize {
		str := fmt.Sprintf("nonce seed is %d bytes, need at least %d",
			len(seed), MinimumSeedSize)
		return signError(ErrShortNonceSeed, str)
	}
	return nil
}

// DeriveNonce returns the signing nonce for hash under key.
//
// For a Deterministic source attempt selects the candidate of the RFC6979
// stream: 0 is the first valid nonce, 1 the next one and so on. Signing
// starts at 0 and only moves on when a nonce produces a degenerate
// signature. Seeded sources ignore attempt.
//
// A nil source is treated as Deterministic{}.
func DeriveNonce(key *secp256k1.PrivateKey, hash []byte, source NonceSource,
	attempt uint32) (*secp256k1.ModNScalar, error) {

	if err := checkNonceSource(source); err != nil {
		return nil, err
	}

	switch src := source.(type) {
	case nil:
		return deterministicNonce(key, hash, nil, attempt), nil
	case Deterministic:
		return deterministicNonce(key, hash, src.ExtraData, attempt), nil
	case *Deterministic:
		return deterministicNonce(key, hash, src.ExtraData, attempt), nil
	case Seeded:
		return seededNonce(src.Seed)
	case *Seeded:
		return seededNonce(src.Seed)
	}

	// Unreachable, checkNonceSource rejects everything else.
	return nil, fmt.Errorf("unsupported nonce source %T", source)
}

func deterministicNonce(key *secp256k1.PrivateKey, hash, extra []byte,
	attempt uint32) *secp256k1.ModNScalar {

	keyBytes := key.Key.Bytes()
	defer zeroArray32(&keyBytes)
	return secp256k1.NonceRFC6979(keyBytes[:], hash, extra, nil, attempt)
}

// seededNonce maps seed to the private key of its BIP32 master node.
func seededNonce(seed []byte) (*secp256k1.ModNScalar, error) {
	if len(seed) > hdkeychain.MaxSeedBytes {
		return longSeedNonce(seed)
	}

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	switch {
	case errors.Is(err, hdkeychain.ErrUnusableSeed):
		return nil, signError(ErrInvalidNonce, "nonce seed does not map "+
			"to a scalar in [1, N-1]")
	case err != nil:
		return nil, err
	}

	priv, err := master.ECPrivKey()
	if err != nil {
		return nil, signError(ErrInvalidNonce, err.Error())
	}
	defer priv.Zero()

	var nonce secp256k1.ModNScalar
	nonce.Set(&priv.Key)
	if nonce.IsZero() {
		return nil, signError(ErrInvalidNonce, "nonce seed maps to zero")
	}
	return &nonce, nil
}

// longSeedNonce is the BIP32 master key derivation for seeds hdkeychain
// refuses: the left half of HMAC-SHA512 keyed with "Bitcoin seed".
func longSeedNonce(seed []byte) (*secp256k1.ModNScalar, error) {
	hmac512 := hmac.New(sha512.New, masterKey)
	hmac512.Write(seed)
	lr := hmac512.Sum(nil)

	var nonce secp256k1.ModNScalar
	overflow := nonce.SetByteSlice(lr[:len(lr)/2])
	copy(lr, zero64[:])
	if overflow || nonce.IsZero() {
		return nil, signError(ErrInvalidNonce, "nonce seed does not map "+
			"to a scalar in [1, N-1]")
	}
	return &nonce, nil
}

// zeroArray32 zeroes the provided 32-byte buffer.
func zeroArray32(b *[32]byte) {
	copy(b[:], zero32[:])
}

var (
	zero32 [32]byte
	zero64 [64]byte

	// masterKey is the HMAC key of BIP32 master node generation.
	masterKey = []byte("Bitcoin seed")
)
