package inputsign

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Signature is an ECDSA signature in canonical low-S form.
type Signature struct {
	R secp256k1.ModNScalar
	S secp256k1.ModNScalar
}

// Signer produces transaction input signatures over a Curve.
type Signer struct {
	curve Curve
}

// NewSigner creates a signer on the secp256k1 curve.
func NewSigner() *Signer {
	return &Signer{curve: Secp256k1}
}

// WithCurve sets the curve used for point multiplication and verification.
func (s *Signer) WithCurve(curve Curve) *Signer {
	s.curve = curve
	return s
}

// Sign signs hash with key using the given nonce.
//
// The algorithm is 4.29 of Guide to Elliptic Curve Cryptography (Hankerson,
// Menezes, Vanstone) with s normalized to the lower half of the group order:
//
//	r = (k*G).x mod N, fail if r = 0
//	s = k^-1 (e + d*r) mod N, fail if s = 0
//	s = N - s if s > N/2
//
// The result is verified against the public key of key before it is
// returned. Every failure is reported as ErrSigningFailed; a new nonce is
// required to try again.
func (s *Signer) Sign(key *secp256k1.PrivateKey, hash []byte,
	nonce *secp256k1.ModNScalar) (*Signature, error) {

	sig, _, err := s.sign(key, hash, nonce)
	return sig, err
}

// sign implements Sign and additionally reports whether a failure was caused
// by the nonce producing a zero r or s, which a different nonce fixes.
func (s *Signer) sign(key *secp256k1.PrivateKey, hash []byte,
	nonce *secp256k1.ModNScalar) (*Signature, bool, error) {

	if key == nil || key.Key.IsZero() {
		return nil, false, signError(ErrInvalidPrivateKey,
			"private key is zero")
	}
	if nonce == nil || nonce.IsZero() {
		return nil, true, signError(ErrSigningFailed, "nonce is zero")
	}

	r := s.curve.BaseMultX(nonce)
	if r.IsZero() {
		return nil, true, signError(ErrSigningFailed,
			"nonce produced a zero r")
	}

	var e secp256k1.ModNScalar
	e.SetByteSlice(hash)

	kInv := new(secp256k1.ModNScalar).InverseValNonConst(nonce)
	sigS := new(secp256k1.ModNScalar).Mul2(&key.Key, &r).Add(&e).Mul(kInv)
	if sigS.IsZero() {
		return nil, true, signError(ErrSigningFailed,
			"nonce produced a zero s")
	}
	if sigS.IsOverHalfOrder() {
		sigS.Negate()
	}

	if !s.curve.Verify(hash, &r, sigS, key.PubKey()) {
		return nil, false, signError(ErrSigningFailed,
			"signature does not verify against the signing key")
	}

	return &Signature{R: r, S: *sigS}, false, nil
}
