package inputsign

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Curve is the group arithmetic the signer needs on top of scalar math
// modulo the group order.
type Curve interface {
	// BaseMultX returns the x coordinate of k*G reduced modulo the group
	// order.
	BaseMultX(k *secp256k1.ModNScalar) secp256k1.ModNScalar

	// Verify reports whether (r, s) is a valid signature of hash for
	// pubKey.
	Verify(hash []byte, r, s *secp256k1.ModNScalar,
		pubKey *secp256k1.PublicKey) bool
}

// Secp256k1 is the secp256k1 curve used by Bitcoin.
var Secp256k1 Curve = secp256k1Curve{}

type secp256k1Curve struct{}

func (secp256k1Curve) BaseMultX(k *secp256k1.ModNScalar) secp256k1.ModNScalar {
	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &point)
	point.ToAffine()

	var x secp256k1.ModNScalar
	x.SetBytes(point.X.Bytes())
	return x
}

func (secp256k1Curve) Verify(hash []byte, r, s *secp256k1.ModNScalar,
	pubKey *secp256k1.PublicKey) bool {

	return ecdsa.NewSignature(r, s).Verify(hash, pubKey)
}
