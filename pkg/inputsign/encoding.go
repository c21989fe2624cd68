package inputsign

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	// asn1SequenceID is the ASN.1 identifier for a sequence.
	asn1SequenceID = 0x30

	// asn1IntegerID is the ASN.1 identifier for an integer.
	asn1IntegerID = 0x02

	// minSigLen is the length of a DER signature whose R and S are one
	// byte each.
	minSigLen = 8

	// maxSigLen is the length of a DER signature whose R and S are 33
	// bytes each (32 bytes plus a leading zero for the sign bit).
	maxSigLen = 72
)

// Serialize returns the signature in the Distinguished Encoding Rules format:
//
//	0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
//
// R and S are minimal big-endian integers; a single leading zero byte is kept
// only when the next byte has its high bit set, so neither reads as
// negative. The sighash byte is not included, see Endorse.
func (sig *Signature) Serialize() []byte {
	canonR := canonicalInt(&sig.R)
	canonS := canonicalInt(&sig.S)

	totalLen := 6 + len(canonR) + len(canonS)
	b := make([]byte, 0, totalLen)
	b = append(b, asn1SequenceID)
	b = append(b, byte(totalLen-2))
	b = append(b, asn1IntegerID)
	b = append(b, byte(len(canonR)))
	b = append(b, canonR...)
	b = append(b, asn1IntegerID)
	b = append(b, byte(len(canonS)))
	b = append(b, canonS...)
	return b
}

// canonicalInt returns v as a minimal DER integer body.
func canonicalInt(v *secp256k1.ModNScalar) []byte {
	var buf [33]byte
	v.PutBytesUnchecked(buf[1:])

	canon := buf[:]
	for len(canon) > 1 && canon[0] == 0x00 && canon[1]&0x80 == 0 {
		canon = canon[1:]
	}
	return canon
}

// Endorse returns the DER encoding of sig followed by the sighash type byte,
// the form placed in a signature script.
func Endorse(sig *Signature, hashType SighashType) []byte {
	der := sig.Serialize()
	return append(der, byte(hashType))
}

// ParseDERSignature parses a strict DER encoded signature. R and S must be in
// [1, N-1]; the low-S rule is not enforced so that signatures produced
// elsewhere can still be inspected.
func ParseDERSignature(sig []byte) (*Signature, error) {
	if len(sig) < minSigLen || len(sig) > maxSigLen {
		str := fmt.Sprintf("malformed signature: length %d is outside "+
			"[%d, %d]", len(sig), minSigLen, maxSigLen)
		return nil, signError(ErrMalformedSignature, str)
	}
	if sig[0] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong "+
			"type: %#x", sig[0])
		return nil, signError(ErrMalformedSignature, str)
	}
	if int(sig[1]) != len(sig)-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d",
			sig[1], len(sig)-2)
		return nil, signError(ErrMalformedSignature, str)
	}

	r, rest, err := parseDERInt(sig[2:], "R")
	if err != nil {
		return nil, err
	}
	s, rest, err := parseDERInt(rest, "S")
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		str := fmt.Sprintf("malformed signature: %d trailing bytes",
			len(rest))
		return nil, signError(ErrMalformedSignature, str)
	}

	return &Signature{R: *r, S: *s}, nil
}

// parseDERInt parses one ASN.1 integer from the front of b and returns it
// along with the remaining bytes.
func parseDERInt(b []byte, name string) (*secp256k1.ModNScalar, []byte, error) {
	malformed := func(format string, args ...interface{}) error {
		str := fmt.Sprintf("malformed signature: %s ", name) +
			fmt.Sprintf(format, args...)
		return signError(ErrMalformedSignature, str)
	}

	if len(b) < 2 {
		return nil, nil, malformed("is missing")
	}
	if b[0] != asn1IntegerID {
		return nil, nil, malformed("integer marker: %#x != %#x", b[0],
			asn1IntegerID)
	}
	length := int(b[1])
	if length == 0 {
		return nil, nil, malformed("length is zero")
	}
	if 2+length > len(b) {
		return nil, nil, malformed("length %d exceeds the signature",
			length)
	}
	body := b[2 : 2+length]
	if body[0]&0x80 != 0 {
		return nil, nil, malformed("is negative")
	}
	if length > 1 && body[0] == 0x00 && body[1]&0x80 == 0 {
		return nil, nil, malformed("value has too much padding")
	}

	for len(body) > 0 && body[0] == 0x00 {
		body = body[1:]
	}
	if len(body) > 32 {
		return nil, nil, malformed("is larger than 256 bits")
	}

	var v secp256k1.ModNScalar
	if overflow := v.SetByteSlice(body); overflow {
		return nil, nil, malformed("is not below the group order")
	}
	if v.IsZero() {
		return nil, nil, malformed("is zero")
	}
	return &v, b[2+length:], nil
}
