package inputsign

import (
	"fmt"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signLabel(t *testing.T, label string) *Signature {
	t.Helper()
	key := keyFromLabel("key " + label)
	hash := keyFromLabel("hash " + label).Key.Bytes()

	nonce, err := DeriveNonce(key, hash[:], nil, 0)
	require.NoError(t, err)
	sig, err := NewSigner().Sign(key, hash[:], nonce)
	require.NoError(t, err)
	return sig
}

func TestSignature_Serialize_MatchesDcrd(t *testing.T) {
	for i := 0; i < 32; i++ {
		sig := signLabel(t, fmt.Sprint(i))

		want := ecdsa.NewSignature(&sig.R, &sig.S).Serialize()
		assert.Equal(t, want, sig.Serialize())
	}
}

func TestSignature_Serialize_Padding(t *testing.T) {
	var sig Signature
	sig.R.SetByteSlice(append([]byte{0x80}, make([]byte, 31)...))
	sig.S.SetInt(1)

	der := sig.Serialize()
	require.Len(t, der, 6+33+1)
	assert.Equal(t, byte(0x30), der[0])
	assert.Equal(t, byte(len(der)-2), der[1])
	assert.Equal(t, []byte{0x02, 33, 0x00, 0x80}, der[2:6])
	assert.Equal(t, []byte{0x02, 0x01, 0x01}, der[len(der)-3:])
}

func TestParseDERSignature_RoundTrip(t *testing.T) {
	for i := 0; i < 32; i++ {
		sig := signLabel(t, fmt.Sprint(i))

		parsed, err := ParseDERSignature(sig.Serialize())
		require.NoError(t, err)
		assert.True(t, sig.R.Equals(&parsed.R))
		assert.True(t, sig.S.Equals(&parsed.S))
	}
}

func TestParseDERSignature_Malformed(t *testing.T) {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	valid := (&Signature{R: one, S: one}).Serialize()
	require.Equal(t, []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01},
		valid)

	tests := []struct {
		name string
		sig  []byte
	}{
		{"empty", nil},
		{"too short", valid[:7]},
		{"wrong marker", []byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}},
		{"bad length", []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}},
		{"negative R", []byte{0x30, 0x06, 0x02, 0x01, 0x81, 0x02, 0x01, 0x01}},
		{"padded S", []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x02, 0x02, 0x00, 0x01}},
		{"zero R", []byte{0x30, 0x06, 0x02, 0x01, 0x00, 0x02, 0x01, 0x01}},
		{"wrong S marker", []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x03, 0x01, 0x01}},
		{"S overruns", []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x02, 0x01}},
		{"trailing", []byte{0x30, 0x08, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01, 0x00, 0x00}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseDERSignature(test.sig)
			assert.ErrorIs(t, err, ErrMalformedSignature)
		})
	}
}

func TestEndorse(t *testing.T) {
	sig := signLabel(t, "endorse")
	hashType := SighashSingle | SighashAnyoneCanPay

	endorsement := Endorse(sig, hashType)
	der := sig.Serialize()
	assert.Equal(t, der, endorsement[:len(der)])
	assert.Equal(t, byte(0x83), endorsement[len(endorsement)-1])
}
