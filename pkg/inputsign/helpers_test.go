package inputsign

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

const (
	// testTxHex spends one outpoint to a single P2PKH output.
	testTxHex = "0100000001c997a5e56e104102fa209c6a852dd90660a20b2d9c35" +
		"2423edce25857fcd37040000000000ffffffff0100ca9a3b000000001976" +
		"a9141234567890abcdef1234567890abcdef1234567888ac00000000"

	// testKeyHex is the BIP32 test vector 1 master key.
	testKeyHex = "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35"

	// testScriptHex is a P2PKH script.
	testScriptHex = "76a9141234567890abcdef1234567890abcdef1234567888ac"
)

func hexToBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func testKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	return secp256k1.PrivKeyFromBytes(hexToBytes(t, testKeyHex))
}

// keyFromLabel derives a test key from a label.
func keyFromLabel(label string) *secp256k1.PrivateKey {
	h := sha256.Sum256([]byte(label))
	return secp256k1.PrivKeyFromBytes(h[:])
}

func testScript(t *testing.T) []byte {
	t.Helper()
	return hexToBytes(t, testScriptHex)
}

// multiTx returns a transaction with three inputs and two outputs.
func multiTx() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	for i := 0; i < 3; i++ {
		hash := chainhash.DoubleHashH([]byte{byte(i)})
		txIn := wire.NewTxIn(wire.NewOutPoint(&hash, uint32(i)), nil, nil)
		txIn.Sequence = 0xfffffff0 + uint32(i)
		tx.AddTxIn(txIn)
	}
	tx.AddTxOut(wire.NewTxOut(50000, []byte{txscript.OP_TRUE}))
	tx.AddTxOut(wire.NewTxOut(25000, []byte{txscript.OP_DUP,
		txscript.OP_DROP, txscript.OP_TRUE}))
	tx.LockTime = 500
	return tx
}

func decodeTestTx(txHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, err
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return tx, nil
}

func serializeTx(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

// countingCurve wraps Secp256k1 and reports a zero r for the first
// zeroFirst multiplications.
type countingCurve struct {
	zeroFirst int
	calls     int
}

func (c *countingCurve) BaseMultX(k *secp256k1.ModNScalar) secp256k1.ModNScalar {
	c.calls++
	if c.calls <= c.zeroFirst {
		return secp256k1.ModNScalar{}
	}
	return Secp256k1.BaseMultX(k)
}

func (c *countingCurve) Verify(hash []byte, r, s *secp256k1.ModNScalar,
	pubKey *secp256k1.PublicKey) bool {

	return Secp256k1.Verify(hash, r, s, pubKey)
}

// rejectingCurve never verifies a signature.
type rejectingCurve struct{}

func (rejectingCurve) BaseMultX(k *secp256k1.ModNScalar) secp256k1.ModNScalar {
	return Secp256k1.BaseMultX(k)
}

func (rejectingCurve) Verify([]byte, *secp256k1.ModNScalar,
	*secp256k1.ModNScalar, *secp256k1.PublicKey) bool {

	return false
}
