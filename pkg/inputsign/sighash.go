package inputsign

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SighashType selects which parts of a transaction a signature commits to.
type SighashType uint32

const (
	// SighashAll commits to every input and output.
	SighashAll SighashType = 0x1

	// SighashNone commits to the inputs only.
	SighashNone SighashType = 0x2

	// SighashSingle commits to the inputs and the output at the signed
	// input's index.
	SighashSingle SighashType = 0x3

	// SighashAnyoneCanPay restricts the commitment to the signed input.
	// It is combined with one of the base types above.
	SighashAnyoneCanPay SighashType = 0x80

	// sighashMask selects the base type.
	sighashMask = 0x1f
)

// base returns the type with the ANYONECANPAY modifier removed.
func (t SighashType) base() SighashType {
	return t & sighashMask
}

// String returns the type in the form accepted by ParseSighashType.
func (t SighashType) String() string {
	var name string
	switch t.base() {
	case SighashAll:
		name = "all"
	case SighashNone:
		name = "none"
	case SighashSingle:
		name = "single"
	default:
		return fmt.Sprintf("0x%02x", uint32(t))
	}
	if t&SighashAnyoneCanPay != 0 {
		name += "|anyonecanpay"
	}
	return name
}

// ParseSighashType parses a sighash type name such as "all", "none",
// "single" or any of them combined with the "anyonecanpay" modifier, e.g.
// "single|anyonecanpay" or "all+acp". An empty string means SighashAll.
func ParseSighashType(s string) (SighashType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SighashAll, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == '+' || r == ','
	})

	var t SighashType
	var bases int
	for _, part := range parts {
		switch part {
		case "all":
			t |= SighashAll
			bases++
		case "none":
			t |= SighashNone
			bases++
		case "single":
			t |= SighashSingle
			bases++
		case "anyonecanpay", "acp":
			t |= SighashAnyoneCanPay
		default:
			str := fmt.Sprintf("unknown sighash type %q", part)
			return 0, signError(ErrInvalidSighashType, str)
		}
	}

	if bases == 1 {
		return t, nil
	}
	str := fmt.Sprintf("sighash type %q does not name exactly one of "+
		"all, none or single", s)
	return 0, signError(ErrInvalidSighashType, str)
}

// CalcSignatureHash computes the legacy signature hash of the input at idx
// when spending an output locked by prevoutScript.
//
// The transaction is not modified. A SINGLE hash for an input without a
// matching output yields the value 1 encoded as a little-endian 256-bit
// number, as consensus requires.
func CalcSignatureHash(tx *wire.MsgTx, idx int, prevoutScript []byte,
	hashType SighashType) ([]byte, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("input index %d is out of range for a "+
			"transaction with %d inputs", idx, len(tx.TxIn))
		return nil, signError(ErrIndexOutOfRange, str)
	}

	if hashType.base() == SighashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:], nil
	}

	script, err := removeCodeSeparators(prevoutScript)
	if err != nil {
		str := fmt.Sprintf("prevout script is malformed: %v", err)
		return nil, signError(ErrMalformedScript, str)
	}

	txCopy := copyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = script
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType.base() {
	case SighashNone:
		txCopy.TxOut = txCopy.TxOut[:0]
		zeroOtherSequences(txCopy, idx)

	case SighashSingle:
		txCopy.TxOut = txCopy.TxOut[:idx+1]
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}
		zeroOtherSequences(txCopy, idx)
	}

	if hashType&SighashAnyoneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	var buf bytes.Buffer
	buf.Grow(txCopy.SerializeSizeStripped() + 4)
	if err := txCopy.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}
	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(hashType))
	buf.Write(typeBytes[:])

	hash := chainhash.DoubleHashB(buf.Bytes())
	log.Tracef("Sighash %x for input %d (%v)", hash, idx, hashType)
	return hash, nil
}

// zeroOtherSequences clears the sequence of every input except idx.
func zeroOtherSequences(tx *wire.MsgTx, idx int) {
	for i := range tx.TxIn {
		if i != idx {
			tx.TxIn[i].Sequence = 0
		}
	}
}

// copyTx returns a copy of tx whose inputs and outputs may be modified
// without touching the original. Scripts are shared since they are only
// ever replaced, never written to.
func copyTx(tx *wire.MsgTx) *wire.MsgTx {
	txCopy := &wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}

	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		txIns[i] = wire.TxIn{
			PreviousOutPoint: txIn.PreviousOutPoint,
			SignatureScript:  txIn.SignatureScript,
			Sequence:         txIn.Sequence,
		}
		txCopy.TxIn[i] = &txIns[i]
	}

	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, txOut := range tx.TxOut {
		txOuts[i] = *txOut
		txCopy.TxOut[i] = &txOuts[i]
	}

	return txCopy
}

// removeCodeSeparators returns script without any OP_CODESEPARATOR opcodes.
func removeCodeSeparators(script []byte) ([]byte, error) {
	var result []byte
	var prevOffset int32
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() != txscript.OP_CODESEPARATOR {
			result = append(result, script[prevOffset:tokenizer.ByteIndex()]...)
		}
		prevOffset = tokenizer.ByteIndex()
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
