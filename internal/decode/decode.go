// Package decode turns the textual forms accepted on the command line and in
// batch files into transaction, script and key values.
package decode

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	// ErrTrailingBytes is returned when a serialized transaction is
	// followed by data that is not part of it.
	ErrTrailingBytes = errors.New("trailing bytes after transaction")

	// ErrKeyOutOfRange is returned for a raw private key that is zero or not
	// below the secp256k1 group order.
	ErrKeyOutOfRange = errors.New("private key is not in [1, N-1]")

	// ErrUnknownOpcode is returned for a script token that is neither an
	// opcode name, a number nor a bracketed push.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// Base16 decodes a hex string. An optional 0x prefix and surrounding white
// space are ignored.
func Base16(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	b, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex: %w", err)
	}
	return b, nil
}

// Transaction decodes a hex encoded transaction in the wire format.
func Transaction(text string) (*wire.MsgTx, error) {
	raw, err := Base16(text)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(raw)
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, r.Len())
	}
	return tx, nil
}

// PrivateKey decodes a private key given either as 64 hex characters or in
// wallet import format.
func PrivateKey(text string) (*btcec.PrivateKey, error) {
	text = strings.TrimSpace(text)
	if len(text) == 2*secp256k1.PrivKeyBytesLen {
		if raw, err := hex.DecodeString(text); err == nil {
			var scalar secp256k1.ModNScalar
			overflow := scalar.SetByteSlice(raw)
			if overflow || scalar.IsZero() {
				return nil, ErrKeyOutOfRange
			}
			return secp256k1.NewPrivateKey(&scalar), nil
		}
	}

	wif, err := btcutil.DecodeWIF(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return wif.PrivKey, nil
}

// Script decodes a script given either as hex or as a sequence of white
// space separated tokens:
//
//	dup hash160 [89abcdefabbaabbaabbaabbaabbaabbaabbaabba] equalverify checksig
//
// Opcode names are matched case insensitively with or without the OP_
// prefix, decimal numbers are pushed as script numbers and bracketed hex is
// pushed as data.
//
// A lone decimal number such as "10" is a token, not hex. Hex made only of
// digits must carry a 0x prefix, which always selects hex.
func Script(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return Base16(text)
	}
	if !strings.ContainsAny(text, " \t\n[") && !isDecimal(text) {
		if raw, err := hex.DecodeString(text); err == nil {
			return raw, nil
		}
	}

	builder := txscript.NewScriptBuilder()
	for _, token := range strings.Fields(text) {
		if err := addToken(builder, token); err != nil {
			return nil, err
		}
	}

	script, err := builder.Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build script: %w", err)
	}
	return script, nil
}

// isDecimal reports whether text parses as a script number token.
func isDecimal(text string) bool {
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}

func addToken(builder *txscript.ScriptBuilder, token string) error {
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		data, err := hex.DecodeString(token[1 : len(token)-1])
		if err != nil {
			return fmt.Errorf("failed to decode push %s: %w", token, err)
		}
		builder.AddData(data)
		return nil
	}

	if n, err := strconv.ParseInt(token, 10, 64); err == nil {
		builder.AddInt64(n)
		return nil
	}

	name := strings.ToUpper(token)
	if !strings.HasPrefix(name, "OP_") {
		name = "OP_" + name
	}
	opcode, ok := txscript.OpcodeByName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, token)
	}
	builder.AddOp(opcode)
	return nil
}
