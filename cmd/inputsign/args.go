package main

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/mahdiidarabi/inputsign/internal/decode"
	"github.com/mahdiidarabi/inputsign/pkg/inputsign"
)

// sighashArg parses a sighash type name such as "all" or "single|acp".
type sighashArg struct {
	inputsign.SighashType
}

func (a *sighashArg) UnmarshalFlag(value string) error {
	t, err := inputsign.ParseSighashType(value)
	if err != nil {
		return err
	}
	a.SighashType = t
	return nil
}

// hexArg is a hex encoded byte string.
type hexArg []byte

func (a *hexArg) UnmarshalFlag(value string) error {
	b, err := decode.Base16(value)
	if err != nil {
		return err
	}
	*a = b
	return nil
}

// privateKeyArg is a private key in hex or wallet import format.
type privateKeyArg struct {
	*btcec.PrivateKey
}

func (a *privateKeyArg) UnmarshalFlag(value string) error {
	key, err := decode.PrivateKey(value)
	if err != nil {
		return err
	}
	a.PrivateKey = key
	return nil
}

// scriptArg is a script in hex or token form.
type scriptArg []byte

func (a *scriptArg) UnmarshalFlag(value string) error {
	script, err := decode.Script(value)
	if err != nil {
		return err
	}
	*a = script
	return nil
}
