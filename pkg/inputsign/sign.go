package inputsign

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// maxDeterministicAttempts bounds how many nonces of the RFC6979 stream are
// tried before giving up. A zero r or s occurs with negligible probability,
// so more than one attempt is never expected in practice.
const maxDeterministicAttempts = 8

// Request describes one transaction input to sign.
type Request struct {
	// Tx is the transaction being signed. It is not modified.
	Tx *wire.MsgTx

	// Index is the index of the input within Tx.
	Index int

	// PrevoutScript is the locking script of the output being spent.
	PrevoutScript []byte

	// HashType selects what the signature commits to. Zero means
	// SighashAll.
	HashType SighashType

	// PrivateKey signs the input.
	PrivateKey *secp256k1.PrivateKey

	// Nonce selects the nonce derivation. Nil means Deterministic{}.
	Nonce NonceSource
}

// SignInput signs the input described by req and returns the DER encoded
// signature followed by the sighash type byte.
func (s *Signer) SignInput(req *Request) ([]byte, error) {
	return s.signInput(req, false)
}

// SignInputRaw is SignInput without the trailing sighash type byte.
func (s *Signer) SignInputRaw(req *Request) ([]byte, error) {
	return s.signInput(req, true)
}

func (s *Signer) signInput(req *Request, raw bool) ([]byte, error) {
	if req == nil {
		return nil, errors.New("signing request is required")
	}
	sess := &session{signer: s, req: req, hashType: req.HashType, raw: raw}
	if sess.hashType == 0 {
		sess.hashType = SighashAll
	}
	if err := sess.run(); err != nil {
		return nil, err
	}
	return sess.encoded, nil
}

// signState is a step of the signing state machine.
type signState uint8

const (
	stateValidateInputs signState = iota
	stateComputeSighash
	stateDeriveNonce
	stateSign
	stateEncode
	stateDone
	stateFailed
)

var stateNames = map[signState]string{
	stateValidateInputs: "ValidateInputs",
	stateComputeSighash: "ComputeSighash",
	stateDeriveNonce:    "DeriveNonce",
	stateSign:           "Sign",
	stateEncode:         "Encode",
	stateDone:           "Done",
	stateFailed:         "Failed",
}

func (st signState) String() string {
	if name, ok := stateNames[st]; ok {
		return name
	}
	return fmt.Sprintf("signState(%d)", uint8(st))
}

// session carries one signing request through the state machine.
type session struct {
	signer   *Signer
	req      *Request
	hashType SighashType
	raw      bool

	state   signState
	attempt uint32
	hash    []byte
	nonce   *secp256k1.ModNScalar
	sig     *Signature
	encoded []byte
	err     error
}

func (s *session) run() error {
	for s.state != stateDone && s.state != stateFailed {
		prev := s.state
		s.step()
		log.Tracef("Input %d: %v -> %v", s.req.Index, prev, s.state)
	}
	return s.err
}

func (s *session) fail(err error) {
	s.err = err
	s.state = stateFailed
}

func (s *session) step() {
	switch s.state {
	case stateValidateInputs:
		if err := s.validate(); err != nil {
			s.fail(err)
			return
		}
		s.state = stateComputeSighash

	case stateComputeSighash:
		log.Tracef("Input %d: signing %v against script %v", s.req.Index,
			s.hashType, newLogClosure(func() string {
				disasm, _ := txscript.DisasmString(s.req.PrevoutScript)
				return disasm
			}))
		hash, err := CalcSignatureHash(s.req.Tx, s.req.Index,
			s.req.PrevoutScript, s.hashType)
		if err != nil {
			s.fail(err)
			return
		}
		s.hash = hash
		s.state = stateDeriveNonce

	case stateDeriveNonce:
		nonce, err := DeriveNonce(s.req.PrivateKey, s.hash, s.req.Nonce,
			s.attempt)
		if err != nil {
			s.fail(err)
			return
		}
		s.nonce = nonce
		s.state = stateSign

	case stateSign:
		sig, degenerate, err := s.signer.sign(s.req.PrivateKey, s.hash,
			s.nonce)
		s.nonce.Zero()
		switch {
		case err == nil:
			s.sig = sig
			s.state = stateEncode

		case degenerate && isDeterministic(s.req.Nonce) &&
			s.attempt+1 < maxDeterministicAttempts:

			log.Debugf("Input %d: retrying with the next "+
				"deterministic nonce: %v", s.req.Index, err)
			s.attempt++
			s.state = stateDeriveNonce

		default:
			s.fail(err)
		}

	case stateEncode:
		if s.raw {
			s.encoded = s.sig.Serialize()
		} else {
			s.encoded = Endorse(s.sig, s.hashType)
		}
		s.state = stateDone

	default:
		s.fail(fmt.Errorf("invalid signing state %v", s.state))
	}
}

// validate checks the request in the same order the console reports
// problems: nonce seed first, then the input index, then the key.
func (s *session) validate() error {
	req := s.req
	if err := checkNonceSource(req.Nonce); err != nil {
		return err
	}
	if req.Tx == nil {
		return errors.New("transaction is required")
	}
	if req.Index < 0 || req.Index >= len(req.Tx.TxIn) {
		str := fmt.Sprintf("input index %d is out of range for a "+
			"transaction with %d inputs", req.Index, len(req.Tx.TxIn))
		return signError(ErrIndexOutOfRange, str)
	}
	if req.PrivateKey == nil || req.PrivateKey.Key.IsZero() {
		return signError(ErrInvalidPrivateKey, "private key is zero")
	}
	return nil
}
