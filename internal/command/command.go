// Package command adapts signing operations to console output.
package command

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/mahdiidarabi/inputsign/pkg/inputsign"
)

// Result is the outcome of a command.
type Result int

const (
	// Okay means the command wrote its output.
	Okay Result = iota

	// Failure means the command wrote an error line and no output.
	Failure
)

// Console messages for signing failures.
const (
	MessageShortNonce      = "The nonce is less than 128 bits long."
	MessageIndexOutOfRange = "The index does not refer to an existing input."
	MessageInvalidNonce    = "The nonce does not produce a valid signing key."
	MessageSigningFailed   = "The signing operation failed."
)

// Message returns the console message for a signing error.
func Message(err error) string {
	switch {
	case errors.Is(err, inputsign.ErrShortNonceSeed):
		return MessageShortNonce
	case errors.Is(err, inputsign.ErrIndexOutOfRange):
		return MessageIndexOutOfRange
	case errors.Is(err, inputsign.ErrInvalidNonce):
		return MessageInvalidNonce
	default:
		return MessageSigningFailed
	}
}

// InputSign signs one transaction input and prints the signature.
type InputSign struct {
	// Index is the index of the input to sign.
	Index int

	// HashType selects what the signature commits to.
	HashType inputsign.SighashType

	// Transaction holds the input being signed.
	Transaction *wire.MsgTx

	// PrivateKey signs the input.
	PrivateKey *secp256k1.PrivateKey

	// PrevoutScript is the locking script of the output being spent.
	PrevoutScript []byte

	// Nonce is the nonce seed. Empty selects a deterministic nonce.
	Nonce []byte

	// Raw prints the bare DER signature without the sighash byte.
	Raw bool

	// Signer defaults to inputsign.NewSigner().
	Signer *inputsign.Signer
}

// Invoke signs the input. On success a single hex line is written to out,
// otherwise a single message line is written to errOut and nothing to out.
func (c *InputSign) Invoke(out, errOut io.Writer) Result {
	signer := c.Signer
	if signer == nil {
		signer = inputsign.NewSigner()
	}

	req := &inputsign.Request{
		Tx:            c.Transaction,
		Index:         c.Index,
		PrevoutScript: c.PrevoutScript,
		HashType:      c.HashType,
		PrivateKey:    c.PrivateKey,
	}
	if len(c.Nonce) != 0 {
		req.Nonce = inputsign.Seeded{Seed: c.Nonce}
	}

	sign := signer.SignInput
	if c.Raw {
		sign = signer.SignInputRaw
	}
	sig, err := sign(req)
	if err != nil {
		log.Debugf("Signing input %d failed: %v", c.Index, err)
		fmt.Fprintln(errOut, Message(err))
		return Failure
	}

	fmt.Fprintln(out, hex.EncodeToString(sig))
	return Okay
}

// Batch signs every job of a file and prints one line per job.
type Batch struct {
	// Source is the path of the job file.
	Source string

	// Client parses and signs the jobs.
	Client *inputsign.Client
}

// Invoke signs the batch. Each successful job writes "N HEX" to out and each
// failed job writes "N MESSAGE" to errOut, N being the job's position in the
// file. The result is Failure when the file cannot be read or any job fails.
func (c *Batch) Invoke(ctx context.Context, out, errOut io.Writer) Result {
	client := c.Client
	if client == nil {
		client = inputsign.NewClient()
	}

	results, err := client.SignFile(ctx, c.Source)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return Failure
	}

	result := Okay
	for _, r := range results {
		if r.Err != nil {
			log.Debugf("Job %d failed: %v", r.Index, r.Err)
			fmt.Fprintf(errOut, "%d %s\n", r.Index, batchMessage(r.Err))
			result = Failure
			continue
		}
		fmt.Fprintf(out, "%d %x\n", r.Index, r.Signature)
	}

	log.Debugf("Signed %d jobs from %s", len(results), c.Source)
	return result
}

// batchMessage is Message with cancellation reported as such.
func batchMessage(err error) string {
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {

		return err.Error()
	}
	return Message(err)
}
