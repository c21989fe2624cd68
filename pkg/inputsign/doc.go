// Package inputsign signs a single input of a Bitcoin transaction with ECDSA
// over secp256k1.
//
// Signing computes the legacy signature hash of the input, derives a nonce
// either deterministically per RFC6979 or from caller supplied seed material,
// produces a low-S signature, verifies it against the signer's public key and
// DER-encodes it.
//
// # Quick Start
//
//	signer := inputsign.NewSigner()
//
//	endorsement, err := signer.SignInput(&inputsign.Request{
//	    Tx:            tx,
//	    Index:         0,
//	    PrevoutScript: prevoutScript,
//	    HashType:      inputsign.SighashAll,
//	    PrivateKey:    key,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%x\n", endorsement)
//
// The result is the DER signature followed by the sighash type byte. Use
// SignInputRaw for the bare DER encoding.
//
// # Nonces
//
// Request.Nonce selects the nonce derivation:
//
//	inputsign.Deterministic{}                 // RFC6979, the default
//	inputsign.Deterministic{ExtraData: extra} // RFC6979 with 32 bytes of extra entropy
//	inputsign.Seeded{Seed: seed}              // at least 16 bytes of caller entropy
//
// A deterministic nonce that yields a degenerate signature is replaced by the
// next nonce of the RFC6979 stream. A seeded nonce is never replaced; the
// caller has to supply new entropy.
//
// # Batch Signing
//
// Inputs are independent, so many of them can be signed in parallel:
//
//	client := inputsign.NewClient().
//	    WithParser(&inputsign.CSVParser{}).
//	    WithBatchConfig(inputsign.BatchConfig{NumWorkers: 8})
//
//	results, err := client.SignFile(ctx, "jobs.csv")
//
// # Errors
//
// Failures are reported as Error values wrapping an ErrorKind, for example:
//
//	if errors.Is(err, inputsign.ErrIndexOutOfRange) {
//	    ...
//	}
package inputsign
