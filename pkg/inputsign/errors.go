package inputsign

// ErrorKind identifies a kind of error. It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrShortNonceSeed indicates a caller supplied nonce seed is shorter
	// than MinimumSeedSize.
	ErrShortNonceSeed = ErrorKind("ErrShortNonceSeed")

	// ErrIndexOutOfRange indicates the input index does not refer to an
	// input of the transaction.
	ErrIndexOutOfRange = ErrorKind("ErrIndexOutOfRange")

	// ErrInvalidNonce indicates a nonce seed mapped to a scalar outside
	// [1, N-1].
	ErrInvalidNonce = ErrorKind("ErrInvalidNonce")

	// ErrInvalidExtraData indicates deterministic extra entropy that is
	// neither empty nor 32 bytes.
	ErrInvalidExtraData = ErrorKind("ErrInvalidExtraData")

	// ErrSigningFailed indicates the signature could not be produced or did
	// not verify against the signing key.
	ErrSigningFailed = ErrorKind("ErrSigningFailed")

	// ErrInvalidPrivateKey indicates a private key that is zero or not
	// below the group order.
	ErrInvalidPrivateKey = ErrorKind("ErrInvalidPrivateKey")

	// ErrMalformedScript indicates a previous output script that cannot be
	// tokenized.
	ErrMalformedScript = ErrorKind("ErrMalformedScript")

	// ErrMalformedSignature indicates bytes that are not a strict DER
	// encoded secp256k1 signature.
	ErrMalformedSignature = ErrorKind("ErrMalformedSignature")

	// ErrInvalidSighashType indicates an unknown signature hash type.
	ErrInvalidSighashType = ErrorKind("ErrInvalidSighashType")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to signing a transaction input. It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// signError creates an Error given a set of arguments.
func signError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
