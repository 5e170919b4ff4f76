package cipherkit

import (
	"errors"
	"fmt"

	"github.com/allisson/go-cipherkit/internal/engine"
)

// Sentinel errors for the engine failure categories. Match with errors.Is;
// the concrete error returned by session operations is always an *Error that
// unwraps to one of these.
var (
	// ErrGeneral indicates an unclassified engine failure.
	ErrGeneral = errors.New("general failure")

	// ErrUnsupportedAlgorithm indicates the algorithm is unknown to the engine
	// or has no working implementation compiled in.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrUnsupportedMode indicates the algorithm/mode combination cannot be
	// driven by the engine.
	ErrUnsupportedMode = errors.New("unsupported mode")

	// ErrUnsupportedFlags indicates an unknown flag bit or an invalid flag
	// combination was passed at open time.
	ErrUnsupportedFlags = errors.New("unsupported flags")

	// ErrInvalidKeyLength indicates the key does not match the algorithm's
	// key-length requirements. Keys are never truncated or padded.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidIVLength indicates the IV or counter block has the wrong
	// length for the mode and algorithm.
	ErrInvalidIVLength = errors.New("invalid IV length")

	// ErrInvalidLength indicates an input length that violates the mode's
	// alignment requirements, or a tag buffer of the wrong size.
	ErrInvalidLength = errors.New("invalid length")

	// ErrShortBuffer indicates the output buffer is too small for the result.
	ErrShortBuffer = errors.New("output buffer too short")

	// ErrInvalidState indicates an operation was called in an order the
	// cipher state machine forbids (e.g. Encrypt before SetKey).
	ErrInvalidState = errors.New("invalid cipher state")

	// ErrAuthentication indicates an AEAD tag or key-wrap integrity check
	// failed. This is security-critical and deliberately distinct from every
	// other failure: callers must not treat forged ciphertext like a length
	// mismatch.
	ErrAuthentication = errors.New("authentication failure")

	// ErrSecureMemoryExhausted indicates the bounded secure-memory pool used
	// by FlagSecure sessions is out of space.
	ErrSecureMemoryExhausted = errors.New("secure memory exhausted")

	// ErrSelfTest indicates the engine's one-time initialization self-test
	// failed; no cipher operations are possible.
	ErrSelfTest = errors.New("self-test failed")

	// ErrUnknownAlgorithm is returned by Algorithm.Name for codes the catalog
	// has no name for.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrInvalidName is returned by Algorithm.Name when the catalog name is
	// not valid UTF-8.
	ErrInvalidName = errors.New("algorithm name is not valid text")
)

// Error is the error type returned by session operations. It carries the
// operation name and the engine's native status code unmodified; Unwrap maps
// the code to the matching sentinel so errors.Is works.
type Error struct {
	// Op is the failing operation, e.g. "open" or "set_key".
	Op string
	// Code is the engine status code.
	Code int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("cipherkit: %s: %s (status %d)", e.Op, engine.Status(e.Code), e.Code)
}

// Unwrap maps the native status code onto the sentinel taxonomy.
func (e *Error) Unwrap() error {
	switch engine.Status(e.Code) {
	case engine.StatusUnsupportedAlgorithm:
		return ErrUnsupportedAlgorithm
	case engine.StatusUnsupportedMode:
		return ErrUnsupportedMode
	case engine.StatusUnsupportedFlags:
		return ErrUnsupportedFlags
	case engine.StatusInvalidKeyLength:
		return ErrInvalidKeyLength
	case engine.StatusInvalidIVLength:
		return ErrInvalidIVLength
	case engine.StatusInvalidLength:
		return ErrInvalidLength
	case engine.StatusShortBuffer:
		return ErrShortBuffer
	case engine.StatusInvalidState:
		return ErrInvalidState
	case engine.StatusAuthentication:
		return ErrAuthentication
	case engine.StatusSecureMemory:
		return ErrSecureMemoryExhausted
	case engine.StatusSelfTest:
		return ErrSelfTest
	default:
		return ErrGeneral
	}
}

// newOpError converts an engine status into the public error form; a success
// status yields nil.
func newOpError(op string, st engine.Status) error {
	if st == engine.StatusOK {
		return nil
	}
	return &Error{Op: op, Code: int(st)}
}
