package cipherkit

import "github.com/allisson/go-cipherkit/internal/engine"

// Flags is a bitset of session-creation options, combined with bitwise OR.
// The engine validates combinations at open time.
type Flags uint

const (
	// FlagNone is the empty flag set.
	FlagNone Flags = 0

	// FlagSecure places key material in the engine's bounded wipe-on-free
	// secure-memory pool.
	FlagSecure Flags = engine.FlagSecure

	// FlagEnableSync enables the OpenPGP CFB synchronization feature where
	// the engine supports it.
	FlagEnableSync Flags = engine.FlagEnableSync

	// FlagCbcCts enables ciphertext stealing in CBC mode. Incompatible with
	// FlagCbcMac.
	FlagCbcCts Flags = engine.FlagCbcCts

	// FlagCbcMac computes a CBC-MAC keyed checksum in CBC mode instead of
	// ciphertext. Incompatible with FlagCbcCts.
	FlagCbcMac Flags = engine.FlagCbcMac
)

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }
