// Package engine implements the cipher engine behind the public cipherkit API.
//
// The engine keeps a deliberately C-like boundary: algorithms, modes and flags
// are plain integer codes (matching the libgcrypt ABI values), every operation
// returns an integer Status, and each open context is an opaque handle owned
// by exactly one caller. The public package is responsible for turning
// statuses into typed errors; the engine never wraps or reinterprets its own
// codes.
package engine

// Status is the engine's native status code. Zero means success; every other
// value identifies a failure category. Codes are a stable contract with the
// public error mapping and must not be renumbered.
type Status int

const (
	StatusOK Status = iota
	StatusGeneral
	StatusUnsupportedAlgorithm
	StatusUnsupportedMode
	StatusUnsupportedFlags
	StatusInvalidKeyLength
	StatusInvalidIVLength
	StatusInvalidLength
	StatusShortBuffer
	StatusInvalidState
	StatusAuthentication
	StatusSecureMemory
	StatusSelfTest
)

var statusText = map[Status]string{
	StatusOK:                   "success",
	StatusGeneral:              "general failure",
	StatusUnsupportedAlgorithm: "unsupported algorithm",
	StatusUnsupportedMode:      "unsupported mode",
	StatusUnsupportedFlags:     "unsupported flags",
	StatusInvalidKeyLength:     "invalid key length",
	StatusInvalidIVLength:      "invalid IV length",
	StatusInvalidLength:        "invalid length",
	StatusShortBuffer:          "output buffer too short",
	StatusInvalidState:         "invalid cipher state",
	StatusAuthentication:       "authentication failure",
	StatusSecureMemory:         "secure memory exhausted",
	StatusSelfTest:             "self-test failed",
}

// String returns a short description of the status.
func (s Status) String() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return "unknown status"
}
