package cipherkit

import (
	"runtime"

	"github.com/allisson/go-cipherkit/internal/engine"
)

// Session is one live cipher session. It exclusively owns a single engine
// context from Open until Close; contexts are never shared between sessions.
//
// The zero value is not usable: Open is the sole constructor. A Session must
// not be copied, and it is not safe for concurrent use: the underlying
// context is mutated in place by every operation.
type Session struct {
	algo  Algorithm
	mode  Mode
	flags Flags

	ctx     *engine.Context
	cleanup runtime.Cleanup
	closed  bool
}

// Open allocates a new session for the given algorithm and mode with no
// flags. It triggers the lazy library initialization and fails if the
// combination is unsupported.
func Open(algo Algorithm, mode Mode) (*Session, error) {
	return OpenWithFlags(algo, mode, FlagNone)
}

// OpenWithFlags is Open with an explicit flag set.
func OpenWithFlags(algo Algorithm, mode Mode, flags Flags) (*Session, error) {
	if err := ensureInit(); err != nil {
		observe("open", engine.StatusSelfTest)
		return nil, err
	}
	ctx, st := engine.Open(int(algo), int(mode), int(flags))
	observe("open", st)
	if st != engine.StatusOK {
		return nil, newOpError("open", st)
	}
	s := &Session{algo: algo, mode: mode, flags: flags, ctx: ctx}
	// Backstop: wipe key material and release the context if the session is
	// garbage-collected without Close.
	s.cleanup = runtime.AddCleanup(s, func(c *engine.Context) { c.Close() }, ctx)
	return s, nil
}

// Algorithm returns the algorithm this session was opened with.
func (s *Session) Algorithm() Algorithm { return s.algo }

// Mode returns the mode this session was opened with.
func (s *Session) Mode() Mode { return s.mode }

// Flags returns the flags this session was opened with.
func (s *Session) Flags() Flags { return s.flags }

// Close releases the session's engine context and wipes key material. It is
// idempotent and always returns nil after the first call.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cleanup.Stop()
	s.ctx.Close()
	observe("close", engine.StatusOK)
	return nil
}

func (s *Session) do(op string, fn func() engine.Status) error {
	if s.closed {
		observe(op, engine.StatusInvalidState)
		return newOpError(op, engine.StatusInvalidState)
	}
	st := fn()
	observe(op, st)
	return newOpError(op, st)
}

// SetKey installs the symmetric key. It must be called before any encrypt,
// decrypt or authenticate operation; a key length that does not satisfy the
// algorithm's requirements fails with ErrInvalidKeyLength.
func (s *Session) SetKey(key []byte) error {
	return s.do("set_key", func() engine.Status { return s.ctx.SetKey(key) })
}

// SetIV installs the initialization vector for IV-based modes. Length
// expectations are mode and algorithm specific and validated by the engine.
func (s *Session) SetIV(iv []byte) error {
	return s.do("set_iv", func() engine.Status { return s.ctx.SetIV(iv) })
}

// SetCtr installs the initial counter block for CTR mode.
func (s *Session) SetCtr(ctr []byte) error {
	return s.do("set_ctr", func() engine.Status { return s.ctx.SetCtr(ctr) })
}

// Reset reinitializes IV, counter and authentication state while preserving
// the installed key, so one session can process multiple independent
// messages under the same key.
func (s *Session) Reset() error {
	return s.do("reset", func() engine.Status { return s.ctx.Reset() })
}

// Authenticate feeds additional authenticated data into an AEAD session. It
// must be called after key and IV setup and before the first Encrypt or
// Decrypt; the engine rejects other orderings with ErrInvalidState.
func (s *Session) Authenticate(aad []byte) error {
	return s.do("authenticate", func() engine.Status { return s.ctx.Authenticate(aad) })
}

// GetTag extracts the authentication tag of an AEAD session into tag, whose
// length must match the tag size the mode produces.
func (s *Session) GetTag(tag []byte) error {
	return s.do("get_tag", func() engine.Status { return s.ctx.GetTag(tag) })
}

// VerifyTag checks the provided tag against the computed one using a
// constant-time comparison. A mismatch fails with ErrAuthentication, which is
// distinct from every other failure.
func (s *Session) VerifyTag(tag []byte) error {
	return s.do("verify_tag", func() engine.Status { return s.ctx.VerifyTag(tag) })
}

// Encrypt transforms src into dst, which must be at least as long as src
// (AES-Wrap needs 8 extra bytes, CBC-MAC one block). dst and src may overlap
// only if they are the same slice.
func (s *Session) Encrypt(dst, src []byte) error {
	return s.do("encrypt", func() engine.Status { return s.ctx.Encrypt(dst, src) })
}

// Decrypt transforms src into dst; the same buffer rules as Encrypt apply.
func (s *Session) Decrypt(dst, src []byte) error {
	return s.do("decrypt", func() engine.Status { return s.ctx.Decrypt(dst, src) })
}

// EncryptInPlace transforms buf in place.
func (s *Session) EncryptInPlace(buf []byte) error {
	return s.do("encrypt", func() engine.Status { return s.ctx.Encrypt(buf, buf) })
}

// DecryptInPlace transforms buf in place.
func (s *Session) DecryptInPlace(buf []byte) error {
	return s.do("decrypt", func() engine.Status { return s.ctx.Decrypt(buf, buf) })
}
