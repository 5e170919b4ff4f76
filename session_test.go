package cipherkit

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/go-cipherkit/internal/engine"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func openSession(t *testing.T, algo Algorithm, mode Mode, flags Flags, key []byte) *Session {
	t.Helper()
	s, err := OpenWithFlags(algo, mode, flags)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.SetKey(key))
	return s
}

func TestInitialize_Idempotent(t *testing.T) {
	require.NoError(t, Initialize())
	require.NoError(t, Initialize())
}

func TestOpen(t *testing.T) {
	t.Run("valid session reports its parameters", func(t *testing.T) {
		s, err := Open(Aes256, Gcm)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()

		assert.Equal(t, Aes256, s.Algorithm())
		assert.Equal(t, Gcm, s.Mode())
		assert.Equal(t, FlagNone, s.Flags())
	})

	t.Run("unavailable algorithm", func(t *testing.T) {
		_, err := Open(Idea, Cbc)
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("unknown algorithm code", func(t *testing.T) {
		_, err := Open(Algorithm(5000), Cbc)
		assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("unimplemented mode", func(t *testing.T) {
		for _, mode := range []Mode{Ccm, Ocb, Eax} {
			_, err := Open(Aes, mode)
			assert.ErrorIs(t, err, ErrUnsupportedMode, "mode %v", mode)
		}
	})

	t.Run("incompatible algorithm and mode", func(t *testing.T) {
		_, err := Open(Chacha20, Cbc)
		assert.ErrorIs(t, err, ErrUnsupportedMode)

		_, err = Open(Aes, Stream)
		assert.ErrorIs(t, err, ErrUnsupportedMode)
	})

	t.Run("unknown flag bits", func(t *testing.T) {
		_, err := OpenWithFlags(Aes, Cbc, Flags(0x40))
		assert.ErrorIs(t, err, ErrUnsupportedFlags)
	})

	t.Run("conflicting CBC flags", func(t *testing.T) {
		_, err := OpenWithFlags(Aes, Cbc, FlagCbcCts|FlagCbcMac)
		assert.ErrorIs(t, err, ErrUnsupportedFlags)
	})
}

func TestSession_Close(t *testing.T) {
	t.Run("no context leaks across open and close", func(t *testing.T) {
		before := engine.LiveContexts()
		sessions := make([]*Session, 0, 10)
		for range 10 {
			s, err := Open(Aes, Cbc)
			require.NoError(t, err)
			sessions = append(sessions, s)
		}
		assert.Equal(t, before+10, engine.LiveContexts())

		for _, s := range sessions {
			require.NoError(t, s.Close())
		}
		assert.Equal(t, before, engine.LiveContexts())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		before := engine.LiveContexts()
		s, err := Open(Aes, Cbc)
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.Equal(t, before, engine.LiveContexts())
	})

	t.Run("operations on a closed session fail", func(t *testing.T) {
		s, err := Open(Aes, Cbc)
		require.NoError(t, err)
		require.NoError(t, s.SetKey(make([]byte, 16)))
		require.NoError(t, s.Close())

		buf := make([]byte, 16)
		assert.ErrorIs(t, s.SetKey(make([]byte, 16)), ErrInvalidState)
		assert.ErrorIs(t, s.SetIV(make([]byte, 16)), ErrInvalidState)
		assert.ErrorIs(t, s.Encrypt(buf, buf), ErrInvalidState)
		assert.ErrorIs(t, s.Decrypt(buf, buf), ErrInvalidState)
		assert.ErrorIs(t, s.Reset(), ErrInvalidState)
		assert.ErrorIs(t, s.GetTag(buf), ErrInvalidState)
	})
}

func TestSession_StateMachine(t *testing.T) {
	t.Run("encrypt before SetKey", func(t *testing.T) {
		s, err := Open(Aes, Cbc)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()

		buf := make([]byte, 16)
		assert.ErrorIs(t, s.Encrypt(buf, buf), ErrInvalidState)
	})

	t.Run("wrong key length", func(t *testing.T) {
		s, err := Open(Aes256, Cbc)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()

		assert.ErrorIs(t, s.SetKey(make([]byte, 16)), ErrInvalidKeyLength)
		assert.ErrorIs(t, s.SetKey(nil), ErrInvalidKeyLength)
	})

	t.Run("wrong IV length", func(t *testing.T) {
		s := openSession(t, Aes, Cbc, FlagNone, randBytes(t, 16))
		assert.ErrorIs(t, s.SetIV(make([]byte, 7)), ErrInvalidIVLength)
	})

	t.Run("misaligned input", func(t *testing.T) {
		s := openSession(t, Aes, Ecb, FlagNone, randBytes(t, 16))
		buf := make([]byte, 15)
		assert.ErrorIs(t, s.Encrypt(buf, buf), ErrInvalidLength)
	})

	t.Run("short output buffer", func(t *testing.T) {
		s := openSession(t, Aes, Ecb, FlagNone, randBytes(t, 16))
		assert.ErrorIs(t, s.Encrypt(make([]byte, 16), make([]byte, 32)), ErrShortBuffer)
	})
}

func TestSession_RoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		algo   Algorithm
		mode   Mode
		flags  Flags
		keyLen int
		ivLen  int
		ptLen  int
	}{
		{"AES-128 ECB", Aes, Ecb, FlagNone, 16, 0, 64},
		{"AES-256 CBC", Aes256, Cbc, FlagNone, 32, 16, 64},
		{"AES-256 CBC-CTS", Aes256, Cbc, FlagCbcCts, 32, 16, 50},
		{"AES-128 CFB", Aes, Cfb, FlagNone, 16, 16, 37},
		{"AES-128 CFB8", Aes, Cfb8, FlagNone, 16, 16, 21},
		{"AES-192 OFB", Aes192, Ofb, FlagNone, 24, 16, 45},
		{"AES-128 CTR", Aes, Ctr, FlagNone, 16, 16, 77},
		{"3DES CBC", TripleDes, Cbc, FlagNone, 24, 8, 40},
		{"Blowfish CFB", Blowfish, Cfb, FlagNone, 16, 8, 19},
		{"CAST5 OFB", Cast5, Ofb, FlagNone, 16, 8, 33},
		{"Twofish CBC", Twofish, Cbc, FlagNone, 32, 16, 48},
		{"RC4 stream", Arcfour, Stream, FlagNone, 16, 0, 99},
		{"ChaCha20 stream", Chacha20, Stream, FlagNone, 32, 12, 123},
		{"Salsa20 stream", Salsa20, Stream, FlagNone, 32, 8, 200},
		{"AES-128 XTS", Aes, Xts, FlagNone, 32, 16, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := randBytes(t, tt.keyLen)
			pt := randBytes(t, tt.ptLen)
			var iv []byte
			if tt.ivLen > 0 {
				iv = randBytes(t, tt.ivLen)
			}

			enc := openSession(t, tt.algo, tt.mode, tt.flags, key)
			if iv != nil {
				require.NoError(t, enc.SetIV(iv))
			}
			ct := make([]byte, tt.ptLen)
			require.NoError(t, enc.Encrypt(ct, pt))
			assert.NotEqual(t, pt, ct)

			dec := openSession(t, tt.algo, tt.mode, tt.flags, key)
			if iv != nil {
				require.NoError(t, dec.SetIV(iv))
			}
			got := make([]byte, tt.ptLen)
			require.NoError(t, dec.Decrypt(got, ct))
			assert.Equal(t, pt, got)
		})
	}
}

func TestSession_ZeroLengthInputs(t *testing.T) {
	tests := []struct {
		name   string
		algo   Algorithm
		mode   Mode
		keyLen int
	}{
		{"AES ECB", Aes, Ecb, 16},
		{"AES CBC", Aes, Cbc, 16},
		{"AES CFB", Aes, Cfb, 16},
		{"AES CTR", Aes, Ctr, 16},
		{"AES GCM", Aes, Gcm, 16},
		{"ChaCha20 stream", Chacha20, Stream, 32},
		{"RC4 stream", Arcfour, Stream, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openSession(t, tt.algo, tt.mode, FlagNone, randBytes(t, tt.keyLen))
			assert.NoError(t, s.Encrypt(nil, nil))
			assert.NoError(t, s.Decrypt([]byte{}, []byte{}))
		})
	}

	t.Run("GCM tag over no data", func(t *testing.T) {
		s := openSession(t, Aes, Gcm, FlagNone, make([]byte, 16))
		require.NoError(t, s.Encrypt(nil, nil))
		tag := make([]byte, 16)
		require.NoError(t, s.GetTag(tag))
		// NIST GCM test case 1: zero key, zero nonce, empty plaintext.
		assert.Equal(t, "58e2fccefa7e3061367f1d57a4e7455a", hex.EncodeToString(tag))
	})
}

func TestSession_AEADFlow(t *testing.T) {
	for _, tt := range []struct {
		name string
		algo Algorithm
		mode Mode
	}{
		{"AES-256 GCM", Aes256, Gcm},
		{"ChaCha20-Poly1305", Chacha20, Poly1305},
	} {
		t.Run(tt.name, func(t *testing.T) {
			key := randBytes(t, 32)
			nonce := randBytes(t, 12)
			aad := []byte("record header v1")
			pt := []byte("authenticated and encrypted payload")

			enc := openSession(t, tt.algo, tt.mode, FlagNone, key)
			require.NoError(t, enc.SetIV(nonce))
			require.NoError(t, enc.Authenticate(aad))
			ct := make([]byte, len(pt))
			require.NoError(t, enc.Encrypt(ct, pt))
			tag := make([]byte, 16)
			require.NoError(t, enc.GetTag(tag))

			t.Run("decrypt and verify", func(t *testing.T) {
				dec := openSession(t, tt.algo, tt.mode, FlagNone, key)
				require.NoError(t, dec.SetIV(nonce))
				require.NoError(t, dec.Authenticate(aad))
				got := make([]byte, len(ct))
				require.NoError(t, dec.Decrypt(got, ct))
				assert.Equal(t, pt, got)
				assert.NoError(t, dec.VerifyTag(tag))
			})

			t.Run("tampered ciphertext", func(t *testing.T) {
				dec := openSession(t, tt.algo, tt.mode, FlagNone, key)
				require.NoError(t, dec.SetIV(nonce))
				require.NoError(t, dec.Authenticate(aad))
				bad := append([]byte(nil), ct...)
				bad[0] ^= 1
				got := make([]byte, len(bad))
				require.NoError(t, dec.Decrypt(got, bad))
				err := dec.VerifyTag(tag)
				assert.ErrorIs(t, err, ErrAuthentication)
				assert.NotErrorIs(t, err, ErrInvalidLength)
			})

			t.Run("tampered AAD", func(t *testing.T) {
				dec := openSession(t, tt.algo, tt.mode, FlagNone, key)
				require.NoError(t, dec.SetIV(nonce))
				require.NoError(t, dec.Authenticate([]byte("record header v2")))
				got := make([]byte, len(ct))
				require.NoError(t, dec.Decrypt(got, ct))
				assert.ErrorIs(t, dec.VerifyTag(tag), ErrAuthentication)
			})

			t.Run("authenticate after data", func(t *testing.T) {
				s := openSession(t, tt.algo, tt.mode, FlagNone, key)
				buf := make([]byte, 8)
				require.NoError(t, s.Encrypt(buf, buf))
				assert.ErrorIs(t, s.Authenticate(aad), ErrInvalidState)
			})

			t.Run("tag length is strict", func(t *testing.T) {
				s := openSession(t, tt.algo, tt.mode, FlagNone, key)
				assert.ErrorIs(t, s.GetTag(make([]byte, 12)), ErrInvalidLength)
				assert.ErrorIs(t, s.VerifyTag(make([]byte, 32)), ErrInvalidLength)
			})
		})
	}
}

func TestSession_AesWrap(t *testing.T) {
	kek := randBytes(t, 16)
	data := randBytes(t, 32)

	s := openSession(t, Aes, AesWrap, FlagNone, kek)
	wrapped := make([]byte, len(data)+8)
	require.NoError(t, s.Encrypt(wrapped, data))

	t.Run("unwrap restores the key data", func(t *testing.T) {
		out := make([]byte, len(data))
		require.NoError(t, s.Decrypt(out, wrapped))
		assert.Equal(t, data, out)
	})

	t.Run("corruption is authentication failure", func(t *testing.T) {
		bad := append([]byte(nil), wrapped...)
		bad[8] ^= 0xff
		out := make([]byte, len(data))
		assert.ErrorIs(t, s.Decrypt(out, bad), ErrAuthentication)
	})
}

func TestSession_Reset(t *testing.T) {
	key := randBytes(t, 32)
	iv := randBytes(t, 16)
	pt := randBytes(t, 64)

	t.Run("reset then re-IV matches a fresh session", func(t *testing.T) {
		fresh := openSession(t, Aes256, Cbc, FlagNone, key)
		require.NoError(t, fresh.SetIV(iv))
		want := make([]byte, len(pt))
		require.NoError(t, fresh.Encrypt(want, pt))

		reused := openSession(t, Aes256, Cbc, FlagNone, key)
		require.NoError(t, reused.SetIV(randBytes(t, 16)))
		scratch := make([]byte, len(pt))
		require.NoError(t, reused.Encrypt(scratch, pt))

		require.NoError(t, reused.Reset())
		require.NoError(t, reused.SetIV(iv))
		got := make([]byte, len(pt))
		require.NoError(t, reused.Encrypt(got, pt))
		assert.Equal(t, want, got)
	})

	t.Run("reset clears AEAD state", func(t *testing.T) {
		s := openSession(t, Aes256, Gcm, FlagNone, key)
		buf := make([]byte, 8)
		require.NoError(t, s.Encrypt(buf, buf))
		tag := make([]byte, 16)
		require.NoError(t, s.GetTag(tag))
		assert.ErrorIs(t, s.Encrypt(buf, buf), ErrInvalidState)

		require.NoError(t, s.Reset())
		require.NoError(t, s.Authenticate([]byte("again")))
		require.NoError(t, s.Encrypt(buf, buf))
	})
}

func TestSession_InPlace(t *testing.T) {
	key := randBytes(t, 32)
	iv := randBytes(t, 16)
	pt := randBytes(t, 48)

	separate := openSession(t, Aes256, Cbc, FlagNone, key)
	require.NoError(t, separate.SetIV(iv))
	want := make([]byte, len(pt))
	require.NoError(t, separate.Encrypt(want, pt))

	inPlace := openSession(t, Aes256, Cbc, FlagNone, key)
	require.NoError(t, inPlace.SetIV(iv))
	buf := append([]byte(nil), pt...)
	require.NoError(t, inPlace.EncryptInPlace(buf))
	assert.Equal(t, want, buf)

	require.NoError(t, inPlace.Reset())
	require.NoError(t, inPlace.SetIV(iv))
	require.NoError(t, inPlace.DecryptInPlace(buf))
	assert.Equal(t, pt, buf)
}

func TestSession_SecureFlag(t *testing.T) {
	s, err := OpenWithFlags(Aes256, Gcm, FlagSecure)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.SetKey(randBytes(t, 32)))
	assert.True(t, s.Flags().Has(FlagSecure))

	pt := []byte("secret payload")
	ct := make([]byte, len(pt))
	require.NoError(t, s.Encrypt(ct, pt))
	tag := make([]byte, 16)
	require.NoError(t, s.GetTag(tag))
}

func TestSession_CbcMacFlag(t *testing.T) {
	key := randBytes(t, 16)
	msg := randBytes(t, 48)

	s := openSession(t, Aes, Cbc, FlagCbcMac, key)
	mac1 := make([]byte, 16)
	require.NoError(t, s.Encrypt(mac1, msg))

	again := openSession(t, Aes, Cbc, FlagCbcMac, key)
	mac2 := make([]byte, 16)
	require.NoError(t, again.Encrypt(mac2, msg))
	assert.Equal(t, mac1, mac2)

	other := openSession(t, Aes, Cbc, FlagCbcMac, randBytes(t, 16))
	mac3 := make([]byte, 16)
	require.NoError(t, other.Encrypt(mac3, msg))
	assert.NotEqual(t, mac1, mac3)
}

func TestSession_SetCtr(t *testing.T) {
	key := randBytes(t, 16)
	ctr := randBytes(t, 16)
	pt := randBytes(t, 40)

	viaCtr := openSession(t, Aes, Ctr, FlagNone, key)
	require.NoError(t, viaCtr.SetCtr(ctr))
	want := make([]byte, len(pt))
	require.NoError(t, viaCtr.Encrypt(want, pt))

	viaIV := openSession(t, Aes, Ctr, FlagNone, key)
	require.NoError(t, viaIV.SetIV(ctr))
	got := make([]byte, len(pt))
	require.NoError(t, viaIV.Encrypt(got, pt))
	assert.Equal(t, want, got)
}
