package engine

import (
	"crypto/aes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/xts"
)

// sectorIV builds the 16-byte tweak block x/crypto/xts derives from a sector
// number: the number little-endian in the first eight bytes, zeros after.
func sectorIV(sector uint64) []byte {
	iv := make([]byte, 16)
	binary.LittleEndian.PutUint64(iv, sector)
	return iv
}

func TestXtsMode_MatchesReference(t *testing.T) {
	for _, tt := range []struct {
		name   string
		algo   int
		keyLen int
	}{
		{"AES-128", AlgoAes, 32},
		{"AES-256", AlgoAes256, 64},
	} {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			_, err := rand.Read(key)
			require.NoError(t, err)
			pt := make([]byte, 512)
			_, err = rand.Read(pt)
			require.NoError(t, err)
			const sector = 42

			ref, err := xts.NewCipher(aes.NewCipher, key)
			require.NoError(t, err)
			want := make([]byte, len(pt))
			ref.Encrypt(want, pt, sector)

			c := newTestContext(t, tt.algo, ModeXts, 0, key)
			require.Equal(t, StatusOK, c.SetIV(sectorIV(sector)))
			got := make([]byte, len(pt))
			require.Equal(t, StatusOK, c.Encrypt(got, pt))
			assert.Equal(t, want, got)

			dec := newTestContext(t, tt.algo, ModeXts, 0, key)
			require.Equal(t, StatusOK, dec.SetIV(sectorIV(sector)))
			back := make([]byte, len(got))
			require.Equal(t, StatusOK, dec.Decrypt(back, got))
			assert.Equal(t, pt, back)
		})
	}
}

func TestXtsMode_TweakContinuesAcrossCalls(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	pt := make([]byte, 128)
	_, err = rand.Read(pt)
	require.NoError(t, err)
	iv := sectorIV(7)

	oneShot := newTestContext(t, AlgoAes, ModeXts, 0, key)
	require.Equal(t, StatusOK, oneShot.SetIV(iv))
	want := make([]byte, len(pt))
	require.Equal(t, StatusOK, oneShot.Encrypt(want, pt))

	chunked := newTestContext(t, AlgoAes, ModeXts, 0, key)
	require.Equal(t, StatusOK, chunked.SetIV(iv))
	got := make([]byte, len(pt))
	require.Equal(t, StatusOK, chunked.Encrypt(got[:48], pt[:48]))
	require.Equal(t, StatusOK, chunked.Encrypt(got[48:], pt[48:]))
	assert.Equal(t, want, got)
}

func TestXtsMode_Validation(t *testing.T) {
	t.Run("single-width key is rejected", func(t *testing.T) {
		c, st := Open(AlgoAes, ModeXts, 0)
		require.Equal(t, StatusOK, st)
		t.Cleanup(c.Close)
		assert.Equal(t, StatusInvalidKeyLength, c.SetKey(make([]byte, 16)))
	})

	t.Run("tweak must be 16 bytes", func(t *testing.T) {
		c := newTestContext(t, AlgoAes, ModeXts, 0, make([]byte, 32))
		assert.Equal(t, StatusInvalidIVLength, c.SetIV(make([]byte, 8)))
	})

	t.Run("input must be block aligned", func(t *testing.T) {
		c := newTestContext(t, AlgoAes, ModeXts, 0, make([]byte, 32))
		buf := make([]byte, 20)
		assert.Equal(t, StatusInvalidLength, c.Encrypt(buf, buf))
	})

	t.Run("non-128-bit ciphers are rejected", func(t *testing.T) {
		_, st := Open(AlgoBlowfish, ModeXts, 0)
		assert.Equal(t, StatusUnsupportedMode, st)
	})
}
