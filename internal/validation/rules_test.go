package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexString_Validate(t *testing.T) {
	t.Run("valid hex", func(t *testing.T) {
		assert.NoError(t, HexString{}.Validate("deadbeef"))
		assert.NoError(t, HexString{}.Validate("00"))
	})

	t.Run("empty string passes", func(t *testing.T) {
		assert.NoError(t, HexString{}.Validate(""))
	})

	t.Run("invalid hex fails", func(t *testing.T) {
		assert.Error(t, HexString{}.Validate("not hex"))
		assert.Error(t, HexString{}.Validate("abc")) // odd length
	})

	t.Run("non-string fails", func(t *testing.T) {
		assert.Error(t, HexString{}.Validate(42))
		assert.Error(t, HexString{}.Validate(nil))
	})

	t.Run("exact byte length", func(t *testing.T) {
		rule := HexString{ExactBytes: 4}
		assert.NoError(t, rule.Validate("deadbeef"))
		assert.Error(t, rule.Validate("dead"))
		assert.Error(t, rule.Validate("deadbeef00"))
	})
}
