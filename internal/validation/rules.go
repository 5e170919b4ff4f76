// Package validation provides custom validation rules for the CLI.
package validation

import (
	"encoding/hex"

	validation "github.com/jellydator/validation"
)

// HexString validates that a string is valid hexadecimal, optionally with an
// exact decoded byte length. Empty strings pass; combine with
// validation.Required where a value is mandatory.
type HexString struct {
	ExactBytes int
}

// Validate checks the value against the rule.
func (h HexString) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_hex_string", "must be a string")
	}
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_hex_string", "must be a hex-encoded string")
	}
	if h.ExactBytes > 0 && len(b) != h.ExactBytes {
		return validation.NewError("validation_hex_string_length", "has the wrong decoded length")
	}
	return nil
}
