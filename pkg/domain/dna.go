package domain

import (
	"encoding/hex"
	"fmt"
)

// DNALength is the fixed size of a kitty's genetic material in bytes.
const DNALength = 16

// DNA is the fixed-length heritable code of a kitty.
type DNA [DNALength]byte

// Combine crosses two parents' material bit by bit: where selector has a 1
// bit the child inherits from a, where it has a 0 bit from b.
func Combine(a, b, selector DNA) DNA {
	var out DNA
	for i := range out {
		out[i] = (selector[i] & a[i]) | (^selector[i] & b[i])
	}
	return out
}

// String returns the lowercase hex form of the material.
func (d DNA) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText encodes the material as hex so snapshots stay readable.
func (d DNA) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes the hex form produced by MarshalText.
func (d *DNA) UnmarshalText(text []byte) error {
	if hex.DecodedLen(len(text)) != DNALength {
		return fmt.Errorf("dna: expected %d hex bytes, got %d characters", DNALength, len(text))
	}
	var out DNA
	if _, err := hex.Decode(out[:], text); err != nil {
		return fmt.Errorf("dna: %w", err)
	}
	*d = out
	return nil
}

// ParseDNA parses a hex string into DNA.
func ParseDNA(s string) (DNA, error) {
	var d DNA
	err := d.UnmarshalText([]byte(s))
	return d, err
}
