// Package entropy supplies the seed source consumed by the breeding engine and
// the derivation that turns a seed into genetic material.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"

	"kittycore/pkg/domain"
)

// SystemSource draws seeds from the operating system.
type SystemSource struct{}

// RandomSeed implements domain.Randomness.
func (SystemSource) RandomSeed() [32]byte {
	var seed [32]byte
	_, _ = rand.Read(seed[:])
	return seed
}

// FixedSource returns the same seed on every call. Derivations still differ
// between calls because the nonce advances.
type FixedSource [32]byte

// RandomSeed implements domain.Randomness.
func (f FixedSource) RandomSeed() [32]byte { return f }

// SequenceSource replays seeds in order and repeats the last one when
// exhausted.
type SequenceSource struct {
	mu    sync.Mutex
	seeds [][32]byte
	next  int
}

// NewSequenceSource builds a source over the given seeds.
func NewSequenceSource(seeds ...[32]byte) *SequenceSource {
	return &SequenceSource{seeds: seeds}
}

// RandomSeed implements domain.Randomness.
func (s *SequenceSource) RandomSeed() [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seeds) == 0 {
		return [32]byte{}
	}
	seed := s.seeds[min(s.next, len(s.seeds)-1)]
	s.next++
	return seed
}

// Derive hashes seed, caller and nonce into a 128-bit digest used directly as
// genetic material.
func Derive(seed [32]byte, caller domain.AccountID, nonce uint64) domain.DNA {
	h, err := blake2b.New(domain.DNALength, nil)
	if err != nil {
		// only reachable with an invalid size or key
		panic(err)
	}
	h.Write(seed[:])
	h.Write([]byte(caller))
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	h.Write(n[:])
	var out domain.DNA
	copy(out[:], h.Sum(nil))
	return out
}

var (
	_ domain.Randomness = SystemSource{}
	_ domain.Randomness = FixedSource{}
	_ domain.Randomness = (*SequenceSource)(nil)
)
