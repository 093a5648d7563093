package minhash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/corpusdedup/internal/shingle"
)

// ErrInvalidNumHashes is returned when the signature length is not positive.
var ErrInvalidNumHashes = errors.New("invalid number of hashes: must be positive")

// ErrLengthMismatch is returned when two signatures of different lengths are compared.
var ErrLengthMismatch = errors.New("signature length mismatch")

// Signature is a MinHash signature. Its length is the number of hash functions.
type Signature []uint64

// IsEmpty reports whether the signature is the all-zero sentinel
// produced for an empty shingle set.
func (s Signature) IsEmpty() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether two signatures are identical.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Signer computes signatures of a fixed length.
// A Signer is immutable after construction and safe for concurrent use.
type Signer struct {
	numHashes int
	key       []byte
}

// Option configures a Signer.
type Option func(*Signer)

// WithSeed selects the hash family. Signatures are only comparable when
// they were computed with the same seed and length.
func WithSeed(seed uint64) Option {
	return func(s *Signer) {
		s.key = seedKey(seed)
	}
}

// NewSigner creates a Signer producing signatures of numHashes values.
func NewSigner(numHashes int, opts ...Option) (*Signer, error) {
	if numHashes <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumHashes, numHashes)
	}

	s := &Signer{
		numHashes: numHashes,
		key:       seedKey(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NumHashes returns the signature length.
func (s *Signer) NumHashes() int {
	return s.numHashes
}

// Sign returns the MinHash signature of the set.
// An empty set yields a signature of zeros; all empty documents therefore
// share one signature.
func (s *Signer) Sign(set shingle.Set) Signature {
	sig := make(Signature, s.numHashes)
	if len(set) == 0 {
		return sig
	}

	for i := range sig {
		sig[i] = math.MaxUint64
	}

	h := s.newHash()
	var digest [blake2b.Size256]byte
	for sh := range set {
		h.Reset()
		_, _ = h.Write([]byte(sh)) // hash.Hash.Write never returns an error
		h.Sum(digest[:0])

		a := binary.LittleEndian.Uint64(digest[0:8])
		b := binary.LittleEndian.Uint64(digest[8:16]) | 1

		x := a
		for i := range sig {
			if v := mix64(x); v < sig[i] {
				sig[i] = v
			}
			x += b
		}
	}

	return sig
}

// SignText shingles text with window n and signs the result.
// It also returns the number of distinct shingles.
func (s *Signer) SignText(text string, n int) (Signature, int) {
	set := shingle.Shingle(text, n)
	return s.Sign(set), set.Len()
}

func (s *Signer) newHash() hash.Hash {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// Only a key longer than 64 bytes fails, and seedKey returns 8 bytes.
		panic(err)
	}
	return h
}

// EstimateJaccard returns the fraction of positions at which the two
// signatures agree.
func EstimateJaccard(a, b Signature) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	same := 0
	for i := range a {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(len(a)), nil
}

func seedKey(seed uint64) []byte {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, seed)
	return key
}

// mix64 is the SplitMix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
