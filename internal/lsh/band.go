package lsh

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/corpusdedup/internal/minhash"
)

// FingerprintSize is the size of a band fingerprint in bytes.
const FingerprintSize = 16

// ErrBandShape is returned when a signature cannot be split into the
// requested bands.
var ErrBandShape = errors.New("signature does not split into whole bands")

// Fingerprint is the hash of one band's rows.
type Fingerprint [FingerprintSize]byte

// String returns the fingerprint in hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Band is a bucket key: the band position paired with its fingerprint.
type Band struct {
	Index       int
	Fingerprint Fingerprint
}

// String returns "index:fingerprint".
func (b Band) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Fingerprint)
}

// RowsPerBand returns numHashes / numBands, or an error when the
// division is not exact.
func RowsPerBand(numHashes, numBands int) (int, error) {
	if numHashes <= 0 || numBands <= 0 {
		return 0, fmt.Errorf("%w: num_hashes=%d num_bands=%d must be positive", ErrBandShape, numHashes, numBands)
	}
	if numHashes%numBands != 0 {
		return 0, fmt.Errorf("%w: num_hashes=%d is not divisible by num_bands=%d", ErrBandShape, numHashes, numBands)
	}
	return numHashes / numBands, nil
}

// Bands splits sig into b bands of r rows and fingerprints each band.
// len(sig) must equal b*r.
func Bands(sig minhash.Signature, b, r int) ([]Band, error) {
	if b <= 0 || r <= 0 {
		return nil, fmt.Errorf("%w: b=%d r=%d must be positive", ErrBandShape, b, r)
	}
	if len(sig) != b*r {
		return nil, fmt.Errorf("%w: signature length %d != b*r = %d*%d", ErrBandShape, len(sig), b, r)
	}

	h, err := blake2b.New(FingerprintSize, nil)
	if err != nil {
		return nil, err
	}

	bands := make([]Band, b)
	buf := make([]byte, 8*r)
	for i := range bands {
		rows := sig[i*r : (i+1)*r]
		for j, v := range rows {
			binary.LittleEndian.PutUint64(buf[j*8:], v)
		}

		h.Reset()
		_, _ = h.Write(buf) // hash.Hash.Write never returns an error

		bands[i].Index = i
		h.Sum(bands[i].Fingerprint[:0])
	}

	return bands, nil
}

// CandidateProbability returns the probability that two documents with
// Jaccard similarity s share at least one of b bands of r rows.
func CandidateProbability(s float64, b, r int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

// Threshold returns the approximate similarity at which the candidate
// probability curve for b bands of r rows is steepest, (1/b)^(1/r).
func Threshold(b, r int) float64 {
	if b <= 0 || r <= 0 {
		return 0
	}
	return math.Pow(1/float64(b), 1/float64(r))
}
