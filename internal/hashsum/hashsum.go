// Package hashsum implements the content digest facilities of the
// application, providing a registry of digest algorithms and the ledger
// structure recording per-node digests for later verification.
package hashsum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/zeebo/blake3"
)

// Algorithm names a digest algorithm of the registry.
type Algorithm string

const (
	AlgorithmMD5    Algorithm = "md5"
	AlgorithmSHA1   Algorithm = "sha1"
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmBLAKE3 Algorithm = "blake3"

	// DefaultAlgorithm is the algorithm used when none was requested.
	DefaultAlgorithm = AlgorithmMD5
)

var algorithms = map[Algorithm]func() hash.Hash{
	AlgorithmMD5:    md5.New,
	AlgorithmSHA1:   sha1.New,
	AlgorithmSHA256: sha256.New,
	AlgorithmBLAKE3: func() hash.Hash { return blake3.New() },
}

// Valid returns whether the algorithm is part of the registry.
func (a Algorithm) Valid() bool {
	_, ok := algorithms[a]

	return ok
}

// Algorithms returns the sorted names of all registered algorithms.
func Algorithms() []Algorithm {
	names := make([]Algorithm, 0, len(algorithms))
	for a := range algorithms {
		names = append(names, a)
	}
	slices.Sort(names)

	return names
}

// Record is one captured digest of a file node's contents, tagged with
// the algorithm that produced it and the capture time.
type Record struct {
	Algorithm  Algorithm `json:"algorithm"`
	Digest     string    `json:"digest_hex"`
	CapturedAt time.Time `json:"captured_at"`
}

// Ledger maps node aliases to their recorded content digests. A record
// is only comparable under the algorithm that produced it; verification
// under a different algorithm is a usage error, not a mismatch.
type Ledger map[string]Record

// NewLedger returns a new empty [Ledger].
func NewLedger() Ledger {
	return Ledger{}
}

// Set records a digest for the given alias, stamping the capture time.
func (l Ledger) Set(alias string, algorithm Algorithm, digest string) {
	l[alias] = Record{
		Algorithm:  algorithm,
		Digest:     digest,
		CapturedAt: time.Now().UTC(),
	}
}

// Get returns the recorded digest for the given alias, if one exists.
func (l Ledger) Get(alias string) (Record, bool) {
	record, ok := l[alias]

	return record, ok
}

// Merge copies all records of the other ledger into this one,
// overwriting records of the same alias.
func (l Ledger) Merge(other Ledger) {
	maps.Copy(l, other)
}

// Aliases returns the sorted aliases that have a recorded digest.
func (l Ledger) Aliases() []string {
	aliases := slices.Collect(maps.Keys(l))
	slices.Sort(aliases)

	return aliases
}

// Handler is the principal implementation structure for digesting file
// contents through a [schema.Backend].
type Handler struct {
	backend schema.Backend
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(backend schema.Backend) *Handler {
	return &Handler{backend: backend}
}

// DigestFile streams the file at the given path through the given
// algorithm, returning the hex-encoded digest and the amount of bytes
// digested.
func (h *Handler) DigestFile(path string, algorithm Algorithm) (string, int64, error) {
	hasher, err := newHash(algorithm)
	if err != nil {
		return "", 0, err
	}

	f, err := h.backend.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return "", 0, fmt.Errorf("(hashsum-digest) failed to open file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, fmt.Errorf("(hashsum-digest) failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// Digest runs the given reader through the given algorithm and returns
// the hex-encoded digest.
func Digest(r io.Reader, algorithm Algorithm) (string, error) {
	hasher, err := newHash(algorithm)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("(hashsum-digest) failed to read: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func newHash(algorithm Algorithm) (hash.Hash, error) {
	newFn, ok := algorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("(hashsum-digest) %w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	return newFn(), nil
}
