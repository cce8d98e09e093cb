// Package cryptox verifies version content against the checksum the backend
// recorded when the version was created: downloads after they arrive and
// uploads after the backend has stored them.
//
// Checksums are hex digests, optionally prefixed with the algorithm name:
//
//	9f86d081884c7d65...            sha256 (default)
//	sha256:9f86d081884c7d65...
//	blake2b:324dcf027dd4a30a...    BLAKE2b-256
package cryptox

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
)

var (
	ErrChecksumMismatch     = errors.New("checksum mismatch")
	ErrUnsupportedAlgorithm = errors.New("unsupported checksum algorithm")
	ErrMalformedChecksum    = errors.New("malformed checksum")
)

// ParseChecksum splits a stored checksum into algorithm and raw digest.
func ParseChecksum(s string) (Algorithm, []byte, error) {
	algo := SHA256
	digest := strings.TrimSpace(s)
	if name, rest, ok := strings.Cut(digest, ":"); ok {
		algo = Algorithm(strings.ToLower(name))
		digest = rest
	}
	if _, err := newHash(algo); err != nil {
		return "", nil, err
	}
	raw, err := hex.DecodeString(strings.ToLower(digest))
	if err != nil || len(raw) == 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrMalformedChecksum, s)
	}
	return algo, raw, nil
}

func newHash(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case SHA256:
		return sha256.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

// Sum returns the hex digest of r under algo.
func Sum(algo Algorithm, r io.Reader) (string, error) {
	h, err := newHash(algo)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify hashes data with the algorithm named by expected and compares the
// digests in constant time.
func Verify(data []byte, expected string) error {
	return VerifyReader(bytes.NewReader(data), expected)
}

// VerifyReader is Verify for content read from r, such as a local file
// after it was uploaded.
func VerifyReader(r io.Reader, expected string) error {
	algo, want, err := ParseChecksum(expected)
	if err != nil {
		return err
	}
	sum, err := Sum(algo, r)
	if err != nil {
		return err
	}
	got, err := hex.DecodeString(sum)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrChecksumMismatch
	}
	return nil
}
