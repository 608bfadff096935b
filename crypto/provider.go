// Package crypto provides the hash primitive the commit engine uses to seal
// and verify commit plans (C9/C10, spec.md §4.9, §4.10).
package crypto

// HashProvider is the narrow hashing capability package commit depends on,
// rather than calling a hash library directly, so the digest algorithm is
// swappable without touching commit's call sites.
type HashProvider interface {
	SHA3_256(input []byte) ([32]byte, error)
}
