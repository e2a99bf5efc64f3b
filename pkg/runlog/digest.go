package runlog

import (
	"encoding/hex"
	"hash"

	"lukechampine.com/blake3"
)

// NewCorpusHasher returns a streaming BLAKE3 hasher for corpus digests.
func NewCorpusHasher() hash.Hash {
	return blake3.New(32, nil)
}

// CorpusDigest computes the hex BLAKE3 digest of an in-memory corpus.
func CorpusDigest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HexDigest returns the hex encoding of h's current sum.
func HexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
