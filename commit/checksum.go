package commit

import (
	"encoding/binary"
	"encoding/json"

	"github.com/brc20x/indexer/crypto"
)

// checksumTag domain-separates the commit-plan checksum from any other use
// of SHA3-256 elsewhere in the system, mirroring the teacher's tagged-leaf
// merkle construction.
const checksumTag = 0x20

// hasher is package-level so tests can substitute a stub HashProvider
// without threading one through every BuildPlan/Apply call site.
var hasher crypto.HashProvider = crypto.StdHashProvider{}

// Checksum computes the deterministic commit_checksum for a Plan (spec.md
// §4.9 step 5). Plan's slices are already sorted by BuildPlan, so two
// equal plans always serialize identically regardless of map iteration
// order upstream.
func Checksum(p Plan) ([32]byte, error) {
	canonical, err := json.Marshal(p)
	if err != nil {
		return [32]byte{}, err
	}
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(canonical)))
	preimage := make([]byte, 0, 1+8+len(canonical))
	preimage = append(preimage, checksumTag)
	preimage = append(preimage, lenBuf[:]...)
	preimage = append(preimage, canonical...)
	return hasher.SHA3_256(preimage)
}
