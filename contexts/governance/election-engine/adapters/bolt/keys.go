package boltadapter

import (
	"encoding/binary"
	"strings"

	"electoral/contexts/governance/election-engine/domain/entities"

	"golang.org/x/crypto/blake2b"
)

// Record keys are fixed-width BLAKE2b-256 digests over length-prefixed parts,
// so distinct tuples never collide by concatenation.
func deriveKey(parts ...[]byte) []byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// only returned for keys longer than 64 bytes
		panic(err)
	}
	var size [4]byte
	for _, part := range parts {
		binary.BigEndian.PutUint32(size[:], uint32(len(part)))
		_, _ = h.Write(size[:])
		_, _ = h.Write(part)
	}
	return h.Sum(nil)
}

func electionBucketKey(key string) []byte {
	return []byte(strings.TrimSpace(key))
}

func candidateIdentityKey(owner entities.Identity, election string) []byte {
	return deriveKey([]byte("candidate"), owner[:], electionBucketKey(election))
}

func candidateRecordKey(candidateID uint64, election string) []byte {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], candidateID)
	return deriveKey([]byte("candidate-data"), id[:], electionBucketKey(election))
}

func voteReceiptKey(voter entities.Identity, election string) []byte {
	return deriveKey([]byte("voter"), voter[:], electionBucketKey(election))
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
