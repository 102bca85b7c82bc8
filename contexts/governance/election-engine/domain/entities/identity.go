package entities

import (
	"encoding/hex"
	"strings"

	domainerrors "electoral/contexts/governance/election-engine/domain/errors"
)

// IdentitySize is the width of a public identity key in bytes.
const IdentitySize = 32

// Identity is the authenticated public key of an actor.
type Identity [IdentitySize]byte

// ParseIdentity decodes a hex encoded public identity.
func ParseIdentity(value string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil || len(raw) != IdentitySize {
		return Identity{}, domainerrors.ErrInvalidIdentity
	}
	copy(id[:], raw)
	if id.IsZero() {
		return Identity{}, domainerrors.ErrInvalidIdentity
	}
	return id, nil
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}
