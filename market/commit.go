package market

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/fxamacker/cbor/v2"
)

// commitment binds the whole marketplace state to one field element. Each
// section of the snapshot is hashed to a BN254 scalar and absorbed in a
// fixed order, so the commitment changes iff some section changed.
func (m *Marketplace) commitment() (string, error) {
	snap := m.stateSnapshot()

	sections := []any{
		snap.Admins,
		snap.Types,
		snap.Collections,
		snap.Sales,
		snap.Auctions,
		snap.Offers,
		snap.Config,
	}

	h := mimc.NewMiMC()
	for _, sec := range sections {
		blob, err := cbor.Marshal(sec)
		if err != nil {
			return "", err
		}
		if _, err := h.Write(fieldElem(blob)); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fieldElem maps arbitrary bytes to a canonical BN254 scalar encoding.
// Masking the top five bits keeps the value under 2^253, safely below the
// field modulus, so the MiMC hasher accepts it as a reduced element.
func fieldElem(data []byte) []byte {
	sum := sha256.Sum256(data)
	sum[0] &= 0x1f
	return sum[:]
}
