package script

import (
	"crypto/sha256"

	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

// Address is a pub-key-hash address: a version prefix, an optional Zcash-
// style second prefix byte pair, and the 20-byte HASH160.
type Address struct {
	PubPrefix   byte
	TAddrPrefix *[2]byte
	Hash        [20]byte
}

// NewAddress builds an Address from a KeyPair's address hash and the
// coin's configured prefixes.
func NewAddress(addrHash []byte, pubPrefix byte, tAddrPrefix *[2]byte) (*Address, error) {
	if len(addrHash) != 20 {
		return nil, chainerror.New(chainerror.BadInput, "address hash must be 20 bytes")
	}
	a := &Address{PubPrefix: pubPrefix, TAddrPrefix: tAddrPrefix}
	copy(a.Hash[:], addrHash)
	return a, nil
}

// ScriptHash computes the Electrum script-hash index key for a script:
// the byte-reversal of SHA-256(script). Electrum servers index unspent
// outputs and history by this value, hex-encoded, rather than by address.
func ScriptHash(script []byte) []byte {
	sum := sha256.Sum256(script)
	reversed := make([]byte, len(sum))
	for i := range sum {
		reversed[i] = sum[len(sum)-1-i]
	}
	return reversed
}
