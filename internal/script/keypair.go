// Package script builds the HTLC redeem script, the P2PKH/P2SH script
// pubkeys, and the script_sigs that spend them, and derives keypairs and
// addresses. It leans on btcsuite/btcd's txscript and btcec packages for
// every byte-level operation instead of hand-rolling script construction.
package script

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/kgcdream2019/utxoswap/internal/chainerror"
)

// KeyPair is a private scalar, its derived compressed public key, and the
// HASH160 of that public key (the address hash).
type KeyPair struct {
	Private  *btcec.PrivateKey
	PubKey   []byte // 33-byte compressed form
	AddrHash []byte // HASH160(PubKey), 20 bytes
}

// KeyPairFromSeed derives a deterministic KeyPair from an arbitrary-length
// seed: SHA-256 the seed, then clamp the digest the way a Curve25519 scalar
// is clamped (clear bit 7 of the last byte, set bit 6 of the last byte,
// clear the low three bits of the first byte), and interpret the result as
// a secp256k1 private scalar.
//
// The clamp has no cryptographic necessity for secp256k1 — it exists so
// that seeds producing digests outside [1, n-1] are vanishingly unlikely
// and so every implementation derives byte-identical keys from the same
// seed.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) == 0 {
		return nil, chainerror.New(chainerror.BadInput, "seed must not be empty")
	}
	digest := sha256.Sum256(seed)
	digest[0] &= 0xF8
	digest[31] &= 0x7F
	digest[31] |= 0x40

	priv, pub := btcec.PrivKeyFromBytes(digest[:])
	pubBytes := pub.SerializeCompressed()
	addrHash := btcutil.Hash160(pubBytes)

	return &KeyPair{
		Private:  priv,
		PubKey:   pubBytes,
		AddrHash: addrHash,
	}, nil
}

// Hash160 computes RIPEMD160(SHA256(data)), the address-hash function used
// throughout this package.
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// KeyPairFromPrivateKeyBytes wraps a raw 32-byte secp256k1 scalar, bypassing
// the seed clamp. Used when a caller already holds a validated private key
// (e.g. round-tripped from storage).
func KeyPairFromPrivateKeyBytes(raw []byte) (*KeyPair, error) {
	if len(raw) != 32 {
		return nil, chainerror.New(chainerror.BadInput, "private key must be 32 bytes")
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	pubBytes := pub.SerializeCompressed()
	return &KeyPair{
		Private:  priv,
		PubKey:   pubBytes,
		AddrHash: btcutil.Hash160(pubBytes),
	}, nil
}
