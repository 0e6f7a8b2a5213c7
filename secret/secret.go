// Package secret implements the preimage/hash pair used to hash-timelock a
// transfer. It is deliberately tiny and imports no other package of this
// module, so both the channel boundary and the initiator core can import
// it without creating a cycle between them.
package secret

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Size is the width in bytes of a secret and its hash.
const Size = 32

// Secret is a 32-byte preimage chosen by the initiator.
type Secret [Size]byte

// Hash is H(secret), the cryptographic commitment carried by a locked
// transfer.
type Hash [Size]byte

// IsZero reports whether s is the zero value, i.e. no secret has been
// chosen yet.
func (s Secret) IsZero() bool {
	return s == Secret{}
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Of computes H(secret). Hash-timelock preimages use a single SHA-256
// round, unlike Bitcoin's double-SHA256 txids, so this wraps
// chainhash.HashB directly rather than chainhash.DoubleHashB.
func Of(s Secret) Hash {
	var h Hash
	copy(h[:], chainhash.HashB(s[:]))
	return h
}
