// Package database handles all the lower level support for the ledger data
// model: transactions, blocks and the in memory database of unspent outputs.
package database

import (
	"bytes"
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash represents a digest produced by the signature package. The zero value
// means no hash, such as the parent of the genesis block.
type Hash [signature.DigestLength]byte

// ZeroHash represents a hash code of zeros.
var ZeroHash Hash

// ToHash converts a 0x prefixed hex string into a Hash.
func ToHash(hex string) (Hash, error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return Hash{}, err
	}

	if len(b) != len(Hash{}) {
		return Hash{}, errors.New("invalid hash length")
	}

	var h Hash
	copy(h[:], b)

	return h, nil
}

// IsZero reports whether the hash has not been set.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String implements the fmt.Stringer interface for logging.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface so hashes
// are encoded as hex.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(data []byte) error {
	v, err := ToHash(string(data))
	if err != nil {
		return err
	}

	*h = v
	return nil
}

// Compare orders two hashes lexicographically by their bytes.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// =============================================================================

// PublicKey represents the owner of an output. The ledger treats it as an
// opaque set of bytes that is handed to the signature package for verification.
type PublicKey []byte

// Equal reports whether both keys are the same bytes.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk, other)
}

// String implements the fmt.Stringer interface for logging.
func (pk PublicKey) String() string {
	return hexutil.Encode(pk)
}

// MarshalText implements the encoding.TextMarshaler interface so keys
// are encoded as hex.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pk *PublicKey) UnmarshalText(data []byte) error {
	b, err := hexutil.Decode(string(data))
	if err != nil {
		return err
	}

	*pk = b
	return nil
}
