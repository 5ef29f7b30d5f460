package database

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Reward is the value every block mints for its author through the
// coinbase transaction.
const Reward int64 = 25

// =============================================================================

// Block represents a group of transactions batched together on top of a
// parent block. The genesis block is the only block without a parent.
type Block struct {
	PrevBlockHash Hash `json:"prev_block_hash"` // Zero for the genesis block.
	Coinbase      Tx   `json:"coinbase"`        // Reward for the author of this block.
	Trans         []Tx `json:"trans"`           // Regular transactions in this block.
	hash          Hash
}

// NewBlock constructs a block on top of the specified parent with a coinbase
// rewarding the owner key. Use ZeroHash as the parent for the genesis block.
func NewBlock(prevBlockHash Hash, owner PublicKey) Block {
	return Block{
		PrevBlockHash: prevBlockHash,
		Coinbase:      NewCoinbase(Reward, owner, prevBlockHash),
	}
}

// AddTransaction appends a regular transaction to the block.
func (b *Block) AddTransaction(tx Tx) {
	b.Trans = append(b.Trans, tx)
}

// Transaction returns the regular transaction at the specified index.
func (b Block) Transaction(index int) Tx {
	return b.Trans[index]
}

// RawBlock returns the bytes the block hash is computed over: the parent
// hash, the coinbase and then every regular transaction.
func (b Block) RawBlock() []byte {
	var buf bytes.Buffer

	if !b.PrevBlockHash.IsZero() {
		buf.Write(b.PrevBlockHash[:])
	}

	buf.Write(b.Coinbase.RawTx())
	for _, tx := range b.Trans {
		buf.Write(tx.RawTx())
	}

	return buf.Bytes()
}

// ComputeHash calculates the hash of the current contents of the block
// without assigning it.
func (b Block) ComputeHash() Hash {
	return signature.Hash(b.RawBlock())
}

// Finalize computes and assigns the hash of the block. Calling it again
// once a hash is present changes nothing.
func (b *Block) Finalize() Hash {
	if b.hash.IsZero() {
		b.hash = b.ComputeHash()
	}

	return b.hash
}

// Hash returns the hash assigned by Finalize.
func (b Block) Hash() Hash {
	return b.hash
}

// IsFinalized reports whether the hash has been assigned.
func (b Block) IsFinalized() bool {
	return !b.hash.IsZero()
}

// IsGenesis reports whether the block declares no parent.
func (b Block) IsGenesis() bool {
	return b.PrevBlockHash.IsZero()
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%s:prev[%s]:trans[%d]", b.hash, b.PrevBlockHash, len(b.Trans))
}
