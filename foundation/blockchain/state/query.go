package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// RetrieveMaxHeightBlock returns the head of the best branch.
func (s *State) RetrieveMaxHeightBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best.block
}

// RetrieveBest returns the head of the best branch along with its height.
func (s *State) RetrieveBest() (database.Block, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best.block, s.best.height
}

// RetrieveMaxHeight returns the height of the best branch. The genesis
// block is at height 1.
func (s *State) RetrieveMaxHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best.height
}

// RetrieveMaxHeightUTXOPool returns a copy of the pool of unspent outputs
// at the head of the best branch.
func (s *State) RetrieveMaxHeightUTXOPool() database.UTXOPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best.pool.Copy()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveGenesis returns the genesis block.
func (s *State) RetrieveGenesis() database.Block {
	return s.genesis.block
}

// RetrieveBestBranch returns the blocks of the best branch from the head
// back to the genesis block.
func (s *State) RetrieveBestBranch() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]database.Block, 0, s.best.height)
	for nd := s.best; nd != nil; nd = nd.parent {
		blocks = append(blocks, nd.block)
	}

	return blocks
}

// QueryBlock returns the block with the specified hash and its height.
func (s *State) QueryBlock(hash database.Hash) (database.Block, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nd, exists := s.nodes[hash]
	if !exists {
		return database.Block{}, 0, false
	}

	return nd.block, nd.height, true
}

// QueryBalance returns the value the owner holds at the head of the best
// branch.
func (s *State) QueryBalance(owner database.PublicKey) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.best.pool.Balance(owner)
}

// Count returns the number of blocks held in the tree.
func (s *State) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.nodes)
}
