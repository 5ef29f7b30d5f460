package state

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/ledger"
)

// ErrNoTransactions is returned when a block is requested to be authored
// and there are no transactions in the mempool that can be applied.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// CreateBlock builds a block on top of the best block from the mempool
// transactions that can be applied to the best pool, rewarding the owner.
// The block is returned only if it was accepted into the chain. A block with
// no transactions is still a valid block.
func (s *State) CreateBlock(owner database.PublicKey) (database.Block, error) {
	return s.createBlock(owner, true)
}

// CreateBlockIfTransactions works like CreateBlock but does not author an
// empty block. ErrNoTransactions is returned when none of the mempool
// transactions can be applied to the best pool.
func (s *State) CreateBlockIfTransactions(owner database.PublicKey) (database.Block, error) {
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	return s.createBlock(owner, false)
}

// =============================================================================

func (s *State) createBlock(owner database.PublicKey, allowEmpty bool) (database.Block, error) {
	s.mu.Lock()
	parent := s.best.block.Hash()
	pool := s.best.pool.Copy()
	s.mu.Unlock()

	s.evHandler("state: CreateBlock: pick best: parent[%s]: mempool[%d]", parent, s.mempool.Count())

	// Pick the best transactions from the mempool.
	candidates := s.mempool.PickBest(pool, s.transPerBlock)
	trans, _ := ledger.SelectBatch(candidates, pool)

	if len(trans) == 0 && !allowEmpty {
		s.evHandler("state: CreateBlock: skipped: parent[%s]: candidates[%d]: no transactions apply", parent, len(candidates))
		return database.Block{}, ErrNoTransactions
	}

	block := database.NewBlock(parent, owner)
	for _, tx := range trans {
		block.AddTransaction(tx)
	}
	block.Finalize()

	s.evHandler("state: CreateBlock: process: blk[%s]: candidates[%d]: trans[%d]", block.Hash(), len(candidates), len(trans))

	// The best block may have changed since the pool was copied, so the
	// block goes through the same validation as a block from anyone else.
	if err := s.ProcessBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}
