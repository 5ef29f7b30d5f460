package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/ledger"
)

// Set of errors returned when a block is rejected.
var (
	ErrNoParent            = errors.New("block has no parent")
	ErrNotFinalized        = errors.New("block is not finalized")
	ErrBlockHashMismatch   = errors.New("block hash does not match its contents")
	ErrBlockExists         = errors.New("block already exists")
	ErrUnknownParent       = errors.New("parent block is unknown")
	ErrStaleFork           = errors.New("parent block is too far behind the best block")
	ErrInvalidCoinbase     = errors.New("reward transaction is invalid")
	ErrInvalidTransactions = errors.New("block transactions are not all valid")
)

// =============================================================================

// ProcessBlock takes a block, validates it against the pool of its parent
// and if that passes, adds the block to the tree. The block becomes the head
// of the best branch when it is higher than the current best block. A block
// at the same height as the best block never replaces it.
func (s *State) ProcessBlock(block database.Block) error {
	s.evHandler("state: ProcessBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PrevBlockHash, block.Hash(), len(block.Trans))
	defer s.evHandler("state: ProcessBlock: completed: newBlk[%s]", block.Hash())

	s.mu.Lock()
	defer s.mu.Unlock()

	nd, err := s.validateBlock(block)
	if err != nil {
		s.evHandler("state: ProcessBlock: REJECTED: newBlk[%s]: %s", block.Hash(), err)
		return err
	}

	s.evHandler("state: ProcessBlock: index block and remove from mempool")

	s.nodes[block.Hash()] = nd

	for _, tx := range block.Trans {
		s.mempool.Delete(tx.Hash())
	}

	if nd.height > s.best.height {
		s.evHandler("state: ProcessBlock: new best: height[%d]: blk[%s]", nd.height, block.Hash())
		s.best = nd

		if s.pruneStale {
			s.prune()
		}
	}

	// Send an event about this new block.
	s.blockEvent(nd)

	return nil
}

// AddBlock processes the block and reports whether it was accepted.
func (s *State) AddBlock(block database.Block) bool {
	return s.ProcessBlock(block) == nil
}

// =============================================================================

// validateBlock checks the block against the consensus rules and returns
// the node it would become. Nothing is changed if validation fails. The
// caller must hold the lock.
func (s *State) validateBlock(block database.Block) (*node, error) {
	if block.IsGenesis() {
		return nil, ErrNoParent
	}

	if !block.IsFinalized() {
		return nil, ErrNotFinalized
	}

	if err := checkHashes(block); err != nil {
		return nil, err
	}

	if _, exists := s.nodes[block.Hash()]; exists {
		return nil, fmt.Errorf("blk[%s]: %w", block.Hash(), ErrBlockExists)
	}

	parent, exists := s.nodes[block.PrevBlockHash]
	if !exists {
		return nil, fmt.Errorf("parent[%s]: %w", block.PrevBlockHash, ErrUnknownParent)
	}

	height := parent.height + 1
	if height <= s.best.height-s.cutoffAge {
		return nil, fmt.Errorf("height[%d]: best[%d]: cutoff[%d]: %w", height, s.best.height, s.cutoffAge, ErrStaleFork)
	}

	if err := checkCoinbase(block); err != nil {
		return nil, err
	}

	// The block is only valid when every transaction can be applied.
	accepted, pool := ledger.SelectBatch(block.Trans, parent.pool)
	if len(accepted) != len(block.Trans) {
		return nil, fmt.Errorf("accepted[%d]: trans[%d]: %w", len(accepted), len(block.Trans), ErrInvalidTransactions)
	}

	addCoinbase(block, pool)

	nd := node{
		block:  block,
		parent: parent,
		height: height,
		pool:   pool,
	}

	return &nd, nil
}

// checkHashes verifies the block and transaction hashes match the data
// they were computed from.
func checkHashes(block database.Block) error {
	if block.ComputeHash() != block.Hash() {
		return fmt.Errorf("blk[%s]: %w", block.Hash(), ErrBlockHashMismatch)
	}

	if block.Coinbase.ComputeHash() != block.Coinbase.Hash() {
		return fmt.Errorf("coinbase[%s]: %w", block.Coinbase.Hash(), ErrBlockHashMismatch)
	}

	for _, tx := range block.Trans {
		if tx.ComputeHash() != tx.Hash() {
			return fmt.Errorf("tx[%s]: %w", tx.Hash(), ErrBlockHashMismatch)
		}
	}

	return nil
}

// checkCoinbase verifies the block mints exactly the reward in a single
// output and that the reward transaction names the parent block.
func checkCoinbase(block database.Block) error {
	coinbase := block.Coinbase

	switch {
	case !coinbase.IsFinalized():
		return fmt.Errorf("not finalized: %w", ErrInvalidCoinbase)

	case !coinbase.IsCoinbase():
		return fmt.Errorf("not a reward transaction: %w", ErrInvalidCoinbase)

	case coinbase.Inputs[0].PrevTxHash != block.PrevBlockHash:
		return fmt.Errorf("parent[%s]: %w", coinbase.Inputs[0].PrevTxHash, ErrInvalidCoinbase)

	case len(coinbase.Outputs) != 1:
		return fmt.Errorf("outputs[%d]: %w", len(coinbase.Outputs), ErrInvalidCoinbase)

	case coinbase.Outputs[0].Value != database.Reward:
		return fmt.Errorf("value[%d]: %w", coinbase.Outputs[0].Value, ErrInvalidCoinbase)
	}

	return nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(nd *node) {
	type event struct {
		Hash     database.Hash `json:"hash"`
		Prev     database.Hash `json:"prev_block_hash"`
		Height   int           `json:"height"`
		Trans    int           `json:"trans"`
		Best     bool          `json:"best"`
		NumUTXOs int           `json:"num_utxos"`
	}

	evt := event{
		Hash:     nd.block.Hash(),
		Prev:     nd.block.PrevBlockHash,
		Height:   nd.height,
		Trans:    len(nd.block.Trans),
		Best:     nd == s.best,
		NumUTXOs: nd.pool.Len(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		data = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler("state: block: %s", string(data))
}
