// Package state is the core API for the blockchain and implements all the
// business rules and processing.
//
// Every accepted block becomes a node in a tree rooted at the genesis block.
// Each node carries the pool of unspent outputs derived by applying its block
// on top of its parent's pool, so competing forks validate against their own
// history. The node with the greatest height is the head of the best branch.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
)

// DefaultCutoffAge is the number of blocks a fork may fall behind the best
// branch and still be extended.
const DefaultCutoffAge = 10

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for authoring blocks.
type Worker interface {
	Shutdown()
	SignalAuthorBlock()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis        database.Block // Finalized block with no parent.
	CutoffAge      int            // Zero uses DefaultCutoffAge, negative is an error.
	SelectStrategy string         // Empty uses the digest strategy.
	TransPerBlock  int            // Zero puts no limit on authored blocks.
	PruneStale     bool           // Drop nodes that can never matter again.
	EvHandler      EventHandler
}

// node is an accepted block along with the pool of unspent outputs that
// exists once the block is applied.
type node struct {
	block  database.Block
	parent *node
	height int
	pool   database.UTXOPool
}

// State manages the tree of accepted blocks.
type State struct {
	cutoffAge     int
	transPerBlock int
	pruneStale    bool
	evHandler     EventHandler

	mu      sync.Mutex
	genesis *node
	best    *node
	nodes   map[database.Hash]*node

	mempool *mempool.Mempool

	Worker Worker
}

// New constructs the chain state with the genesis block as its only node.
// The genesis block is trusted and its transactions are not validated. Only
// the output of its reward transaction is available for spending.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if !cfg.Genesis.IsFinalized() {
		return nil, errors.New("genesis block is not finalized")
	}

	if !cfg.Genesis.IsGenesis() {
		return nil, errors.New("genesis block must not have a parent")
	}

	if !cfg.Genesis.Coinbase.IsFinalized() {
		return nil, errors.New("genesis reward transaction is not finalized")
	}

	cutoffAge := cfg.CutoffAge
	if cutoffAge == 0 {
		cutoffAge = DefaultCutoffAge
	}
	if cutoffAge < 0 {
		return nil, errors.New("cutoff age can't be negative")
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyDigest
	}

	transPerBlock := cfg.TransPerBlock
	if transPerBlock <= 0 {
		transPerBlock = -1
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(strategy)
	if err != nil {
		return nil, err
	}

	pool := database.NewUTXOPool()
	addCoinbase(cfg.Genesis, pool)

	genesis := node{
		block:  cfg.Genesis,
		height: 1,
		pool:   pool,
	}

	state := State{
		cutoffAge:     cutoffAge,
		transPerBlock: transPerBlock,
		pruneStale:    cfg.PruneStale,
		evHandler:     ev,

		genesis: &genesis,
		best:    &genesis,
		nodes: map[database.Hash]*node{
			cfg.Genesis.Hash(): &genesis,
		},

		mempool: mempool,
	}

	ev("state: New: genesis[%s]: cutoff[%d]: strategy[%s]", cfg.Genesis.Hash(), cutoffAge, strategy)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all block authoring activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// addCoinbase adds the reward output of the block to the pool.
func addCoinbase(block database.Block, pool database.UTXOPool) {
	coinbase := block.Coinbase
	for i, out := range coinbase.Outputs {
		pool.Add(coinbase.UTXO(i), out)
	}
}
