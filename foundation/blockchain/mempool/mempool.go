// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
)

// ErrNotFinalized is returned when a transaction without a hash is added.
var ErrNotFinalized = errors.New("transaction is not finalized")

// =============================================================================

// Mempool represents a cache of transactions not yet included in an
// accepted block, organized by transaction hash.
type Mempool struct {
	pool     map[database.Hash]database.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyDigest)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[database.Hash]database.Tx),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Tx) (int, error) {
	if !tx.IsFinalized() {
		return 0, ErrNotFinalized
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.Hash()] = tx

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(hash database.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, hash)
}

// Contains reports whether the transaction is in the mempool.
func (mp *Mempool) Contains(hash database.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[hash]
	return exists
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[database.Hash]database.Tx)
}

// Copy returns a list of the current transactions in the pool ordered
// by hash.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		cpy = append(cpy, tx)
	}

	sort.Slice(cpy, func(i, j int) bool {
		return cpy[i].Hash().Compare(cpy[j].Hash()) < 0
	})

	return cpy
}

// PickBest uses the configured select strategy to return the next set
// of candidate transactions for a block built on the specified pool.
// Pass -1 for howMany to get all the transactions.
func (mp *Mempool) PickBest(pool database.UTXOPool, howMany int) []database.Tx {
	return mp.selectFn(mp.Copy(), pool, howMany)
}
