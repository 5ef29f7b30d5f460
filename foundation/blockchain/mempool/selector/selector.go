// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/ledger"
)

// List of different select strategies.
const (
	StrategyDigest = "digest"
	StrategyFee    = "fee"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyDigest: digestSelect,
	StrategyFee:    feeSelect,
}

// Func defines a function that takes the transactions of a mempool and the
// pool of unspent outputs they will be validated against, and returns
// howMany of them in an order based on the functions strategy. Receiving -1
// for howMany must return all the transactions in the strategies ordering.
type Func func(transactions []database.Tx, pool database.UTXOPool, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// digestSelect returns the transactions in ascending hash order. The order
// does not depend on how the transactions were stored, so every node picks
// the same candidates from the same mempool.
var digestSelect = func(txs []database.Tx, pool database.UTXOPool, howMany int) []database.Tx {
	final := make([]database.Tx, len(txs))
	copy(final, txs)

	sort.Sort(byHash(final))

	return limit(final, howMany)
}

// feeSelect returns the transactions with the best fee first. Transactions
// that spend outputs not yet in the pool, like those depending on another
// mempool transaction, come last.
var feeSelect = func(txs []database.Tx, pool database.UTXOPool, howMany int) []database.Tx {
	final := make([]database.Tx, len(txs))
	copy(final, txs)

	// Start from hash order so equal fees are broken the same way every time.
	sort.Sort(byHash(final))

	return limit(ledger.SortByFee(final, pool), howMany)
}

// =============================================================================

// limit trims the list to howMany transactions. -1 keeps them all.
func limit(txs []database.Tx, howMany int) []database.Tx {
	if howMany < 0 || howMany >= len(txs) {
		return txs
	}

	return txs[:howMany]
}

// byHash provides sorting support by the transaction hash value.
type byHash []database.Tx

// Len returns the number of transactions in the list.
func (bh byHash) Len() int {
	return len(bh)
}

// Less helps to sort the list by hash in ascending order.
func (bh byHash) Less(i, j int) bool {
	return bh[i].Hash().Compare(bh[j].Hash()) < 0
}

// Swap moves transactions in the order of the hash value.
func (bh byHash) Swap(i, j int) {
	bh[i], bh[j] = bh[j], bh[i]
}
