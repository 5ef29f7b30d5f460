// Package ledger implements the transaction validation rules over a pool of
// unspent outputs and the batch acceptance of candidate transactions.
//
// Every function takes the pool it works against as an argument. Functions
// that change ledger state work on a copy and hand the copy back, so a
// caller's pool never changes underneath it.
package ledger

import (
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// IsValid reports whether the transaction can be applied to the pool:
//
//	every claimed output is in the pool,
//	every input signature verifies with the owner of the claimed output,
//	no output is claimed more than once,
//	no output value is negative,
//	the claimed value covers the value of the outputs.
//
// A transaction that is not finalized has no identity and is never valid.
// The pool is not changed.
func IsValid(tx database.Tx, pool database.UTXOPool) bool {
	if !tx.IsFinalized() {
		return false
	}

	claimed := make(map[database.UTXO]struct{}, len(tx.Inputs))

	var inputSum int64
	for i, in := range tx.Inputs {
		utxo := in.UTXO()

		out, exists := pool.Get(utxo)
		if !exists {
			return false
		}

		if _, exists := claimed[utxo]; exists {
			return false
		}
		claimed[utxo] = struct{}{}

		if !signature.Verify(out.Owner, tx.RawDataToSign(i), in.Signature) {
			return false
		}

		var ok bool
		if inputSum, ok = add(inputSum, out.Value); !ok {
			return false
		}
	}

	var outputSum int64
	for _, out := range tx.Outputs {
		if out.Value < 0 {
			return false
		}

		var ok bool
		if outputSum, ok = add(outputSum, out.Value); !ok {
			return false
		}
	}

	return inputSum >= outputSum
}

// Fee returns the claimed input value minus the output value of the
// transaction. The second return is false when any claimed output is not in
// the pool or the sums overflow.
func Fee(tx database.Tx, pool database.UTXOPool) (int64, bool) {
	var inputSum int64
	for _, in := range tx.Inputs {
		out, exists := pool.Get(in.UTXO())
		if !exists {
			return 0, false
		}

		var ok bool
		if inputSum, ok = add(inputSum, out.Value); !ok {
			return 0, false
		}
	}

	var outputSum int64
	for _, out := range tx.Outputs {
		var ok bool
		if outputSum, ok = add(outputSum, out.Value); !ok {
			return 0, false
		}
	}

	return inputSum - outputSum, true
}

// Apply changes the pool by the effect of the transaction: the claimed
// outputs are removed and the outputs of the transaction are added. The
// transaction must be finalized and should be valid against the pool.
func Apply(tx database.Tx, pool database.UTXOPool) {
	for _, in := range tx.Inputs {
		pool.Remove(in.UTXO())
	}

	for i, out := range tx.Outputs {
		pool.Add(tx.UTXO(i), out)
	}
}

// =============================================================================

// SelectBatch accepts every candidate it can apply against a copy of the
// pool. Candidates may spend outputs of other candidates and those that never
// validate are dropped. The accepted transactions are returned in candidate order along
// with the copy of the pool changed by every accepted transaction.
func SelectBatch(candidates []database.Tx, pool database.UTXOPool) ([]database.Tx, database.UTXOPool) {
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}

	return selectBatch(candidates, order, pool)
}

// SelectBatchMaxFee works like SelectBatch but attempts the candidates in
// descending fee order, so when two candidates claim the same output the one
// paying the higher fee is tried first. Equal fees keep the candidate order.
// The accepted transactions are returned in candidate order.
func SelectBatchMaxFee(candidates []database.Tx, pool database.UTXOPool) ([]database.Tx, database.UTXOPool) {
	return selectBatch(candidates, feeOrder(candidates, pool), pool)
}

// SortByFee returns a copy of the candidates ordered by descending fee
// against the pool. Equal fees keep the candidate order and candidates whose
// fee can't be computed from the pool are placed last.
func SortByFee(candidates []database.Tx, pool database.UTXOPool) []database.Tx {
	order := feeOrder(candidates, pool)

	sorted := make([]database.Tx, len(order))
	for i, idx := range order {
		sorted[i] = candidates[idx]
	}

	return sorted
}

// =============================================================================

// selectBatch runs acceptance passes over the candidates in the specified
// order. Each pass applies every candidate that validates against the pool
// as it stands at that moment. There can be at most one pass per candidate
// plus a final pass that accepts nothing, so the work is bounded by the
// square of the number of candidates.
func selectBatch(candidates []database.Tx, order []int, pool database.UTXOPool) ([]database.Tx, database.UTXOPool) {
	pool = pool.Copy()

	accepted := make([]bool, len(candidates))
	seen := make(map[database.Hash]struct{}, len(candidates))

	for pass := 0; pass <= len(candidates); pass++ {
		var progress bool

		for _, idx := range order {
			if accepted[idx] {
				continue
			}

			tx := candidates[idx]
			if _, exists := seen[tx.Hash()]; exists {
				continue
			}

			if !IsValid(tx, pool) {
				continue
			}

			Apply(tx, pool)
			accepted[idx] = true
			seen[tx.Hash()] = struct{}{}
			progress = true
		}

		if !progress {
			break
		}
	}

	var final []database.Tx
	for idx, ok := range accepted {
		if ok {
			final = append(final, candidates[idx])
		}
	}

	return final, pool
}

// feeOrder returns the candidate indexes ordered by descending fee.
func feeOrder(candidates []database.Tx, pool database.UTXOPool) []int {
	type feeIdx struct {
		idx   int
		fee   int64
		known bool
	}

	fees := make([]feeIdx, len(candidates))
	for i, tx := range candidates {
		fee, known := Fee(tx, pool)
		fees[i] = feeIdx{idx: i, fee: fee, known: known}
	}

	sort.SliceStable(fees, func(i, j int) bool {
		if fees[i].known != fees[j].known {
			return fees[i].known
		}
		return fees[i].fee > fees[j].fee
	})

	order := make([]int, len(fees))
	for i, f := range fees {
		order[i] = f.idx
	}

	return order
}

// add returns the sum of a and b and false if the result overflowed.
func add(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}

	return sum, true
}
