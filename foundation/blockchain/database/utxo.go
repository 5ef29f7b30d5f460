package database

import (
	"fmt"
	"sort"
)

// UTXO identifies an unspent transaction output by the hash of the
// transaction that created it and the position of the output.
type UTXO struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// NewUTXO constructs a new unspent output identifier.
func NewUTXO(txHash Hash, index uint32) UTXO {
	return UTXO{
		TxHash: txHash,
		Index:  index,
	}
}

// Compare orders identifiers by output index first and then by the bytes
// of the transaction hash.
func (u UTXO) Compare(other UTXO) int {
	switch {
	case u.Index < other.Index:
		return -1
	case u.Index > other.Index:
		return 1
	}

	return u.TxHash.Compare(other.TxHash)
}

// String implements the fmt.Stringer interface for logging.
func (u UTXO) String() string {
	return fmt.Sprintf("%s:%d", u.TxHash, u.Index)
}

// =============================================================================

// Output is a grant of value to the owner of a public key.
type Output struct {
	Value int64     `json:"value"`
	Owner PublicKey `json:"owner"`
}

// =============================================================================

// UTXOPool is the database of unspent outputs for a single ledger state.
// Mutating operations change the receiver, so a pool handed to another
// component must be copied first.
type UTXOPool struct {
	pool map[UTXO]Output
}

// NewUTXOPool constructs an empty pool.
func NewUTXOPool() UTXOPool {
	return UTXOPool{
		pool: make(map[UTXO]Output),
	}
}

// Copy returns an independent pool holding the same outputs.
func (up UTXOPool) Copy() UTXOPool {
	cpy := make(map[UTXO]Output, len(up.pool))
	for utxo, out := range up.pool {
		cpy[utxo] = out
	}

	return UTXOPool{pool: cpy}
}

// Add records the output under the specified identifier, replacing any
// existing entry.
func (up UTXOPool) Add(utxo UTXO, out Output) {
	up.pool[utxo] = out
}

// Remove deletes the identifier from the pool.
func (up UTXOPool) Remove(utxo UTXO) {
	delete(up.pool, utxo)
}

// Get returns the output for the identifier.
func (up UTXOPool) Get(utxo UTXO) (Output, bool) {
	out, exists := up.pool[utxo]
	return out, exists
}

// Contains reports whether the identifier is unspent in this pool.
func (up UTXOPool) Contains(utxo UTXO) bool {
	_, exists := up.pool[utxo]
	return exists
}

// Len returns the number of unspent outputs.
func (up UTXOPool) Len() int {
	return len(up.pool)
}

// UTXOs returns all identifiers in the pool ordered by UTXO.Compare.
func (up UTXOPool) UTXOs() []UTXO {
	utxos := make([]UTXO, 0, len(up.pool))
	for utxo := range up.pool {
		utxos = append(utxos, utxo)
	}

	sort.Slice(utxos, func(i, j int) bool {
		return utxos[i].Compare(utxos[j]) < 0
	})

	return utxos
}

// Balance returns the total value of the unspent outputs owned by the key.
func (up UTXOPool) Balance(owner PublicKey) int64 {
	var total int64
	for _, out := range up.pool {
		if out.Owner.Equal(owner) {
			total += out.Value
		}
	}

	return total
}

// Balances returns the total unspent value per owner keyed by the hex form
// of the owner key.
func (up UTXOPool) Balances() map[string]int64 {
	balances := make(map[string]int64)
	for _, out := range up.pool {
		balances[out.Owner.String()] += out.Value
	}

	return balances
}
