package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// AddTransaction accepts a transaction for inclusion in a future block.
// The transaction is not validated here since it may depend on outputs of
// transactions still in the mempool. Invalid transactions are left out when
// a block is authored.
func (s *State) AddTransaction(tx database.Tx) error {
	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return fmt.Errorf("tx[%s]: %w", tx.Hash(), err)
	}

	s.evHandler("state: AddTransaction: tx[%s]: mempool[%d]", tx.Hash(), n)

	if s.Worker != nil {
		s.Worker.SignalAuthorBlock()
	}

	return nil
}
