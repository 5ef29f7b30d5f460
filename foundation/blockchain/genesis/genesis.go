// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time `json:"date" validate:"required"`
	Beneficiary    string    `json:"beneficiary" validate:"required"`                       // Name of the key that receives the genesis reward.
	CutoffAge      int       `json:"cutoff_age" validate:"gte=0"`                           // How far a fork may fall behind and still be extended. Zero uses the default of 10.
	SelectStrategy string    `json:"select_strategy" validate:"omitempty,oneof=digest fee"` // How mempool transactions are picked.
	TransPerBlock  int       `json:"trans_per_block" validate:"gte=0"`                      // The maximum number of transactions that can be in a block. Zero means no limit.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("validating %s: %w", path, err)
	}

	return genesis, nil
}

// Block constructs the finalized genesis block rewarding the owner, which
// is the public key of the beneficiary.
func (g Genesis) Block(owner database.PublicKey) database.Block {
	block := database.NewBlock(database.ZeroHash, owner)
	block.Finalize()

	return block
}
