package state

import "github.com/ardanlabs/ledger/foundation/blockchain/database"

// prune drops every block that can no longer be extended and is not an
// ancestor of a block that still can. Stale blocks kept as ancestors release
// their pool since no block can be validated against them again. The caller
// must hold the lock.
func (s *State) prune() {
	minHeight := s.best.height - s.cutoffAge

	// A block can be extended when its child would be above the cutoff.
	keep := make(map[*node]bool, len(s.nodes))
	for _, nd := range s.nodes {
		if nd.height+1 <= minHeight {
			continue
		}

		for anc := nd; anc != nil && !keep[anc]; anc = anc.parent {
			keep[anc] = true
		}
	}

	var removed int
	for hash, nd := range s.nodes {
		if nd.height+1 > minHeight {
			continue
		}

		if !keep[nd] {
			delete(s.nodes, hash)
			removed++
			continue
		}

		nd.pool = database.UTXOPool{}
	}

	if removed > 0 {
		s.evHandler("state: prune: removed[%d]: height[%d]: cutoff[%d]", removed, s.best.height, s.cutoffAge)
	}
}
