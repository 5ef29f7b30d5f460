// Package merkle provides support for building a merkle tree over the
// transaction hashes of a block and proving a transaction belongs to it.
package merkle

import (
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Set of order values that say which side a proof hash sits on.
const (
	Left  = 0 // Proof hash is concatenated first.
	Right = 1 // Proof hash is concatenated second.
)

// ErrNotFound is returned when the leaf is not part of the tree.
var ErrNotFound = errors.New("unable to find leaf in tree")

// =============================================================================

// Tree represents a merkle tree built from a set of leaf hashes.
type Tree struct {
	Root   *Node
	Leafs  []*Node
	values int
}

// NewTree constructs a merkle tree for the specified leaf hashes. A tree
// with no leafs has the zero hash for its root.
func NewTree(leafs []database.Hash) *Tree {
	t := Tree{
		values: len(leafs),
	}

	if len(leafs) == 0 {
		t.Root = &Node{}
		return &t
	}

	for _, leaf := range leafs {
		t.Leafs = append(t.Leafs, &Node{Hash: leaf, leaf: true})
	}

	// An odd leaf is paired with a copy of itself.
	if len(t.Leafs)%2 == 1 {
		last := t.Leafs[len(t.Leafs)-1]
		t.Leafs = append(t.Leafs, &Node{Hash: last.Hash, leaf: true, dup: true})
	}

	t.Root = buildIntermediate(t.Leafs)

	return &t
}

// FromBlock constructs a merkle tree over the hashes of the reward
// transaction followed by the block transactions.
func FromBlock(block database.Block) *Tree {
	leafs := make([]database.Hash, 0, len(block.Trans)+1)
	leafs = append(leafs, block.Coinbase.Hash())
	for _, tx := range block.Trans {
		leafs = append(leafs, tx.Hash())
	}

	return NewTree(leafs)
}

// MerkleRoot returns the hash at the root of the tree.
func (t *Tree) MerkleRoot() database.Hash {
	return t.Root.Hash
}

// Values returns the leaf hashes the tree was built from.
func (t *Tree) Values() []database.Hash {
	values := make([]database.Hash, t.values)
	for i := range values {
		values[i] = t.Leafs[i].Hash
	}

	return values
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the leaf is in the tree. Starting with the leaf, each
// proof hash is concatenated on the side its order says and the result is
// hashed. The final hash must match the merkle root.
func (t *Tree) Proof(leaf database.Hash) ([]database.Hash, []int, error) {
	for _, nd := range t.Leafs {
		if nd.Hash != leaf {
			continue
		}

		var proof []database.Hash
		var order []int

		for parent := nd.parent; parent != nil; parent = parent.parent {
			if parent.left == nd {
				proof = append(proof, parent.right.Hash)
				order = append(order, Right)
			} else {
				proof = append(proof, parent.left.Hash)
				order = append(order, Left)
			}
			nd = parent
		}

		return proof, order, nil
	}

	return nil, nil, ErrNotFound
}

// Verify recalculates every level of the tree and reports whether the
// result matches the stored root.
func (t *Tree) Verify() bool {
	if len(t.Leafs) == 0 {
		return t.Root.Hash.IsZero()
	}

	return t.Root.calculate() == t.Root.Hash
}

// =============================================================================

// VerifyProof reports whether the proof takes the leaf to the merkle root.
func VerifyProof(leaf database.Hash, proof []database.Hash, order []int, root database.Hash) bool {
	if len(proof) != len(order) {
		return false
	}

	hash := leaf
	for i, p := range proof {
		switch order[i] {
		case Left:
			hash = combine(p, hash)
		case Right:
			hash = combine(hash, p)
		default:
			return false
		}
	}

	return hash == root
}

// =============================================================================

// Node represents a node, root, or leaf in the tree.
type Node struct {
	Hash   database.Hash
	parent *Node
	left   *Node
	right  *Node
	leaf   bool
	dup    bool
}

// calculate walks down to the leafs and returns the hash the node should
// have given its children.
func (n *Node) calculate() database.Hash {
	if n.leaf {
		return n.Hash
	}

	return combine(n.left.calculate(), n.right.calculate())
}

// buildIntermediate constructs the levels above the specified nodes and
// returns the root.
func buildIntermediate(nl []*Node) *Node {
	if len(nl) == 1 {
		return nl[0]
	}

	var nodes []*Node
	for i := 0; i < len(nl); i += 2 {
		left, right := nl[i], nl[i]
		if i+1 < len(nl) {
			right = nl[i+1]
		}

		n := Node{
			Hash:  combine(left.Hash, right.Hash),
			left:  left,
			right: right,
		}

		left.parent = &n
		if right != left {
			right.parent = &n
		}

		nodes = append(nodes, &n)
	}

	return buildIntermediate(nodes)
}

// combine hashes the concatenation of two hashes.
func combine(left database.Hash, right database.Hash) database.Hash {
	data := make([]byte, 0, 2*len(left))
	data = append(data, left[:]...)
	data = append(data, right[:]...)

	return signature.Hash(data)
}
