package merkle_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func leafs(n int) []database.Hash {
	hashes := make([]database.Hash, n)
	for i := range hashes {
		hashes[i] = signature.Hash([]byte(fmt.Sprintf("leaf-%d", i)))
	}

	return hashes
}

func TestProof(t *testing.T) {
	t.Log("Given the need to prove a leaf belongs to a tree.")
	{
		for _, n := range []int{1, 2, 3, 4, 5, 8, 11} {
			f := func(t *testing.T) {
				values := leafs(n)
				tree := merkle.NewTree(values)

				if !tree.Verify() {
					t.Fatalf("\t%s\tLeafs %d:\tShould be able to verify the tree.", failed, n)
				}
				t.Logf("\t%s\tLeafs %d:\tShould be able to verify the tree.", success, n)

				if got := tree.Values(); len(got) != n {
					t.Fatalf("\t%s\tLeafs %d:\tShould get back the original leafs: %d", failed, n, len(got))
				}
				t.Logf("\t%s\tLeafs %d:\tShould get back the original leafs.", success, n)

				for i, leaf := range values {
					proof, order, err := tree.Proof(leaf)
					if err != nil {
						t.Fatalf("\t%s\tLeafs %d:\tShould be able to get a proof for leaf %d: %s", failed, n, i, err)
					}

					if !merkle.VerifyProof(leaf, proof, order, tree.MerkleRoot()) {
						t.Fatalf("\t%s\tLeafs %d:\tShould be able to verify the proof for leaf %d.", failed, n, i)
					}
				}
				t.Logf("\t%s\tLeafs %d:\tShould be able to verify a proof for every leaf.", success, n)

				other := signature.Hash([]byte("not a leaf"))
				if _, _, err := tree.Proof(other); err == nil {
					t.Fatalf("\t%s\tLeafs %d:\tShould not get a proof for an unknown leaf.", failed, n)
				}
				t.Logf("\t%s\tLeafs %d:\tShould not get a proof for an unknown leaf.", success, n)

				proof, order, _ := tree.Proof(values[0])
				if merkle.VerifyProof(other, proof, order, tree.MerkleRoot()) {
					t.Fatalf("\t%s\tLeafs %d:\tShould not verify a proof for the wrong leaf.", failed, n)
				}
				t.Logf("\t%s\tLeafs %d:\tShould not verify a proof for the wrong leaf.", success, n)
			}

			t.Run(fmt.Sprintf("leafs-%d", n), f)
		}
	}
}

func TestRoot(t *testing.T) {
	t.Log("Given the need to calculate a merkle root.")
	{
		a := signature.Hash([]byte("a"))
		b := signature.Hash([]byte("b"))
		c := signature.Hash([]byte("c"))

		ab := signature.Hash(append(a[:], b[:]...))
		cc := signature.Hash(append(c[:], c[:]...))
		exp := database.Hash(signature.Hash(append(ab[:], cc[:]...)))

		tree := merkle.NewTree([]database.Hash{a, b, c})
		if got := tree.MerkleRoot(); got != exp {
			t.Logf("\t%s\tgot: %s", failed, got)
			t.Logf("\t%s\texp: %s", failed, exp)
			t.Fatalf("\t%s\tShould pair an odd leaf with itself.", failed)
		}
		t.Logf("\t%s\tShould pair an odd leaf with itself.", success)

		if got := merkle.NewTree(nil).MerkleRoot(); !got.IsZero() {
			t.Fatalf("\t%s\tShould get the zero hash for an empty tree.", failed)
		}
		t.Logf("\t%s\tShould get the zero hash for an empty tree.", success)

		if merkle.NewTree([]database.Hash{a, b}).MerkleRoot() == merkle.NewTree([]database.Hash{b, a}).MerkleRoot() {
			t.Fatalf("\t%s\tShould get a different root when the order changes.", failed)
		}
		t.Logf("\t%s\tShould get a different root when the order changes.", success)
	}
}
