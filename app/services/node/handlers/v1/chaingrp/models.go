package chaingrp

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type input struct {
	PrevTxHash  database.Hash `json:"prev_tx_hash"`
	OutputIndex uint32        `json:"output_index"`
	Signature   string        `json:"signature,omitempty"`
}

type output struct {
	Value int64  `json:"value"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

type tx struct {
	Hash    database.Hash `json:"hash"`
	Inputs  []input       `json:"inputs"`
	Outputs []output      `json:"outputs"`
}

type block struct {
	Hash          database.Hash `json:"hash"`
	PrevBlockHash database.Hash `json:"prev_block_hash"`
	Height        int           `json:"height"`
	MerkleRoot    database.Hash `json:"merkle_root"`
	Coinbase      tx            `json:"coinbase"`
	Trans         []tx          `json:"trans"`
}

type proof struct {
	Block      database.Hash   `json:"block"`
	Tx         database.Hash   `json:"tx"`
	MerkleRoot database.Hash   `json:"merkle_root"`
	Proof      []database.Hash `json:"proof"`
	Order      []int           `json:"proof_order"`
}

type balance struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// =============================================================================

func toTx(t database.Tx, lookup func(database.PublicKey) string) tx {
	ins := make([]input, len(t.Inputs))
	for i, in := range t.Inputs {
		ins[i] = input{
			PrevTxHash:  in.PrevTxHash,
			OutputIndex: in.OutputIndex,
		}
		if len(in.Signature) > 0 {
			ins[i].Signature = hexutil.Encode(in.Signature)
		}
	}

	outs := make([]output, len(t.Outputs))
	for i, out := range t.Outputs {
		outs[i] = output{
			Value: out.Value,
			Owner: out.Owner.String(),
			Name:  lookup(out.Owner),
		}
	}

	return tx{
		Hash:    t.Hash(),
		Inputs:  ins,
		Outputs: outs,
	}
}

func toBlock(b database.Block, height int, lookup func(database.PublicKey) string) block {
	trans := make([]tx, len(b.Trans))
	for i, t := range b.Trans {
		trans[i] = toTx(t, lookup)
	}

	return block{
		Hash:          b.Hash(),
		PrevBlockHash: b.PrevBlockHash,
		Height:        height,
		MerkleRoot:    merkle.FromBlock(b).MerkleRoot(),
		Coinbase:      toTx(b.Coinbase, lookup),
		Trans:         trans,
	}
}
