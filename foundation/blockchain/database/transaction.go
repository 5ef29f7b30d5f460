package database

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// CoinbaseIndex is the output index recorded in the single input of a
// reward transaction. No transaction can have this many outputs, so the
// input never resolves to a real unspent output.
const CoinbaseIndex uint32 = math.MaxUint32

// Input is a claim on an output of a previous transaction.
type Input struct {
	PrevTxHash  Hash   `json:"prev_tx_hash"` // Hash of the transaction whose output is being used.
	OutputIndex uint32 `json:"output_index"` // Index of the referenced output in that transaction.
	Signature   []byte `json:"signature"`    // Proves the owner of the referenced output authorized it.
}

// UTXO returns the identifier of the output this input claims.
func (in Input) UTXO() UTXO {
	return NewUTXO(in.PrevTxHash, in.OutputIndex)
}

// =============================================================================

// Tx is an ordered set of inputs claiming previous outputs and an ordered
// set of new outputs. The hash is assigned once by Finalize and the
// transaction must not be changed after that.
type Tx struct {
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
	hash    Hash
}

// NewCoinbase constructs the finalized reward transaction for a block built
// on the specified parent. The parent hash is recorded in an unsigned input
// so rewards to the same owner on one branch never share a hash.
func NewCoinbase(value int64, owner PublicKey, parent Hash) Tx {
	var tx Tx
	tx.AddInput(parent, CoinbaseIndex)
	tx.AddOutput(value, owner)
	tx.Finalize()

	return tx
}

// AddInput appends an unsigned claim on a previous output.
func (tx *Tx) AddInput(prevTxHash Hash, outputIndex uint32) {
	tx.Inputs = append(tx.Inputs, Input{
		PrevTxHash:  prevTxHash,
		OutputIndex: outputIndex,
	})
}

// AddOutput appends a new grant of value.
func (tx *Tx) AddOutput(value int64, owner PublicKey) {
	tx.Outputs = append(tx.Outputs, Output{
		Value: value,
		Owner: bytes.Clone(owner),
	})
}

// RemoveInput removes the input at the specified index.
func (tx *Tx) RemoveInput(index int) {
	tx.Inputs = append(tx.Inputs[:index], tx.Inputs[index+1:]...)
}

// AddSignature records the signature for the input at the specified index.
func (tx *Tx) AddSignature(sig []byte, index int) {
	tx.Inputs[index].Signature = bytes.Clone(sig)
}

// Sign signs the input at the specified index with the private key. All
// outputs must be added before any input is signed.
func (tx *Tx) Sign(index int, privateKey *ecdsa.PrivateKey) error {
	sig, err := signature.Sign(tx.RawDataToSign(index), privateKey)
	if err != nil {
		return fmt.Errorf("signing input %d: %w", index, err)
	}

	tx.AddSignature(sig, index)

	return nil
}

// RawDataToSign returns the bytes that must be signed for the input at the
// specified index. This is the claimed output followed by every output of
// this transaction.
func (tx Tx) RawDataToSign(index int) []byte {
	in := tx.Inputs[index]

	var buf bytes.Buffer
	buf.Write(in.PrevTxHash[:])
	binary.Write(&buf, binary.BigEndian, in.OutputIndex)

	for _, out := range tx.Outputs {
		writeOutput(&buf, out)
	}

	return buf.Bytes()
}

// RawTx returns the canonical encoding of every input, signatures included,
// followed by every output.
func (tx Tx) RawTx() []byte {
	var buf bytes.Buffer

	for _, in := range tx.Inputs {
		buf.Write(in.PrevTxHash[:])
		binary.Write(&buf, binary.BigEndian, in.OutputIndex)
		buf.Write(in.Signature)
	}

	for _, out := range tx.Outputs {
		writeOutput(&buf, out)
	}

	return buf.Bytes()
}

// ComputeHash calculates the hash of the current contents of the
// transaction without assigning it.
func (tx Tx) ComputeHash() Hash {
	return signature.Hash(tx.RawTx())
}

// Finalize computes the hash of the transaction. Only the first call
// assigns the hash, later calls return it unchanged.
func (tx *Tx) Finalize() Hash {
	if tx.hash.IsZero() {
		tx.hash = tx.ComputeHash()
	}

	return tx.hash
}

// Hash returns the hash assigned by Finalize.
func (tx Tx) Hash() Hash {
	return tx.hash
}

// IsFinalized reports whether the hash has been assigned.
func (tx Tx) IsFinalized() bool {
	return !tx.hash.IsZero()
}

// IsCoinbase reports whether the transaction has the shape of a reward
// transaction.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].OutputIndex == CoinbaseIndex && len(tx.Inputs[0].Signature) == 0
}

// UTXO returns the identifier of the output at the specified index. The
// transaction must be finalized since the identifier depends on its hash.
func (tx Tx) UTXO(index int) UTXO {
	if !tx.IsFinalized() {
		panic("database: UTXO requested for a transaction that is not finalized")
	}

	if index < 0 || index >= len(tx.Outputs) {
		panic(fmt.Sprintf("database: output index %d out of range [0,%d)", index, len(tx.Outputs)))
	}

	return NewUTXO(tx.hash, uint32(index))
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.hash, len(tx.Inputs), len(tx.Outputs))
}

// =============================================================================

// writeOutput encodes the value and owner of an output.
func writeOutput(buf *bytes.Buffer, out Output) {
	binary.Write(buf, binary.BigEndian, out.Value)
	buf.Write(out.Owner)
}
