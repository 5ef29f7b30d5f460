package ledger_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pavelKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	billKey  = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
)

// tb is the part of testing.TB the helpers need, which rapid.T also provides.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

type account struct {
	pk    *ecdsa.PrivateKey
	owner database.PublicKey
}

func loadAccount(t tb, hexKey string) account {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %s", failed, err)
	}

	return account{pk: pk, owner: signature.PublicKeyBytes(pk.PublicKey)}
}

// fund constructs a pool holding one output per value owned by the account.
func fund(acct account, values ...int64) (database.UTXOPool, database.Tx) {
	var tx database.Tx
	for _, v := range values {
		tx.AddOutput(v, acct.owner)
	}
	tx.Finalize()

	pool := database.NewUTXOPool()
	for i, out := range tx.Outputs {
		pool.Add(tx.UTXO(i), out)
	}

	return pool, tx
}

// spend constructs a finalized transaction claiming the utxos, signed by the
// signer, paying the values to the receiver.
func spend(t tb, signer account, receiver account, utxos []database.UTXO, values ...int64) database.Tx {
	t.Helper()

	var tx database.Tx
	for _, utxo := range utxos {
		tx.AddInput(utxo.TxHash, utxo.Index)
	}
	for _, v := range values {
		tx.AddOutput(v, receiver.owner)
	}
	for i := range tx.Inputs {
		if err := tx.Sign(i, signer.pk); err != nil {
			t.Fatalf("\t%s\tShould be able to sign input %d: %s", failed, i, err)
		}
	}
	tx.Finalize()

	return tx
}

// =============================================================================

func Test_IsValid(t *testing.T) {
	pavel := loadAccount(t, pavelKey)
	bill := loadAccount(t, billKey)

	pool, funding := fund(pavel, 10, 5)
	u0 := funding.UTXO(0)
	u1 := funding.UTXO(1)

	unfinalized := func() database.Tx {
		var tx database.Tx
		tx.AddInput(u0.TxHash, u0.Index)
		tx.AddOutput(10, bill.owner)
		tx.Sign(0, pavel.pk)
		return tx
	}

	type table struct {
		name string
		tx   database.Tx
		exp  bool
	}

	tt := []table{
		{name: "single input", tx: spend(t, pavel, bill, []database.UTXO{u0}, 8), exp: true},
		{name: "zero fee", tx: spend(t, pavel, bill, []database.UTXO{u0, u1}, 15), exp: true},
		{name: "two outputs", tx: spend(t, pavel, bill, []database.UTXO{u0}, 3, 7), exp: true},
		{name: "missing output", tx: spend(t, pavel, bill, []database.UTXO{database.NewUTXO(u0.TxHash, 5)}, 1), exp: false},
		{name: "claimed twice", tx: spend(t, pavel, bill, []database.UTXO{u1, u1}, 10), exp: false},
		{name: "wrong signer", tx: spend(t, bill, bill, []database.UTXO{u0}, 10), exp: false},
		{name: "negative output", tx: spend(t, pavel, bill, []database.UTXO{u0}, 11, -1), exp: false},
		{name: "overspend", tx: spend(t, pavel, bill, []database.UTXO{u0}, 11), exp: false},
		{name: "not finalized", tx: unfinalized(), exp: false},
	}

	t.Log("Given the need to validate a transaction against a pool.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := ledger.IsValid(tst.tx, pool)
				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get back the right verdict.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right verdict.", success, testID)

				if pool.Len() != 2 {
					t.Fatalf("\t%s\tTest %d:\tShould not change the pool.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould not change the pool.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_IsValidOverflow(t *testing.T) {
	t.Log("Given the need to reject output sums that overflow.")
	{
		pavel := loadAccount(t, pavelKey)

		pool, funding := fund(pavel, 10)

		const max = int64(^uint64(0) >> 1)
		tx := spend(t, pavel, pavel, []database.UTXO{funding.UTXO(0)}, max, max, 2)
		if ledger.IsValid(tx, pool) {
			t.Fatalf("\t%s\tShould reject outputs that wrap the sum.", failed)
		}
		t.Logf("\t%s\tShould reject outputs that wrap the sum.", success)
	}
}

func Test_IsValidMalleated(t *testing.T) {
	pavel := loadAccount(t, pavelKey)
	bill := loadAccount(t, billKey)

	pool, funding := fund(pavel, 10)
	utxo := funding.UTXO(0)

	signed := spend(t, pavel, bill, []database.UTXO{utxo}, 9)
	sig := signed.Inputs[0].Signature

	// resign rebuilds the signed transaction carrying a different encoding
	// of the same signature.
	resign := func(change func([]byte) []byte) database.Tx {
		var tx database.Tx
		tx.AddInput(utxo.TxHash, utxo.Index)
		tx.AddOutput(9, bill.owner)
		tx.AddSignature(change(append([]byte(nil), sig...)), 0)
		tx.Finalize()
		return tx
	}

	type table struct {
		name string
		tx   database.Tx
	}

	tt := []table{
		{name: "bad recovery id", tx: resign(func(b []byte) []byte { b[64] ^= 0x7f; return b })},
		{name: "flipped recovery id", tx: resign(func(b []byte) []byte { b[64] ^= 0x01; return b })},
		{name: "truncated", tx: resign(func(b []byte) []byte { return b[:64] })},
	}

	t.Log("Given the need to accept only one encoding of a signed transaction.")
	{
		if !ledger.IsValid(signed, pool) {
			t.Fatalf("\t%s\tShould accept the original transaction.", failed)
		}
		t.Logf("\t%s\tShould accept the original transaction.", success)

		for testID, tst := range tt {
			f := func(t *testing.T) {
				if tst.tx.Hash() == signed.Hash() {
					t.Fatalf("\t%s\tTest %d:\tShould get a different digest.", failed, testID)
				}

				if ledger.IsValid(tst.tx, pool) {
					t.Fatalf("\t%s\tTest %d:\tShould reject the changed signature.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the changed signature.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Fee(t *testing.T) {
	t.Log("Given the need to compute the fee of a transaction.")
	{
		pavel := loadAccount(t, pavelKey)

		pool, funding := fund(pavel, 10, 5)
		tx := spend(t, pavel, pavel, []database.UTXO{funding.UTXO(0), funding.UTXO(1)}, 12)

		fee, ok := ledger.Fee(tx, pool)
		if !ok || fee != 3 {
			t.Logf("\t%s\tgot: %d %v", failed, fee, ok)
			t.Logf("\t%s\texp: %d %v", failed, 3, true)
			t.Fatalf("\t%s\tShould get back the difference of inputs and outputs.", failed)
		}
		t.Logf("\t%s\tShould get back the difference of inputs and outputs.", success)

		orphan := spend(t, pavel, pavel, []database.UTXO{tx.UTXO(0)}, 12)
		if _, ok := ledger.Fee(orphan, pool); ok {
			t.Fatalf("\t%s\tShould not compute a fee for an unknown output.", failed)
		}
		t.Logf("\t%s\tShould not compute a fee for an unknown output.", success)
	}
}

func Test_SelectBatchDependencies(t *testing.T) {
	t.Log("Given the need to accept transactions that spend each other.")
	{
		pavel := loadAccount(t, pavelKey)
		bill := loadAccount(t, billKey)

		pool, funding := fund(pavel, 10)

		a := spend(t, pavel, bill, []database.UTXO{funding.UTXO(0)}, 9)
		b := spend(t, bill, pavel, []database.UTXO{a.UTXO(0)}, 4, 4)
		c := spend(t, pavel, bill, []database.UTXO{b.UTXO(0), b.UTXO(1)}, 8)

		accepted, newPool := ledger.SelectBatch([]database.Tx{c, b, a}, pool)
		if len(accepted) != 3 {
			t.Fatalf("\t%s\tShould accept the whole chain: %d", failed, len(accepted))
		}
		t.Logf("\t%s\tShould accept the whole chain.", success)

		if accepted[0].Hash() != c.Hash() || accepted[1].Hash() != b.Hash() || accepted[2].Hash() != a.Hash() {
			t.Fatalf("\t%s\tShould keep the candidate order.", failed)
		}
		t.Logf("\t%s\tShould keep the candidate order.", success)

		if newPool.Len() != 1 || !newPool.Contains(c.UTXO(0)) {
			t.Fatalf("\t%s\tShould leave only the final output unspent: %v", failed, newPool.UTXOs())
		}
		t.Logf("\t%s\tShould leave only the final output unspent.", success)

		if pool.Len() != 1 || !pool.Contains(funding.UTXO(0)) {
			t.Fatalf("\t%s\tShould not change the caller's pool.", failed)
		}
		t.Logf("\t%s\tShould not change the caller's pool.", success)
	}
}

func Test_SelectBatchDoubleSpend(t *testing.T) {
	pavel := loadAccount(t, pavelKey)
	bill := loadAccount(t, billKey)

	pool, funding := fund(pavel, 10)
	u := funding.UTXO(0)

	lowFee := spend(t, pavel, bill, []database.UTXO{u}, 9)
	highFee := spend(t, pavel, bill, []database.UTXO{u}, 7)
	sameFee := spend(t, pavel, pavel, []database.UTXO{u}, 9)

	type table struct {
		name       string
		candidates []database.Tx
		selectFn   func([]database.Tx, database.UTXOPool) ([]database.Tx, database.UTXOPool)
		exp        database.Hash
	}

	tt := []table{
		{name: "first wins", candidates: []database.Tx{lowFee, highFee}, selectFn: ledger.SelectBatch, exp: lowFee.Hash()},
		{name: "max fee wins", candidates: []database.Tx{lowFee, highFee}, selectFn: ledger.SelectBatchMaxFee, exp: highFee.Hash()},
		{name: "max fee either order", candidates: []database.Tx{highFee, lowFee}, selectFn: ledger.SelectBatchMaxFee, exp: highFee.Hash()},
		{name: "equal fee first wins", candidates: []database.Tx{sameFee, lowFee}, selectFn: ledger.SelectBatchMaxFee, exp: sameFee.Hash()},
	}

	t.Log("Given the need to accept only one of two transactions claiming the same output.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				accepted, _ := tst.selectFn(tst.candidates, pool)
				if len(accepted) != 1 {
					t.Fatalf("\t%s\tTest %d:\tShould accept exactly one transaction: %d", failed, testID, len(accepted))
				}
				t.Logf("\t%s\tTest %d:\tShould accept exactly one transaction.", success, testID)

				if accepted[0].Hash() != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, accepted[0].Hash())
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould accept the right transaction.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould accept the right transaction.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_SelectBatchDuplicates(t *testing.T) {
	t.Log("Given the need to accept a transaction only once.")
	{
		pavel := loadAccount(t, pavelKey)

		pool, _ := fund(pavel, 10)

		var empty database.Tx
		empty.AddOutput(0, pavel.owner)
		empty.Finalize()

		accepted, newPool := ledger.SelectBatch([]database.Tx{empty, empty, empty}, pool)
		if len(accepted) != 1 {
			t.Fatalf("\t%s\tShould accept the transaction once: %d", failed, len(accepted))
		}
		t.Logf("\t%s\tShould accept the transaction once.", success)

		if newPool.Len() != 2 {
			t.Fatalf("\t%s\tShould add its output once: %d", failed, newPool.Len())
		}
		t.Logf("\t%s\tShould add its output once.", success)
	}
}

func Test_SortByFee(t *testing.T) {
	t.Log("Given the need to order candidates by fee.")
	{
		pavel := loadAccount(t, pavelKey)

		pool, funding := fund(pavel, 10, 10, 10)

		fee1 := spend(t, pavel, pavel, []database.UTXO{funding.UTXO(0)}, 9)
		fee5 := spend(t, pavel, pavel, []database.UTXO{funding.UTXO(1)}, 5)
		fee3 := spend(t, pavel, pavel, []database.UTXO{funding.UTXO(2)}, 7)
		orphan := spend(t, pavel, pavel, []database.UTXO{fee5.UTXO(0)}, 1)

		sorted := ledger.SortByFee([]database.Tx{orphan, fee1, fee5, fee3}, pool)

		exp := []database.Hash{fee5.Hash(), fee3.Hash(), fee1.Hash(), orphan.Hash()}
		for i := range exp {
			if sorted[i].Hash() != exp[i] {
				t.Logf("\t%s\tgot: %s", failed, sorted[i].Hash())
				t.Logf("\t%s\texp: %s", failed, exp[i])
				t.Fatalf("\t%s\tShould get back the candidates by descending fee.", failed)
			}
		}
		t.Logf("\t%s\tShould get back the candidates by descending fee.", success)
	}
}
