package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func write(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the genesis file: %s", failed, err)
	}

	return path
}

func Test_Load(t *testing.T) {
	t.Log("Given the need to load a genesis file.")
	{
		path := write(t, `{
			"date": "2026-10-14T00:00:00.000000000Z",
			"beneficiary": "pavel",
			"cutoff_age": 10,
			"select_strategy": "fee",
			"trans_per_block": 100
		}`)

		gen, err := genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the file: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the file.", success)

		if gen.Beneficiary != "pavel" || gen.CutoffAge != 10 || gen.SelectStrategy != "fee" || gen.TransPerBlock != 100 {
			t.Fatalf("\t%s\tShould get back the values from the file: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould get back the values from the file.", success)

		owner := database.PublicKey{0x02, 0x01}
		blk := gen.Block(owner)
		if !blk.IsGenesis() || !blk.IsFinalized() || !blk.Coinbase.Outputs[0].Owner.Equal(owner) {
			t.Fatalf("\t%s\tShould build a finalized genesis block for the owner.", failed)
		}
		t.Logf("\t%s\tShould build a finalized genesis block for the owner.", success)
	}

	t.Log("Given the need to load a genesis file that relies on the defaults.")
	{
		path := write(t, `{"date": "2026-10-14T00:00:00Z", "beneficiary": "pavel"}`)

		gen, err := genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the file: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the file.", success)

		if gen.CutoffAge != 0 || gen.SelectStrategy != "" || gen.TransPerBlock != 0 {
			t.Fatalf("\t%s\tShould leave the optional fields at zero: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould leave the optional fields at zero.", success)
	}

	t.Log("Given the need to reject a bad genesis file.")
	{
		path := write(t, `{"date": "2026-10-14T00:00:00Z", "cutoff_age": -1, "select_strategy": "tip"}`)

		_, err := genesis.Load(path)
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get back field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould get back field errors.", success)

		fields := validate.GetFieldErrors(err).Fields()
		for _, name := range []string{"beneficiary", "cutoff_age", "select_strategy"} {
			if _, exists := fields[name]; !exists {
				t.Fatalf("\t%s\tShould get back an error for %q: %v", failed, name, fields)
			}
		}
		t.Logf("\t%s\tShould get back an error for every bad field.", success)

		if _, err := genesis.Load(write(t, `{`)); err == nil {
			t.Fatalf("\t%s\tShould not be able to load bad json.", failed)
		}
		t.Logf("\t%s\tShould not be able to load bad json.", success)

		if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Fatalf("\t%s\tShould not be able to load a missing file.", failed)
		}
		t.Logf("\t%s\tShould not be able to load a missing file.", success)
	}
}
