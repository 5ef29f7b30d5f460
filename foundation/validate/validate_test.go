package validate_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/validate"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

type model struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestCheck(t *testing.T) {
	type test struct {
		name   string
		val    model
		fields []string
	}

	tt := []test{
		{name: "valid", val: model{Name: "bill", Count: 1, Kind: "a"}},
		{name: "empty kind", val: model{Name: "bill"}},
		{name: "missing name", val: model{Count: 1}, fields: []string{"name"}},
		{name: "all bad", val: model{Count: -1, Kind: "c"}, fields: []string{"name", "count", "kind"}},
	}

	t.Log("Given the need to validate models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := validate.Check(tst.val)

				if len(tst.fields) == 0 {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould pass validation: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
					return
				}

				if !validate.IsFieldErrors(err) {
					t.Fatalf("\t%s\tTest %d:\tShould get back field errors: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get back field errors.", success, testID)

				fields := validate.GetFieldErrors(err).Fields()
				if len(fields) != len(tst.fields) {
					t.Fatalf("\t%s\tTest %d:\tShould get back %d field errors: %v", failed, testID, len(tst.fields), fields)
				}
				for _, name := range tst.fields {
					if _, exists := fields[name]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould get back an error for %q: %v", failed, testID, name, fields)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould get back the fields by their json names.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
