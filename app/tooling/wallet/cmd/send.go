package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	utxos   []string
	to      string
	values  []int64
	outFile string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction spending the specified outputs",
	Long: `Sign a transaction claiming every --utxo and paying each --value to
the --to owner. The signed transaction is printed as json and, when --out is
set, appended to the json array in that file for the node to load.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			return err
		}

		receiver, err := resolveOwner(to)
		if err != nil {
			return err
		}

		tx, err := buildTx(utxos, receiver, values)
		if err != nil {
			return err
		}

		for i := range tx.Inputs {
			if err := tx.Sign(i, privateKey); err != nil {
				return err
			}
		}
		tx.Finalize()

		data, err := json.MarshalIndent(tx, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

		if outFile != "" {
			return appendTx(outFile, tx)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringSliceVarP(&utxos, "utxo", "u", nil, "Output to spend as <tx hash>:<index>.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Name or 0x owner key of the receiver.")
	sendCmd.Flags().Int64SliceVarP(&values, "value", "v", nil, "Value of each output.")
	sendCmd.Flags().StringVarP(&outFile, "out", "o", "", "File collecting the signed transactions.")
}

// =============================================================================

// resolveOwner returns the owner key for a 0x hex key or a name in the
// wallet path.
func resolveOwner(nameOrKey string) (database.PublicKey, error) {
	if nameOrKey == "" {
		return nil, errors.New("receiver is required")
	}

	if strings.HasPrefix(nameOrKey, "0x") {
		return signature.ToPublicKey(nameOrKey)
	}

	ns, err := nameservice.New(walletPath)
	if err != nil {
		return nil, err
	}

	return ns.Owner(nameOrKey)
}

// buildTx constructs the unsigned transaction.
func buildTx(utxos []string, receiver database.PublicKey, values []int64) (database.Tx, error) {
	if len(utxos) == 0 {
		return database.Tx{}, errors.New("at least one utxo is required")
	}

	var tx database.Tx
	for _, u := range utxos {
		hash, index, found := strings.Cut(u, ":")
		if !found {
			return database.Tx{}, fmt.Errorf("utxo %q must be <tx hash>:<index>", u)
		}

		txHash, err := database.ToHash(hash)
		if err != nil {
			return database.Tx{}, fmt.Errorf("utxo %q: %w", u, err)
		}

		idx, err := strconv.ParseUint(index, 10, 32)
		if err != nil {
			return database.Tx{}, fmt.Errorf("utxo %q: %w", u, err)
		}

		tx.AddInput(txHash, uint32(idx))
	}

	for _, value := range values {
		tx.AddOutput(value, receiver)
	}

	return tx, nil
}

// appendTx adds the transaction to the json array stored in the file.
func appendTx(path string, tx database.Tx) error {
	var trans []database.Tx

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(content, &trans); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	trans = append(trans, tx)

	data, err := json.MarshalIndent(trans, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
