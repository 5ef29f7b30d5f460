package cmd

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// pubkeyCmd represents the pubkey command
var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the owner key for the specific wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			return err
		}

		owner := database.PublicKey(signature.PublicKeyBytes(privateKey.PublicKey))
		fmt.Fprintln(cmd.OutOrStdout(), owner)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pubkeyCmd)
}
