// This program performs administrative tasks against a running node.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	host := os.Getenv("ADMIN_NODE_HOST")
	if host == "" {
		host = "http://localhost:7080"
	}

	log.Infow("startup", "version", build, "host", host)

	return processCommands(os.Args, host)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, host string) error {
	if len(args) < 2 {
		return errors.New("usage: admin bals [owner] | branch | mempool")
	}

	switch args[1] {
	case "bals":
		if err := commands.Balances(os.Stdout, args, host); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "branch":
		if err := commands.Branch(os.Stdout, host); err != nil {
			return fmt.Errorf("getting branch: %w", err)
		}
	case "mempool":
		if err := commands.Mempool(os.Stdout, host); err != nil {
			return fmt.Errorf("getting mempool: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
