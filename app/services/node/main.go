package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
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

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		State struct {
			GenesisPath    string        `conf:"default:zblock/genesis.json"`
			AuthorName     string        `conf:"default:pavel"`
			AuthorInterval time.Duration `conf:"default:15s"`
			PruneStale     bool          `conf:"default:false"`
			TransFile      string        `conf:"help:json file of signed transactions to load into the mempool"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for owner keys.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the owners for documentation in the logs.
	for owner, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "owner", owner)
	}

	// =========================================================================
	// Blockchain Support

	// The genesis file holds the consensus settings and names the key that
	// is rewarded by the genesis block.
	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	beneficiary, err := ns.Owner(gen.Beneficiary)
	if err != nil {
		return fmt.Errorf("unable to find genesis beneficiary: %w", err)
	}

	// The configured author is credited with the reward of every block
	// this node authors.
	author, err := ns.Owner(cfg.State.AuthorName)
	if err != nil {
		return fmt.Errorf("unable to find block author: %w", err)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the tree
	// of blocks and provides an API for application support.
	genesisBlock := gen.Block(beneficiary)
	st, err := state.New(state.Config{
		Genesis:        genesisBlock,
		CutoffAge:      gen.CutoffAge,
		SelectStrategy: gen.SelectStrategy,
		TransPerBlock:  gen.TransPerBlock,
		PruneStale:     cfg.State.PruneStale,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	log.Infow("startup", "status", "genesis", "block", genesisBlock.Hash().String(), "reward", genesisBlock.Coinbase.UTXO(0).String(), "beneficiary", gen.Beneficiary)

	// The worker package implements block authoring. The worker will
	// register itself with the state.
	worker.Run(st, author, cfg.State.AuthorInterval, ev)

	if cfg.State.TransFile != "" {
		trans, err := loadTransactions(cfg.State.TransFile)
		if err != nil {
			return fmt.Errorf("unable to load transactions: %w", err)
		}

		for _, tx := range trans {
			if err := st.AddTransaction(tx); err != nil {
				return fmt.Errorf("unable to add transaction: %w", err)
			}
		}
		log.Infow("startup", "status", "transactions loaded", "count", len(trans))
	}

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "initializing debug support")

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(handlers.MuxConfig{
		Build:  build,
		Origin: cfg.Web.CORSOrigin,
		Log:    log,
		State:  st,
		NS:     ns,
		Evts:   evts,
	})

	// Construct a server to service the requests against the mux.
	debug := http.Server{
		Addr:         cfg.Web.DebugHost,
		Handler:      debugMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for debug requests.
	go func() {
		log.Infow("startup", "status", "debug router started", "host", debug.Addr)
		serverErrors <- debug.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown debug started")
		if err := debug.Shutdown(ctx); err != nil {
			debug.Close()
			return fmt.Errorf("could not stop debug service gracefully: %w", err)
		}
	}

	return nil
}

// loadTransactions reads a json array of signed transactions and finalizes
// each of them.
func loadTransactions(path string) ([]database.Tx, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var trans []database.Tx
	if err := json.Unmarshal(content, &trans); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	for i := range trans {
		trans[i].Finalize()
	}

	return trans, nil
}
