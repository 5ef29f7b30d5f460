// Package worker implements block authoring for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// =============================================================================

// Worker manages the block authoring workflow for the blockchain.
type Worker struct {
	state       *state.State
	owner       database.PublicKey
	interval    time.Duration
	wg          sync.WaitGroup
	shut        chan struct{}
	startAuthor chan bool
	evHandler   state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up the background process. The worker authors a block rewarding the
// owner every interval and whenever a new transaction is signaled. An
// interval of zero only authors blocks on signal.
func Run(st *state.State, owner database.PublicKey, interval time.Duration, evHandler state.EventHandler) *Worker {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:       st,
		owner:       owner,
		interval:    interval,
		shut:        make(chan struct{}),
		startAuthor: make(chan bool, 1),
		evHandler:   ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.authorOperations()
	}()

	<-hasStarted

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalAuthorBlock starts an authoring operation. If there is already a
// signal pending in the channel, just return since an operation will start.
func (w *Worker) SignalAuthorBlock() {
	select {
	case w.startAuthor <- true:
		w.evHandler("worker: SignalAuthorBlock: authoring signaled")
	default:
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
