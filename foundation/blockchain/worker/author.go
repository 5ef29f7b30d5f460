package worker

import (
	"errors"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/google/uuid"
)

// authorOperations handles block authoring.
func (w *Worker) authorOperations() {
	w.evHandler("worker: authorOperations: G started")
	defer w.evHandler("worker: authorOperations: G completed")

	// A nil channel blocks forever, which turns off the timed blocks.
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			if !w.isShutdown() {
				w.runAuthorOperation(true)
			}
		case <-w.startAuthor:
			if !w.isShutdown() {
				w.runAuthorOperation(false)
			}
		case <-w.shut:
			w.evHandler("worker: authorOperations: received shut signal")
			return
		}
	}
}

// runAuthorOperation takes the best transactions from the mempool and
// submits a new block to the chain. An empty block is only authored when
// the operation was started by the timer.
func (w *Worker) runAuthorOperation(allowEmpty bool) {
	traceID := uuid.NewString()

	w.evHandler("worker: runAuthorOperation: AUTHOR: started: traceid[%s]", traceID)
	defer w.evHandler("worker: runAuthorOperation: AUTHOR: completed: traceid[%s]", traceID)

	t := time.Now()

	var block database.Block
	var err error
	switch allowEmpty {
	case true:
		block, err = w.state.CreateBlock(w.owner)
	default:
		block, err = w.state.CreateBlockIfTransactions(w.owner)
	}

	duration := time.Since(t)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runAuthorOperation: AUTHOR: WARNING: no transactions in mempool: traceid[%s]", traceID)
		default:
			w.evHandler("worker: runAuthorOperation: AUTHOR: ERROR: %s: traceid[%s]", err, traceID)
		}
		return
	}

	w.evHandler("worker: runAuthorOperation: AUTHOR: blk[%s]: trans[%d]: duration[%v]: traceid[%s]", block.Hash(), len(block.Trans), duration, traceID)
}
