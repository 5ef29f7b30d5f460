// Package chaingrp maintains the group of handlers for read only views of
// the chain state.
package chaingrp

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/dimfeld/httptreemux/v5"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// Routes binds all the chain routes.
func Routes(mux *httptreemux.ContextMux, cfg Config) {
	h := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	mux.GET("/v1/chain/best", h.Best)
	mux.GET("/v1/chain/branch", h.Branch)
	mux.GET("/v1/chain/block/:hash", h.Block)
	mux.GET("/v1/chain/block/:hash/proof/:tx", h.Proof)
	mux.GET("/v1/chain/balances", h.Balances)
	mux.GET("/v1/chain/mempool", h.Mempool)

	if cfg.Evts != nil {
		mux.GET("/v1/events", h.Events)
	}
}

// =============================================================================

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
	WS    websocket.Upgrader
}

// Best returns the head of the best branch.
func (h Handlers) Best(w http.ResponseWriter, r *http.Request) {
	blk, height := h.State.RetrieveBest()
	h.respond(w, r, http.StatusOK, toBlock(blk, height, h.lookup))
}

// Branch returns the best branch from the head back to the genesis block.
func (h Handlers) Branch(w http.ResponseWriter, r *http.Request) {
	blocks := h.State.RetrieveBestBranch()

	out := make([]block, len(blocks))
	for i, blk := range blocks {
		out[i] = toBlock(blk, len(blocks)-i, h.lookup)
	}

	h.respond(w, r, http.StatusOK, out)
}

// Block returns the block with the hash in the path.
func (h Handlers) Block(w http.ResponseWriter, r *http.Request) {
	params := httptreemux.ContextParams(r.Context())

	hash, err := database.ToHash(params["hash"])
	if err != nil {
		h.respondError(w, r, errs.NewTrusted(err, http.StatusBadRequest))
		return
	}

	blk, height, exists := h.State.QueryBlock(hash)
	if !exists {
		h.respondError(w, r, errs.NewTrusted(errors.New("block not found"), http.StatusNotFound))
		return
	}

	h.respond(w, r, http.StatusOK, toBlock(blk, height, h.lookup))
}

// Proof returns the merkle proof that the transaction in the path is part
// of the block in the path.
func (h Handlers) Proof(w http.ResponseWriter, r *http.Request) {
	params := httptreemux.ContextParams(r.Context())

	hash, err := database.ToHash(params["hash"])
	if err != nil {
		h.respondError(w, r, errs.NewTrusted(err, http.StatusBadRequest))
		return
	}

	txHash, err := database.ToHash(params["tx"])
	if err != nil {
		h.respondError(w, r, errs.NewTrusted(err, http.StatusBadRequest))
		return
	}

	blk, _, exists := h.State.QueryBlock(hash)
	if !exists {
		h.respondError(w, r, errs.NewTrusted(errors.New("block not found"), http.StatusNotFound))
		return
	}

	tree := merkle.FromBlock(blk)
	hashes, order, err := tree.Proof(txHash)
	if err != nil {
		h.respondError(w, r, errs.NewTrusted(err, http.StatusNotFound))
		return
	}

	out := proof{
		Block:      hash,
		Tx:         txHash,
		MerkleRoot: tree.MerkleRoot(),
		Proof:      hashes,
		Order:      order,
	}

	h.respond(w, r, http.StatusOK, out)
}

// Balances returns the value held by every owner on the best branch.
func (h Handlers) Balances(w http.ResponseWriter, r *http.Request) {
	pool := h.State.RetrieveMaxHeightUTXOPool()

	var out []balance
	for owner, value := range pool.Balances() {
		b := balance{
			Owner: owner,
			Name:  owner,
			Value: value,
		}
		if key, err := hexutil.Decode(owner); err == nil {
			b.Name = h.lookup(key)
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Owner < out[j].Owner
	})

	h.respond(w, r, http.StatusOK, out)
}

// Mempool returns the transactions waiting to be placed in a block.
func (h Handlers) Mempool(w http.ResponseWriter, r *http.Request) {
	trans := h.State.RetrieveMempool()

	out := make([]tx, len(trans))
	for i, t := range trans {
		out[i] = toTx(t, h.lookup)
	}

	h.respond(w, r, http.StatusOK, out)
}

// Events handles a web socket to provide the chain events to a client.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Errorw("events", "status", "upgrade", "ERROR", err)
		return
	}
	defer c.Close()

	id := uuid.NewString()
	ch := h.Evts.Acquire(id)
	defer h.Evts.Release(id)

	h.Log.Infow("events", "status", "connected", "id", id, "remoteaddr", r.RemoteAddr)
	defer h.Log.Infow("events", "status", "disconnected", "id", id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				h.Log.Errorw("events", "status", "write", "id", id, "ERROR", err)
				return
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// =============================================================================

func (h Handlers) lookup(owner database.PublicKey) string {
	if h.NS == nil {
		return owner.String()
	}
	return h.NS.Lookup(owner)
}

func (h Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp, statusCode := errs.ToResponse(err)
	h.Log.Infow("chaingrp", "path", r.URL.Path, "statusCode", statusCode, "ERROR", err)
	h.respond(w, r, statusCode, resp)
}

func (h Handlers) respond(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		h.Log.Errorw("chaingrp", "path", r.URL.Path, "ERROR", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		h.Log.Errorw("chaingrp", "path", r.URL.Path, "ERROR", err)
		return
	}

	h.Log.Infow("chaingrp", "statusCode", statusCode, "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)
}
