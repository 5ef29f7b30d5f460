// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var client = http.Client{
	Timeout: 10 * time.Second,
}

// get calls the node and decodes the response into v.
func get(host string, path string, v any) error {
	resp, err := client.Get(host + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("status[%d]: %s", resp.StatusCode, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// Balances writes the value held by each owner on the best branch. The
// optional third argument limits the output to one owner by name or key.
func Balances(w io.Writer, args []string, host string) error {
	var only string
	if len(args) == 3 {
		only = args[2]
	}

	var best struct {
		Hash   string `json:"hash"`
		Height int    `json:"height"`
	}
	if err := get(host, "/v1/chain/best", &best); err != nil {
		return err
	}

	var bals []struct {
		Owner string `json:"owner"`
		Name  string `json:"name"`
		Value int64  `json:"value"`
	}
	if err := get(host, "/v1/chain/balances", &bals); err != nil {
		return err
	}

	fmt.Fprintf(w, "Best: %s  Height: %d\n\n", best.Hash, best.Height)

	for _, bal := range bals {
		if only != "" && only != bal.Name && only != bal.Owner {
			continue
		}
		fmt.Fprintf(w, "Owner: %s  Name: %s  Balance: %d\n", bal.Owner, bal.Name, bal.Value)
	}

	return nil
}

// Branch writes the blocks of the best branch from the head back to the
// genesis block.
func Branch(w io.Writer, host string) error {
	var blocks []struct {
		Hash   string `json:"hash"`
		Height int    `json:"height"`
		Trans  []any  `json:"trans"`
	}
	if err := get(host, "/v1/chain/branch", &blocks); err != nil {
		return err
	}

	for _, blk := range blocks {
		fmt.Fprintf(w, "Height: %d  Block: %s  Trans: %d\n", blk.Height, blk.Hash, len(blk.Trans))
	}

	return nil
}

// Mempool writes the transactions waiting to be placed in a block.
func Mempool(w io.Writer, host string) error {
	var trans []struct {
		Hash    string `json:"hash"`
		Inputs  []any  `json:"inputs"`
		Outputs []struct {
			Value int64  `json:"value"`
			Name  string `json:"name"`
		} `json:"outputs"`
	}
	if err := get(host, "/v1/chain/mempool", &trans); err != nil {
		return err
	}

	fmt.Fprintf(w, "Pending: %d\n\n", len(trans))

	for _, tx := range trans {
		fmt.Fprintf(w, "Tx: %s  Inputs: %d\n", tx.Hash, len(tx.Inputs))
		for _, out := range tx.Outputs {
			fmt.Fprintf(w, "    %s: %d\n", out.Name, out.Value)
		}
	}

	return nil
}
