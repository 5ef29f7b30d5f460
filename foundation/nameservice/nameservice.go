// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the ledger keys.
package nameservice

import (
	"crypto/ecdsa"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of owner keys for name lookup.
type NameService struct {
	names map[string]string
	keys  map[string]*ecdsa.PrivateKey
}

// New constructs a Name Service with keys from the specified folder. The name
// of each key is the name of its file without the .ecdsa extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[string]string),
		keys:  make(map[string]*ecdsa.PrivateKey),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")
		owner := database.PublicKey(signature.PublicKeyBytes(privateKey.PublicKey))

		ns.names[owner.String()] = name
		ns.keys[name] = privateKey

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified owner key.
func (ns *NameService) Lookup(owner database.PublicKey) string {
	name, exists := ns.names[owner.String()]
	if !exists {
		return owner.String()
	}
	return name
}

// PrivateKey returns the private key stored under the specified name.
func (ns *NameService) PrivateKey(name string) (*ecdsa.PrivateKey, error) {
	pk, exists := ns.keys[name]
	if !exists {
		return nil, fmt.Errorf("name %q does not exist", name)
	}
	return pk, nil
}

// Owner returns the owner key for the specified name.
func (ns *NameService) Owner(name string) (database.PublicKey, error) {
	pk, err := ns.PrivateKey(name)
	if err != nil {
		return nil, err
	}
	return signature.PublicKeyBytes(pk.PublicKey), nil
}

// Copy returns a copy of the map of owner keys and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.names))
	for owner, name := range ns.names {
		cpy[owner] = name
	}
	return cpy
}
