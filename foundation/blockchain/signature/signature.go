// Package signature provides helper functions for handling the blockchain
// digest and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DigestLength is the number of bytes produced by Hash.
const DigestLength = sha256.Size

// =============================================================================

// Hash returns the SHA-256 digest of the specified data.
func Hash(data []byte) [DigestLength]byte {
	return sha256.Sum256(data)
}

// Sign uses the specified private key to sign the message. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(message []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key is nil")
	}

	// Prepare the data for signing.
	data := stamp(message)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, errors.New("invalid signature")
	}

	return sig, nil
}

// Verify reports whether sig is a valid signature of message by the owner of
// publicKey. Only the canonical 65 byte [R|S|V] form is accepted, with a
// recovery id of 0 or 1 that recovers the owner key, so every signed message
// has exactly one valid signature. Any malformed key or signature yields false.
func Verify(publicKey []byte, message []byte, sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	owner, err := crypto.DecompressPubkey(publicKey)
	if err != nil {
		if owner, err = crypto.UnmarshalPubkey(publicKey); err != nil {
			return false
		}
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset]
	if v != 0 && v != 1 {
		return false
	}

	// Check the signature values are valid and S is in the lower half.
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return false
	}

	data := stamp(message)

	// The recovery id must point back at the owner.
	recovered, err := crypto.SigToPub(data, sig)
	if err != nil {
		return false
	}

	ownerKey := crypto.FromECDSAPub(owner)
	if !bytes.Equal(crypto.FromECDSAPub(recovered), ownerKey) {
		return false
	}

	return crypto.VerifySignature(ownerKey, data, sig[:crypto.RecoveryIDOffset])
}

// PublicKeyBytes returns the 33 byte compressed form of the public key. This
// is the owner key recorded in transaction outputs.
func PublicKeyBytes(pk ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(&pk)
}

// ToPublicKey converts a 0x prefixed hex string into owner key bytes and
// validates it is a proper secp256k1 public key.
func ToPublicKey(hex string) ([]byte, error) {
	key, err := hexutil.Decode(hex)
	if err != nil {
		return nil, err
	}

	if _, err := crypto.DecompressPubkey(key); err != nil {
		if _, err := crypto.UnmarshalPubkey(key); err != nil {
			return nil, errors.New("invalid public key")
		}
	}

	return key, nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this message with
// the ledger stamp embedded into the final hash.
func stamp(message []byte) []byte {

	// Hash the message into a 32 byte array. This will provide
	// a data length consistency with all data.
	msgHash := crypto.Keccak256(message)

	// This stamp is used so signatures we produce when signing data
	// are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	// Hash the stamp and msgHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, msgHash)
}
