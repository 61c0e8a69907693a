package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet holds the agent's secp256k1 signing key. The key is parsed once at
// construction and is never logged or re-serialized.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

// New parses a hex-encoded private key, with or without a 0x prefix.
func New(privateKeyHex string) (*Wallet, error) {
	if privateKeyHex == "" {
		return nil, errors.New("private key cannot be empty")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &Wallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}, nil
}

// Address returns the checksummed owner address derived from the key.
func (w *Wallet) Address() string {
	return w.address
}

// SignPayload signs the Keccak-256 digest of data and returns the 65-byte
// recoverable signature hex-encoded.
func (w *Wallet) SignPayload(data []byte) (string, error) {
	digest := crypto.Keccak256(data)

	sig, err := crypto.Sign(digest, w.key)
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}

	return hex.EncodeToString(sig), nil
}
