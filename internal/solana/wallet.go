package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet holds a signing key. Call Zero once the key is no longer needed.
type Wallet struct {
	privateKey solana.PrivateKey
}

// WalletFromBase58 creates a wallet from a base58-encoded 64-byte secret key.
// The decoded bytes are owned by the wallet; the caller should drop its copy
// of the string as soon as possible.
func WalletFromBase58(key string) (*Wallet, error) {
	raw, err := base58.Decode(strings.TrimSpace(key))
	if err != nil {
		return nil, fmt.Errorf("invalid private key encoding: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		clear(raw)
		return nil, fmt.Errorf("invalid private key size: expected %d, got %d", ed25519.PrivateKeySize, len(raw))
	}
	return &Wallet{privateKey: solana.PrivateKey(raw)}, nil
}

// WalletFromFile loads a wallet from a JSON keypair file (Solana CLI format)
func WalletFromFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	defer clear(data)

	var keypair []byte
	if err := json.Unmarshal(data, &keypair); err != nil {
		return nil, fmt.Errorf("failed to parse keypair: %w", err)
	}

	if len(keypair) != ed25519.PrivateKeySize {
		clear(keypair)
		return nil, fmt.Errorf("invalid keypair size: expected %d, got %d", ed25519.PrivateKeySize, len(keypair))
	}

	return &Wallet{
		privateKey: solana.PrivateKey(keypair),
	}, nil
}

// PublicKey returns the wallet's public key
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.privateKey.PublicKey()
}

// signer returns the private key for tx.Sign callbacks.
func (w *Wallet) signer(key solana.PublicKey) *solana.PrivateKey {
	if w.PublicKey().Equals(key) {
		return &w.privateKey
	}
	return nil
}

// Zero wipes the key material. The wallet is unusable afterwards.
func (w *Wallet) Zero() {
	if w == nil {
		return
	}
	clear(w.privateKey)
	w.privateKey = nil
}

// String returns the public key as a string
func (w *Wallet) String() string {
	return w.PublicKey().String()
}

// ParsePublicKey validates a base58 address typed by the user.
func ParsePublicKey(address string) (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(strings.TrimSpace(address))
}
