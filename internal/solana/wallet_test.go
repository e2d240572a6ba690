package solana

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestWalletFromBase58(t *testing.T) {
	account := solana.NewWallet()

	w, err := WalletFromBase58("  " + account.PrivateKey.String() + "\n")
	if err != nil {
		t.Fatalf("WalletFromBase58() error = %v", err)
	}
	if !w.PublicKey().Equals(account.PublicKey()) {
		t.Errorf("PublicKey = %s, want %s", w.PublicKey(), account.PublicKey())
	}
	if w.signer(account.PublicKey()) == nil {
		t.Error("signer should return the key for its own public key")
	}
	if w.signer(solana.NewWallet().PublicKey()) != nil {
		t.Error("signer should return nil for another key")
	}

	w.Zero()
	if w.privateKey != nil {
		t.Error("Zero should drop the key")
	}
}

func TestWalletFromBase58Invalid(t *testing.T) {
	if _, err := WalletFromBase58("0OIl"); err == nil {
		t.Error("expected error for non-base58 input")
	}
	short := solana.NewWallet().PublicKey().String()
	if _, err := WalletFromBase58(short); err == nil {
		t.Error("expected error for 32-byte input")
	}
}

func TestWalletFromFile(t *testing.T) {
	account := solana.NewWallet()
	data, err := json.Marshal([]int(toInts(account.PrivateKey)))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := WalletFromFile(path)
	if err != nil {
		t.Fatalf("WalletFromFile() error = %v", err)
	}
	if w.String() != account.PublicKey().String() {
		t.Errorf("String() = %s", w.String())
	}
}

func TestParsePublicKey(t *testing.T) {
	want := solana.NewWallet().PublicKey()
	got, err := ParsePublicKey(" " + want.String() + " ")
	if err != nil || !got.Equals(want) {
		t.Errorf("ParsePublicKey() = %s, %v", got, err)
	}
	if _, err := ParsePublicKey("not-a-key"); err == nil {
		t.Error("expected error")
	}
}

func toInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}
