package solana

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	werrors "github.com/lugondev/solmint/internal/errors"
)

func readBorshString(t *testing.T, data []byte, off int) (string, int) {
	t.Helper()
	if off+4 > len(data) {
		t.Fatalf("short buffer at %d", off)
	}
	n := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	return string(data[off : off+n]), off + n
}

func TestEncodeCreateMetadataV3(t *testing.T) {
	data, err := EncodeCreateMetadataV3(TokenMetadata{Name: "Gold", Symbol: "GLD", URI: "https://x.io/g.json"})
	if err != nil {
		t.Fatalf("error = %v", err)
	}

	if data[0] != 33 {
		t.Fatalf("discriminator = %d, want 33", data[0])
	}
	off := 1
	var name, symbol, uri string
	name, off = readBorshString(t, data, off)
	symbol, off = readBorshString(t, data, off)
	uri, off = readBorshString(t, data, off)
	if name != "Gold" || symbol != "GLD" || uri != "https://x.io/g.json" {
		t.Fatalf("decoded %q %q %q", name, symbol, uri)
	}

	if fee := binary.LittleEndian.Uint16(data[off:]); fee != 0 {
		t.Errorf("seller fee = %d, want 0", fee)
	}
	off += 2

	// creators, collection, uses = None; is_mutable = true; collection_details = None
	want := []byte{0, 0, 0, 1, 0}
	if got := data[off:]; string(got) != string(want) {
		t.Errorf("trailer = %v, want %v", got, want)
	}
}

func TestTokenMetadataValidate(t *testing.T) {
	valid := TokenMetadata{Name: "Gold", Symbol: "GLD", URI: "https://x.io"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid metadata rejected: %v", err)
	}

	bad := []TokenMetadata{
		{Name: "", Symbol: "GLD"},
		{Name: strings.Repeat("n", 33), Symbol: "GLD"},
		{Name: "Gold", Symbol: ""},
		{Name: "Gold", Symbol: "TOOLONGSYMB"},
		{Name: "Gold", Symbol: "GLD", URI: strings.Repeat("u", 201)},
	}
	for _, m := range bad {
		if err := m.Validate(); !werrors.Is(err, werrors.ErrInvalidInput) {
			t.Errorf("Validate(%+v) = %v, want INVALID_INPUT", m, err)
		}
	}
}

func TestFindMetadataAddressDeterministic(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	a, err := FindMetadataAddress(mint)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FindMetadataAddress(mint)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equals(b) {
		t.Error("PDA derivation is not deterministic")
	}
	if a.IsOnCurve() {
		t.Error("PDA must be off curve")
	}
}

func TestMetadataInstructions(t *testing.T) {
	payer := solana.NewWallet()
	w := &Wallet{privateKey: payer.PrivateKey}
	mint := solana.NewWallet().PublicKey()
	metadata, err := FindMetadataAddress(mint)
	if err != nil {
		t.Fatal(err)
	}
	req := AttachRequest{Payer: w, Mint: mint, Data: TokenMetadata{Name: "Gold", Symbol: "GLD"}}

	ixs, err := NewMetadataAttacher(nil).Instructions(req, metadata)
	if err != nil {
		t.Fatal(err)
	}
	if len(ixs) != 1 {
		t.Fatalf("len = %d, want 1", len(ixs))
	}
	if !ixs[0].ProgramID().Equals(TokenMetadataProgramID) {
		t.Errorf("program = %s", ixs[0].ProgramID())
	}
	accounts := ixs[0].Accounts()
	if !accounts[0].PublicKey.Equals(metadata) || !accounts[0].IsWritable {
		t.Errorf("metadata account meta wrong: %+v", accounts[0])
	}
	if !accounts[3].PublicKey.Equals(payer.PublicKey()) || !accounts[3].IsSigner {
		t.Errorf("payer account meta wrong: %+v", accounts[3])
	}
	if accounts[4].IsSigner {
		t.Error("update authority must not sign")
	}

}

func TestMetadataTransactionNeedsOnlyPayer(t *testing.T) {
	payer := solana.NewWallet()
	w := &Wallet{privateKey: payer.PrivateKey}
	mint := solana.NewWallet().PublicKey()
	metadata, err := FindMetadataAddress(mint)
	if err != nil {
		t.Fatal(err)
	}

	ixs, err := NewMetadataAttacher(nil).Instructions(AttachRequest{
		Payer: w,
		Mint:  mint,
		Data:  TokenMetadata{Name: "Gold", Symbol: "GLD"},
	}, metadata)
	if err != nil {
		t.Fatal(err)
	}
	for _, meta := range ixs[0].Accounts() {
		if meta.IsSigner && !meta.PublicKey.Equals(payer.PublicKey()) {
			t.Errorf("unexpected signer %s", meta.PublicKey)
		}
	}

	tx, err := solana.NewTransaction(ixs, solana.Hash{}, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Sign(w.signer); err != nil {
		t.Fatalf("signing with the payer alone failed: %v", err)
	}
}

// fundedPayer answers the rent and balance lookups Attach makes first.
func fundedPayer(fake *fakeRPC, balance uint64) {
	fake.handle("getMinimumBalanceForRentExemption", func(json.RawMessage) (any, string) {
		return 5_616_720, ""
	})
	fake.handle("getBalance", func(json.RawMessage) (any, string) {
		return balanceResult(balance), ""
	})
}

func TestAttachSubmitsSignedTransaction(t *testing.T) {
	fake := newFakeRPC(t)
	fundedPayer(fake, 1_000_000_000)
	fake.handle("getLatestBlockhash", func(json.RawMessage) (any, string) {
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"blockhash":            solana.HashFromBytes(make([]byte, 32)).String(),
				"lastValidBlockHeight": 100,
			},
		}, ""
	})
	sig := testSignature(9)
	fake.handle("sendTransaction", func(json.RawMessage) (any, string) {
		return sig.String(), ""
	})
	fake.handle("getSignatureStatuses", func(json.RawMessage) (any, string) {
		return map[string]any{
			"context": map[string]any{"slot": 2},
			"value": []any{map[string]any{
				"slot":               2,
				"confirmations":      1,
				"err":                nil,
				"confirmationStatus": "confirmed",
			}},
		}, ""
	})

	payer := solana.NewWallet()
	client := NewClient(fake.server.URL)
	attacher := NewMetadataAttacher(client)

	got, metadata, err := attacher.Attach(context.Background(), AttachRequest{
		Payer: &Wallet{privateKey: payer.PrivateKey},
		Mint:  solana.NewWallet().PublicKey(),
		Data:  TokenMetadata{Name: "Gold", Symbol: "GLD", URI: "https://x.io"},
	})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if got != sig {
		t.Errorf("signature = %s, want %s", got, sig)
	}
	if metadata.IsZero() {
		t.Error("metadata address should be derived")
	}
	if fake.count("sendTransaction") != 1 {
		t.Errorf("sendTransaction calls = %d", fake.count("sendTransaction"))
	}
}

func TestAttachReportsFailedTransaction(t *testing.T) {
	fake := newFakeRPC(t)
	fundedPayer(fake, 1_000_000_000)
	fake.handle("getLatestBlockhash", func(json.RawMessage) (any, string) {
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"blockhash":            solana.HashFromBytes(make([]byte, 32)).String(),
				"lastValidBlockHeight": 100,
			},
		}, ""
	})
	fake.handle("sendTransaction", func(json.RawMessage) (any, string) {
		return testSignature(3).String(), ""
	})
	fake.handle("getSignatureStatuses", func(json.RawMessage) (any, string) {
		return map[string]any{
			"context": map[string]any{"slot": 2},
			"value": []any{map[string]any{
				"slot":               2,
				"err":                map[string]any{"InstructionError": []any{1, map[string]any{"Custom": 5}}},
				"confirmationStatus": "processed",
			}},
		}, ""
	})

	client := NewClient(fake.server.URL)
	_, _, err := NewMetadataAttacher(client).Attach(context.Background(), AttachRequest{
		Payer: &Wallet{privateKey: solana.NewWallet().PrivateKey},
		Mint:  solana.NewWallet().PublicKey(),
		Data:  TokenMetadata{Name: "Gold", Symbol: "GLD"},
	})
	if !werrors.Is(err, werrors.ErrTxFailed) {
		t.Fatalf("expected TX_FAILED, got %v", err)
	}
}

func TestAttachRejectsUnderfundedPayer(t *testing.T) {
	fake := newFakeRPC(t)
	fundedPayer(fake, 1_000)

	client := NewClient(fake.server.URL)
	_, _, err := NewMetadataAttacher(client).Attach(context.Background(), AttachRequest{
		Payer: &Wallet{privateKey: solana.NewWallet().PrivateKey},
		Mint:  solana.NewWallet().PublicKey(),
		Data:  TokenMetadata{Name: "Gold", Symbol: "GLD"},
	})
	if !werrors.Is(err, werrors.ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if !strings.Contains(err.Error(), "0.005616720 SOL") {
		t.Errorf("error should name the rent: %v", err)
	}
	if fake.count("sendTransaction") != 0 {
		t.Error("nothing should be sent for an underfunded payer")
	}
}
