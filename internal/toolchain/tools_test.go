package toolchain

import (
	"context"
	"slices"
	"strings"
	"testing"

	werrors "github.com/lugondev/solmint/internal/errors"
)

func TestKeygenNewWallet(t *testing.T) {
	calls := setHelperCommand(t, "keygen")
	k := NewKeygen(NewRunner(nil), WithKeygenBinary("/opt/solana/bin/solana-keygen"), WithOutfile("/tmp/id.json"))

	pubkey, output, err := k.NewWallet(context.Background())
	if err != nil {
		t.Fatalf("NewWallet returned error: %v", err)
	}
	if pubkey != "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin" {
		t.Errorf("pubkey = %q", pubkey)
	}
	if !strings.Contains(output, "Save this seed phrase") || !strings.Contains(output, "word word word") {
		t.Errorf("output should keep the seed phrase:\n%s", output)
	}

	want := []string{"/opt/solana/bin/solana-keygen", "new", "--no-bip39-passphrase", "--outfile", "/tmp/id.json"}
	if len(*calls) != 1 || !slices.Equal((*calls)[0], want) {
		t.Errorf("calls = %v, want %v", *calls, want)
	}
}

func TestKeygenDefaultArgs(t *testing.T) {
	calls := setHelperCommand(t, "keygen")
	if _, _, err := NewKeygen(NewRunner(nil)).NewWallet(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"solana-keygen", "new", "--no-bip39-passphrase"}
	if !slices.Equal((*calls)[0], want) {
		t.Errorf("args = %v, want %v", (*calls)[0], want)
	}
}

func TestTokenCLICreateToken(t *testing.T) {
	calls := setHelperCommand(t, "create-token")
	cli := NewTokenCLI(NewRunner(nil), "")

	token, err := cli.CreateToken(context.Background())
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}
	if token != tokenAddr {
		t.Errorf("token = %q, want %q", token, tokenAddr)
	}
	if !slices.Equal((*calls)[0], []string{"spl-token", "create-token"}) {
		t.Errorf("args = %v", (*calls)[0])
	}
}

func TestTokenCLICreateAccount(t *testing.T) {
	calls := setHelperCommand(t, "create-account")
	cli := NewTokenCLI(NewRunner(nil), "spl-token")

	account, err := cli.CreateAccount(context.Background(), tokenAddr)
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if account != "7UX2i7SucgLMQcfZ75s3VXmZZY4YRUyJN9X1RgfMoDUi" {
		t.Errorf("account = %q", account)
	}
	if !slices.Equal((*calls)[0], []string{"spl-token", "create-account", tokenAddr}) {
		t.Errorf("args = %v", (*calls)[0])
	}
}

func TestTokenCLICreateAccountRequiresToken(t *testing.T) {
	cli := NewTokenCLI(NewRunner(nil), "")
	if _, err := cli.CreateAccount(context.Background(), " "); !werrors.Is(err, werrors.ErrInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestTokenCLIMint(t *testing.T) {
	calls := setHelperCommand(t, "mint")
	cli := NewTokenCLI(NewRunner(nil), "")

	if err := cli.Mint(context.Background(), tokenAddr, 1_000_000, "7UX2i7SucgLMQcfZ75s3VXmZZY4YRUyJN9X1RgfMoDUi"); err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	want := []string{"spl-token", "mint", tokenAddr, "1000000", "7UX2i7SucgLMQcfZ75s3VXmZZY4YRUyJN9X1RgfMoDUi"}
	if !slices.Equal((*calls)[0], want) {
		t.Errorf("args = %v, want %v", (*calls)[0], want)
	}
}

func TestTokenCLIMissingMarker(t *testing.T) {
	setHelperCommand(t, "no-marker")
	cli := NewTokenCLI(NewRunner(nil), "")

	token, err := cli.CreateToken(context.Background())
	if !werrors.Is(err, werrors.ErrMarkerNotFound) {
		t.Fatalf("expected MARKER_NOT_FOUND, got %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty", token)
	}
}

func TestTokenCLICommandFailure(t *testing.T) {
	setHelperCommand(t, "failure")
	cli := NewTokenCLI(NewRunner(nil), "")

	if _, err := cli.CreateAccount(context.Background(), tokenAddr); !werrors.Is(err, werrors.ErrCommandFailed) {
		t.Fatalf("expected COMMAND_FAILED, got %v", err)
	}
}

func TestTokenCLIWithKeypair(t *testing.T) {
	const keypair = "/home/me/.config/solana/wizard.json"
	const account = "7UX2i7SucgLMQcfZ75s3VXmZZY4YRUyJN9X1RgfMoDUi"
	cli := NewTokenCLI(NewRunner(nil), "", WithKeypair(keypair))

	tests := []struct {
		mode string
		run  func() error
		want []string
	}{
		{
			mode: "create-token",
			run:  func() error { _, err := cli.CreateToken(context.Background()); return err },
			want: []string{"spl-token", "create-token", "--fee-payer", keypair, "--mint-authority", keypair},
		},
		{
			mode: "create-account",
			run:  func() error { _, err := cli.CreateAccount(context.Background(), tokenAddr); return err },
			want: []string{"spl-token", "create-account", tokenAddr, "--fee-payer", keypair, "--owner", keypair},
		},
		{
			mode: "mint",
			run:  func() error { return cli.Mint(context.Background(), tokenAddr, 5, account) },
			want: []string{"spl-token", "mint", tokenAddr, "5", account, "--fee-payer", keypair, "--mint-authority", keypair},
		},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			calls := setHelperCommand(t, tt.mode)
			if err := tt.run(); err != nil {
				t.Fatalf("%s returned error: %v", tt.mode, err)
			}
			if !slices.Equal((*calls)[0], tt.want) {
				t.Errorf("args = %v, want %v", (*calls)[0], tt.want)
			}
		})
	}
}
