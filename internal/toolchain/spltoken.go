package toolchain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	werrors "github.com/lugondev/solmint/internal/errors"
)

const (
	createTokenMarker   = "Creating token"
	createAccountMarker = "Creating account"

	// "Creating token <address>" and "Creating account <address>"
	addressField = 2
)

// TokenCLI wraps spl-token.
type TokenCLI struct {
	runner  *Runner
	binary  string
	keypair string
}

// TokenCLIOption configures a TokenCLI.
type TokenCLIOption func(*TokenCLI)

// WithKeypair makes the keypair at path the fee payer, mint authority and
// token account owner instead of the spl-token default keypair.
func WithKeypair(path string) TokenCLIOption {
	return func(t *TokenCLI) {
		t.keypair = path
	}
}

// NewTokenCLI creates a TokenCLI. An empty binary uses "spl-token".
func NewTokenCLI(runner *Runner, binary string, opts ...TokenCLIOption) *TokenCLI {
	if binary == "" {
		binary = "spl-token"
	}
	t := &TokenCLI{runner: runner, binary: binary}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// withSigner appends the keypair flags, if a keypair is configured.
func (t *TokenCLI) withSigner(args []string, role string) []string {
	if t.keypair == "" {
		return args
	}
	return append(args, "--fee-payer", t.keypair, role, t.keypair)
}

// CreateToken creates a new mint and returns its address.
func (t *TokenCLI) CreateToken(ctx context.Context) (string, error) {
	result, err := t.runner.Run(ctx, t.binary, t.withSigner([]string{"create-token"}, "--mint-authority")...)
	if err != nil {
		return "", err
	}
	return FieldAfterMarker(result.Stdout, createTokenMarker, addressField)
}

// CreateAccount creates a token account for token and returns its address.
func (t *TokenCLI) CreateAccount(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", werrors.InvalidInput("token address", fmt.Errorf("empty"))
	}
	result, err := t.runner.Run(ctx, t.binary, t.withSigner([]string{"create-account", token}, "--owner")...)
	if err != nil {
		return "", err
	}
	return FieldAfterMarker(result.Stdout, createAccountMarker, addressField)
}

// Mint mints amount units of token into recipient. Nothing is parsed from
// the output; a zero exit status is success.
func (t *TokenCLI) Mint(ctx context.Context, token string, amount uint64, recipient string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(recipient) == "" {
		return werrors.InvalidInput("mint arguments", fmt.Errorf("token and recipient are required"))
	}
	_, err := t.runner.Run(ctx, t.binary,
		t.withSigner([]string{"mint", token, strconv.FormatUint(amount, 10), recipient}, "--mint-authority")...)
	return err
}
