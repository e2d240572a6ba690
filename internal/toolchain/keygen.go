package toolchain

import (
	"context"
)

const pubkeyMarker = "pubkey"

// Keygen wraps solana-keygen.
type Keygen struct {
	runner  *Runner
	binary  string
	outfile string
}

// KeygenOption configures a Keygen.
type KeygenOption func(*Keygen)

// WithKeygenBinary overrides the solana-keygen binary.
func WithKeygenBinary(binary string) KeygenOption {
	return func(k *Keygen) {
		if binary != "" {
			k.binary = binary
		}
	}
}

// WithOutfile writes the new keypair to path instead of the tool's default.
func WithOutfile(path string) KeygenOption {
	return func(k *Keygen) {
		k.outfile = path
	}
}

// NewKeygen creates a Keygen using runner.
func NewKeygen(runner *Runner, opts ...KeygenOption) *Keygen {
	k := &Keygen{runner: runner, binary: "solana-keygen"}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewWallet generates a keypair and returns its public key together with the
// tool's full output, which holds the recovery seed phrase. The output is
// meant for the user only and is never logged.
func (k *Keygen) NewWallet(ctx context.Context) (pubkey, output string, err error) {
	args := []string{"new", "--no-bip39-passphrase"}
	if k.outfile != "" {
		args = append(args, "--outfile", k.outfile)
	}

	result, err := k.runner.Run(ctx, k.binary, args...)
	if err != nil {
		return "", "", err
	}
	pubkey, err = FieldAfterMarker(result.Stdout, pubkeyMarker, -1)
	if err != nil {
		return "", "", err
	}
	return pubkey, result.Stdout, nil
}
