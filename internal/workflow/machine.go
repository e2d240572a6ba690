package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
	chain "github.com/lugondev/solmint/internal/solana"
	"github.com/lugondev/solmint/internal/ui"
)

// Wallet choices offered at the start step.
const (
	ChoiceNewWallet      = "Create a new wallet"
	ChoiceExistingWallet = "Use an existing wallet"
)

// DefaultURIPrefix pre-fills the metadata URI prompt.
const DefaultURIPrefix = "https://"

// WalletCreator generates a keypair and returns its public key and the
// generator's output, which includes the recovery seed phrase.
type WalletCreator interface {
	NewWallet(ctx context.Context) (pubkey, output string, err error)
}

// TokenTool creates and mints SPL tokens.
type TokenTool interface {
	CreateToken(ctx context.Context) (string, error)
	CreateAccount(ctx context.Context, token string) (string, error)
	Mint(ctx context.Context, token string, amount uint64, recipient string) error
}

// MetadataWriter attaches on-chain metadata to a mint.
type MetadataWriter interface {
	Attach(ctx context.Context, req chain.AttachRequest) (solana.Signature, solana.PublicKey, error)
}

// MachineConfig wires a Machine.
type MachineConfig struct {
	Prompter ui.Prompter
	Store    *Store
	Watcher  *Watcher
	Keygen   WalletCreator
	Tokens   TokenTool
	Metadata MetadataWriter

	// MinLamports is the deposit required before token creation.
	MinLamports uint64
	// MintAmount is the initial supply minted into the new token account.
	MintAmount uint64
	// KeypairPath is loaded as payer when the payer key prompt is left blank.
	KeypairPath string
}

// Machine drives one pass of the token wizard over a State.
type Machine struct {
	common.LoggerMixin

	cfg MachineConfig
}

// NewMachine creates a Machine.
func NewMachine(cfg MachineConfig) *Machine {
	return &Machine{
		LoggerMixin: common.NewLoggerMixin(),
		cfg:         cfg,
	}
}

// Run advances state as far as it can in one pass. A state at done starts
// over. On error the returned state keeps the last step reached, so a later
// run resumes there.
func (m *Machine) Run(ctx context.Context, state *State) (*State, error) {
	if state == nil || state.Step == StepDone {
		state = NewState()
	}
	m.GetLogger().Info("wizard pass", "step", state.Step)

	if state.Step == StepStart {
		if err := m.chooseWallet(ctx, state); err != nil {
			return state, err
		}
	}

	if state.Step == StepAwaitDeposit {
		if err := m.awaitDeposit(ctx, state); err != nil {
			return state, err
		}
	}

	if state.Step == StepCreateToken {
		if err := m.createToken(ctx, state); err != nil {
			return state, err
		}
	}

	return state, nil
}

func (m *Machine) chooseWallet(ctx context.Context, state *State) error {
	p := m.cfg.Prompter

	choice, err := p.Select("Create a new wallet or use an existing one?",
		[]string{ChoiceNewWallet, ChoiceExistingWallet}, ChoiceNewWallet)
	if err != nil {
		return err
	}

	var address string
	switch choice {
	case ChoiceNewWallet:
		spin := p.StartSpinner("Creating wallet...")
		var output string
		address, output, err = m.cfg.Keygen.NewWallet(ctx)
		if err != nil {
			spin.Fail("Wallet creation failed")
			return err
		}
		spin.Success("Wallet created")
		p.Print(strings.TrimRight(output, "\n"))
		p.Warn("Write down the seed phrase above. It is not stored anywhere else.")
		m.showDepositAddress(address)
	case ChoiceExistingWallet:
		address, err = p.Input("Public key of the existing wallet", "")
		if err != nil {
			return err
		}
	default:
		return werrors.InvalidInput("wallet choice", fmt.Errorf("unknown option %q", choice))
	}

	pubkey, err := chain.ParsePublicKey(address)
	if err != nil {
		return werrors.InvalidInput("wallet address", err)
	}
	return state.ChooseWallet(pubkey.String())
}

func (m *Machine) showDepositAddress(address string) {
	p := m.cfg.Prompter
	p.Info("Your new public key is: %s", address)
	if qr, err := ui.AddressQR(address); err == nil {
		p.Print(qr)
	} else {
		m.GetLogger().Warn("cannot render QR code", "error", err)
	}
	p.Info("Deposit at least %s SOL to this address to continue.", common.LamportsToSOL(m.cfg.MinLamports))
}

func (m *Machine) awaitDeposit(ctx context.Context, state *State) error {
	pubkey, err := chain.ParsePublicKey(state.PubkeyString())
	if err != nil {
		return werrors.InvalidInput("wallet address", err)
	}

	target := common.LamportsToSOL(m.cfg.MinLamports)
	spin := m.cfg.Prompter.StartSpinner(fmt.Sprintf("Waiting for a deposit of %s SOL to %s...", target, pubkey))
	m.cfg.Watcher.OnProgress(func(pp PollProgress) {
		spin.UpdateText(fmt.Sprintf("Balance of %s: %s SOL (need %s SOL)",
			pubkey, common.LamportsToSOL(pp.Lamports), target))
	})
	defer m.cfg.Watcher.OnProgress(nil)

	lamports, err := m.cfg.Watcher.Wait(ctx, pubkey, m.cfg.MinLamports)
	if err != nil {
		spin.Fail("Stopped waiting for the deposit")
		return err
	}
	spin.Success(fmt.Sprintf("Deposit received, balance %s SOL", common.LamportsToSOL(lamports)))

	if err := state.MarkFunded(); err != nil {
		return err
	}
	return m.cfg.Store.Save(ctx, state)
}

// tokenInput is everything the create_token step asks for up front.
type tokenInput struct {
	data     chain.TokenMetadata
	payer    *chain.Wallet
	metadata solana.PublicKey
}

func (m *Machine) promptToken() (*tokenInput, error) {
	p := m.cfg.Prompter
	in := &tokenInput{}

	name, err := p.Input("Token name", "")
	if err != nil {
		return nil, err
	}
	symbol, err := p.Input("Token symbol", "")
	if err != nil {
		return nil, err
	}
	uri, err := p.Input("Metadata URI (e.g. https://example.com/token.json)", DefaultURIPrefix)
	if err != nil {
		return nil, err
	}
	in.data = chain.TokenMetadata{
		Name:   strings.TrimSpace(name),
		Symbol: strings.TrimSpace(symbol),
		URI:    strings.TrimSpace(uri),
	}
	if err := in.data.Validate(); err != nil {
		return nil, err
	}

	secret, err := p.Secret("Payer private key (base58, blank to use the configured keypair)")
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(secret) != "":
		in.payer, err = chain.WalletFromBase58(secret)
		if err != nil {
			return nil, werrors.InvalidInput("payer private key", err)
		}
	case m.cfg.KeypairPath != "":
		in.payer, err = chain.WalletFromFile(m.cfg.KeypairPath)
		if err != nil {
			return nil, werrors.InvalidInput("payer keypair file", err)
		}
	}

	address, err := p.Input("Metadata account address (blank to derive it)", "")
	if err != nil {
		in.payer.Zero()
		return nil, err
	}
	if address = strings.TrimSpace(address); address != "" {
		in.metadata, err = chain.ParsePublicKey(address)
		if err != nil {
			in.payer.Zero()
			return nil, werrors.InvalidInput("metadata account address", err)
		}
	}
	return in, nil
}

func (m *Machine) createToken(ctx context.Context, state *State) error {
	p := m.cfg.Prompter
	p.Clear()

	in, err := m.promptToken()
	if err != nil {
		return err
	}
	defer in.payer.Zero()

	spin := p.StartSpinner("Creating token...")
	token, err := m.cfg.Tokens.CreateToken(ctx)
	if err != nil {
		spin.Fail("Token creation failed")
		return err
	}
	spin.Success(fmt.Sprintf("Token %s (%s) created: %s", in.data.Name, in.data.Symbol, token))

	spin = p.StartSpinner("Creating token account...")
	account, err := m.cfg.Tokens.CreateAccount(ctx, token)
	if err != nil {
		spin.Fail("Token account creation failed")
		return err
	}
	spin.Success(fmt.Sprintf("Token account created: %s", account))

	spin = p.StartSpinner("Minting tokens...")
	if err := m.cfg.Tokens.Mint(ctx, token, m.cfg.MintAmount, account); err != nil {
		spin.Fail("Minting failed")
		return err
	}
	spin.Success(fmt.Sprintf("Minted %d tokens to %s", m.cfg.MintAmount, account))

	if err := m.attachMetadata(ctx, in, token); err != nil {
		return err
	}

	if err := state.CompleteToken(TokenResult{
		Name:           in.data.Name,
		Symbol:         in.data.Symbol,
		TokenAddress:   token,
		AccountAddress: account,
	}); err != nil {
		return err
	}

	m.GetLogger().Info("token created", "token", token, "account", account, "symbol", in.data.Symbol)
	return p.Pause("")
}

func (m *Machine) attachMetadata(ctx context.Context, in *tokenInput, token string) error {
	p := m.cfg.Prompter
	if in.payer == nil {
		p.Warn("No payer key given; skipping on-chain metadata.")
		return nil
	}

	mint, err := chain.ParsePublicKey(token)
	if err != nil {
		return werrors.DecodeFailed("token address "+token, err)
	}

	spin := p.StartSpinner("Attaching token metadata...")
	sig, metadata, err := m.cfg.Metadata.Attach(ctx, chain.AttachRequest{
		Payer:    in.payer,
		Mint:     mint,
		Metadata: in.metadata,
		Data:     in.data,
	})
	if err != nil {
		spin.Fail("Metadata attachment failed")
		return err
	}
	spin.Success(fmt.Sprintf("Metadata account %s created (signature %s)", metadata, sig))
	return nil
}
