package solana

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
)

// TokenMetadataProgramID is the Metaplex Token Metadata program.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzbb6a8bt518x1s")

const (
	// MetadataAccountLen is the maximum size of a Metaplex metadata account.
	MetadataAccountLen = 679

	// createMetadataAccountV3 instruction discriminator.
	createMetadataAccountV3 uint8 = 33

	maxNameLen   = 32
	maxSymbolLen = 10
	maxURILen    = 200
)

// TokenMetadata is the descriptive data attached to a mint.
type TokenMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// Validate enforces the program's length limits before anything is signed.
func (m TokenMetadata) Validate() error {
	switch {
	case m.Name == "":
		return werrors.InvalidInput("token name", fmt.Errorf("empty"))
	case len(m.Name) > maxNameLen:
		return werrors.InvalidInput("token name", fmt.Errorf("longer than %d bytes", maxNameLen))
	case m.Symbol == "":
		return werrors.InvalidInput("token symbol", fmt.Errorf("empty"))
	case len(m.Symbol) > maxSymbolLen:
		return werrors.InvalidInput("token symbol", fmt.Errorf("longer than %d bytes", maxSymbolLen))
	case len(m.URI) > maxURILen:
		return werrors.InvalidInput("metadata uri", fmt.Errorf("longer than %d bytes", maxURILen))
	case !utf8.ValidString(m.Name + m.Symbol + m.URI):
		return werrors.InvalidInput("token metadata", fmt.Errorf("not valid utf-8"))
	}
	return nil
}

// FindMetadataAddress derives the metadata PDA for mint.
func FindMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		TokenMetadataProgramID[:],
		mint[:],
	}, TokenMetadataProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return addr, nil
}

// EncodeCreateMetadataV3 Borsh-encodes CreateMetadataAccountV3 args: DataV2
// with zero royalties and no creators, collection or uses, is_mutable=true,
// no collection details.
func EncodeCreateMetadataV3(m TokenMetadata) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	steps := []func() error{
		func() error { return enc.WriteUint8(createMetadataAccountV3) },
		func() error { return enc.WriteString(m.Name) },
		func() error { return enc.WriteString(m.Symbol) },
		func() error { return enc.WriteString(m.URI) },
		func() error { return enc.WriteUint16(0, bin.LE) }, // seller_fee_basis_points
		func() error { return enc.WriteBool(false) },       // creators
		func() error { return enc.WriteBool(false) },       // collection
		func() error { return enc.WriteBool(false) },       // uses
		func() error { return enc.WriteBool(true) },        // is_mutable
		func() error { return enc.WriteBool(false) },       // collection_details
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// NewCreateMetadataV3Instruction builds the Token Metadata instruction. The
// update authority is recorded but does not sign.
func NewCreateMetadataV3Instruction(
	metadata, mint, mintAuthority, payer, updateAuthority solana.PublicKey,
	m TokenMetadata,
) (solana.Instruction, error) {
	data, err := EncodeCreateMetadataV3(m)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(metadata).WRITE(),
		solana.Meta(mint),
		solana.Meta(mintAuthority).SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(updateAuthority),
		solana.Meta(solana.SystemProgramID),
		// Optional rent sysvar left out: the program id stands in for it.
		solana.Meta(TokenMetadataProgramID),
	}
	return solana.NewInstruction(TokenMetadataProgramID, accounts, data), nil
}

// AttachRequest describes one metadata attachment.
type AttachRequest struct {
	// Payer funds the accounts and is also mint and update authority.
	Payer *Wallet
	Mint  solana.PublicKey
	// Metadata is the metadata account. Zero derives the PDA.
	Metadata solana.PublicKey
	Data     TokenMetadata
}

// MetadataAttacher creates on-chain metadata for a mint. The Token Metadata
// program allocates the metadata account itself, so the payer is the only
// signer.
type MetadataAttacher struct {
	common.LoggerMixin

	client *Client
}

// NewMetadataAttacher creates an attacher.
func NewMetadataAttacher(client *Client) *MetadataAttacher {
	return &MetadataAttacher{
		LoggerMixin: common.NewLoggerMixin(),
		client:      client,
	}
}

// Instructions assembles the instruction list for metadata.
func (a *MetadataAttacher) Instructions(req AttachRequest, metadata solana.PublicKey) ([]solana.Instruction, error) {
	payer := req.Payer.PublicKey()

	ix, err := NewCreateMetadataV3Instruction(metadata, req.Mint, payer, payer, payer, req.Data)
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{ix}, nil
}

// Attach builds, signs and submits the metadata transaction and waits for
// confirmation.
func (a *MetadataAttacher) Attach(ctx context.Context, req AttachRequest) (solana.Signature, solana.PublicKey, error) {
	if req.Payer == nil {
		return solana.Signature{}, solana.PublicKey{}, werrors.InvalidInput("payer key", fmt.Errorf("missing"))
	}
	if err := req.Data.Validate(); err != nil {
		return solana.Signature{}, solana.PublicKey{}, err
	}

	metadata := req.Metadata
	if metadata.IsZero() {
		derived, err := FindMetadataAddress(req.Mint)
		if err != nil {
			return solana.Signature{}, solana.PublicKey{}, err
		}
		metadata = derived
	}

	if err := a.checkPayerFunds(ctx, req.Payer.PublicKey()); err != nil {
		return solana.Signature{}, metadata, err
	}

	instructions, err := a.Instructions(req, metadata)
	if err != nil {
		return solana.Signature{}, metadata, err
	}

	blockhash, err := a.client.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, metadata, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(req.Payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, metadata, fmt.Errorf("failed to create transaction: %w", err)
	}
	if _, err := tx.Sign(req.Payer.signer); err != nil {
		return solana.Signature{}, metadata, fmt.Errorf("failed to sign transaction: %w", err)
	}

	a.GetLogger().Info("attaching token metadata",
		"mint", req.Mint.String(),
		"metadata", metadata.String(),
	)
	sig, err := a.client.SendAndConfirm(ctx, tx)
	if err != nil {
		return sig, metadata, err
	}
	return sig, metadata, nil
}

// checkPayerFunds fails before signing when the payer cannot cover the rent
// of the metadata account the program allocates.
func (a *MetadataAttacher) checkPayerFunds(ctx context.Context, payer solana.PublicKey) error {
	rent, err := a.client.GetMinimumBalanceForRentExemption(ctx, MetadataAccountLen)
	if err != nil {
		return err
	}
	balance, err := a.client.GetBalance(ctx, payer)
	if err != nil {
		return err
	}
	if balance < rent {
		return werrors.InvalidInput("payer key", fmt.Errorf("balance %s SOL is below the %s SOL rent of the metadata account",
			common.LamportsToSOL(balance), common.LamportsToSOL(rent)))
	}
	return nil
}
