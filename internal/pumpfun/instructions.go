// ==============================================
// File: internal/pumpfun/instructions.go
// ==============================================
package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BuyInstructionAccounts lists the accounts a buy instruction touches.
type BuyInstructionAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
}

// SellInstructionAccounts lists the accounts a sell instruction touches.
type SellInstructionAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
}

// CreateInstructionAccounts lists the accounts a create instruction touches.
type CreateInstructionAccounts struct {
	Mint                   solana.PublicKey
	MintAuthority          solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	Global                 solana.PublicKey
	Metadata               solana.PublicKey
	User                   solana.PublicKey
}

// BuildBuyInstruction builds a buy for tokenAmount tokens, spending at most
// maxSolCost lamports. The account list order is fixed by the program.
func BuildBuyInstruction(accounts BuyInstructionAccounts, tokenAmount, maxSolCost uint64) solana.Instruction {
	data := make([]byte, 0, 24)
	data = append(data, BuyDiscriminator...)
	data = appendU64(data, tokenAmount)
	data = appendU64(data, maxSolCost)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, metas, data)
}

// BuildSellInstruction builds a sell of tokenAmount tokens, accepting no
// less than minSolOutput lamports.
func BuildSellInstruction(accounts SellInstructionAccounts, tokenAmount, minSolOutput uint64) solana.Instruction {
	data := make([]byte, 0, 24)
	data = append(data, SellDiscriminator...)
	data = appendU64(data, tokenAmount)
	data = appendU64(data, minSolOutput)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, metas, data)
}

// BuildCreateInstruction builds the token launch instruction. Metadata
// strings are borsh-encoded: u32 little-endian length then UTF-8 bytes.
func BuildCreateInstruction(accounts CreateInstructionAccounts, metadata CreateTokenMetadata) (solana.Instruction, error) {
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("invalid token metadata: %w", err)
	}

	data := make([]byte, 0, 8+12+len(metadata.Name)+len(metadata.Symbol)+len(metadata.URI))
	data = append(data, CreateDiscriminator...)
	data = appendBorshString(data, metadata.Name)
	data = appendBorshString(data, metadata.Symbol)
	data = appendBorshString(data, metadata.URI)

	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Mint, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.MintAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: MetadataProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SPLAssociatedTokenAccountProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, metas, data), nil
}

func appendU64(data []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(data, buf[:]...)
}

func appendBorshString(data []byte, s string) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	data = append(data, buf[:]...)
	return append(data, s...)
}
