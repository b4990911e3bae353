// ==============================================
// File: internal/pumpfun/instructions_test.go
// ==============================================
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuyAccounts() BuyInstructionAccounts {
	return BuyInstructionAccounts{
		Global:                 solana.NewWallet().PublicKey(),
		FeeRecipient:           DefaultFeeRecipient,
		Mint:                   solana.NewWallet().PublicKey(),
		BondingCurve:           solana.NewWallet().PublicKey(),
		AssociatedBondingCurve: solana.NewWallet().PublicKey(),
		AssociatedUser:         solana.NewWallet().PublicKey(),
		User:                   solana.NewWallet().PublicKey(),
	}
}

func TestBuildBuyInstructionLayout(t *testing.T) {
	accounts := testBuyAccounts()
	ix := BuildBuyInstruction(accounts, 12345, 67890)

	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, BuyDiscriminator, data[:8])
	assert.Equal(t, uint64(12345), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(67890), binary.LittleEndian.Uint64(data[16:24]))

	metas := ix.Accounts()
	require.Len(t, metas, 12)
	assert.Equal(t, accounts.Global, metas[0].PublicKey)
	assert.Equal(t, accounts.FeeRecipient, metas[1].PublicKey)
	assert.Equal(t, accounts.User, metas[6].PublicKey)
	assert.True(t, metas[6].IsSigner)
	// Buy carries the rent sysvar where sell carries the ATA program.
	assert.Equal(t, solana.SysVarRentPubkey, metas[9].PublicKey)
	assert.Equal(t, EventAuthority, metas[10].PublicKey)
	assert.Equal(t, ProgramID, metas[11].PublicKey)
}

func TestBuildSellInstructionLayout(t *testing.T) {
	accounts := SellInstructionAccounts(testBuyAccounts())
	ix := BuildSellInstruction(accounts, 555, 444)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	assert.Equal(t, SellDiscriminator, data[:8])
	assert.Equal(t, uint64(555), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(444), binary.LittleEndian.Uint64(data[16:24]))

	metas := ix.Accounts()
	require.Len(t, metas, 12)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, metas[9].PublicKey)
}

func TestBuildCreateInstructionEncodesMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	bondingCurve, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	associated, err := DeriveAssociatedBondingCurve(bondingCurve, mint)
	require.NoError(t, err)
	global, err := DeriveGlobal()
	require.NoError(t, err)
	mintAuthority, err := DeriveMintAuthority()
	require.NoError(t, err)
	metadataAddr, err := DeriveMetadata(mint)
	require.NoError(t, err)

	user := solana.NewWallet().PublicKey()
	ix, err := BuildCreateInstruction(CreateInstructionAccounts{
		Mint:                   mint,
		MintAuthority:          mintAuthority,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associated,
		Global:                 global,
		Metadata:               metadataAddr,
		User:                   user,
	}, CreateTokenMetadata{Name: "Moon", Symbol: "MOON", URI: "https://example.com/m.json"})
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, CreateDiscriminator, data[:8])

	// Borsh string: u32 LE length then bytes, three in a row.
	offset := 8
	for _, want := range []string{"Moon", "MOON", "https://example.com/m.json"} {
		length := binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4
		assert.Equal(t, want, string(data[offset:offset+int(length)]))
		offset += int(length)
	}
	assert.Len(t, data, offset)

	metas := ix.Accounts()
	require.Len(t, metas, 14)
	assert.Equal(t, mint, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, user, metas[7].PublicKey)
	assert.True(t, metas[7].IsSigner)
}

func TestBuildCreateInstructionRejectsEmptyMetadata(t *testing.T) {
	_, err := BuildCreateInstruction(CreateInstructionAccounts{}, CreateTokenMetadata{Symbol: "X", URI: "u"})
	require.Error(t, err)
}

func TestPDADerivationIsDeterministic(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	a, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	b, err := DeriveBondingCurve(mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := DeriveBondingCurve(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	// Known mainnet address for the global PDA.
	global, err := DeriveGlobal()
	require.NoError(t, err)
	assert.Equal(t, "4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf", global.String())
}
