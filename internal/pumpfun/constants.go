// ==============================================
// File: internal/pumpfun/constants.go
// ==============================================
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Known pump.fun protocol addresses.
var (
	// ProgramID is the pump.fun bonding-curve program.
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// EventAuthority is the program's event authority PDA.
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")

	// DefaultFeeRecipient is the protocol fee account all fee-transfer
	// instructions target on mainnet. Injectable for tests.
	DefaultFeeRecipient = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	// MetadataProgramID is the Metaplex token metadata program.
	MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// PDA seeds.
const (
	seedGlobal        = "global"
	seedBondingCurve  = "bonding-curve"
	seedMintAuthority = "mint-authority"
	seedMetadata      = "metadata"
)

// Anchor instruction discriminators, little-endian.
var (
	CreateDiscriminator = leDiscriminator(8576854823835016728)
	BuyDiscriminator    = leDiscriminator(16927863322537952870)
	SellDiscriminator   = leDiscriminator(12502976635542562355)
)

func leDiscriminator(value uint64) []byte {
	d := make([]byte, 8)
	binary.LittleEndian.PutUint64(d, value)
	return d
}

// DeriveGlobal returns the protocol's global account PDA.
func DeriveGlobal() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedGlobal)},
		ProgramID,
	)
	return addr, err
}

// DeriveBondingCurve returns the bonding curve PDA for a mint.
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedBondingCurve), mint.Bytes()},
		ProgramID,
	)
	return addr, err
}

// DeriveAssociatedBondingCurve returns the curve's token account for a mint.
func DeriveAssociatedBondingCurve(bondingCurve, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	return addr, err
}

// DeriveMintAuthority returns the program's mint authority PDA.
func DeriveMintAuthority() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedMintAuthority)},
		ProgramID,
	)
	return addr, err
}

// DeriveMetadata returns the Metaplex metadata PDA for a mint.
func DeriveMetadata(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(seedMetadata), MetadataProgramID.Bytes(), mint.Bytes()},
		MetadataProgramID,
	)
	return addr, err
}
