// ===============================
// File: internal/curve/global.go
// ===============================
package curve

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// GlobalParams mirrors the pump.fun global account: protocol-wide constants
// fetched once per operation and never mutated locally.
//
// Binary layout (little-endian, no padding):
//
//	u64 discriminator | bool initialized | 32B authority | 32B feeRecipient |
//	u64 initialVirtualTokenReserves | u64 initialVirtualSolReserves |
//	u64 initialRealTokenReserves | u64 tokenTotalSupply | u64 feeBasisPoints
type GlobalParams struct {
	Discriminator               uint64
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// DecodeGlobalParams deserializes a raw global account blob.
func DecodeGlobalParams(data []byte) (*GlobalParams, error) {
	var g GlobalParams
	if err := bin.NewBorshDecoder(data).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode global account: %w", err)
	}
	if g.FeeBasisPoints > 10_000 {
		return nil, fmt.Errorf("global account fee basis points out of range: %d", g.FeeBasisPoints)
	}
	return &g, nil
}

// GetInitialBuyPrice quotes how many tokens solAmount lamports buys against
// the protocol's initial reserves, before the token's own curve exists
// on-chain. The arithmetic must match the on-chain program bit-for-bit:
// truncating division plus a deliberate +1 so the protocol never
// under-charges.
func (g *GlobalParams) GetInitialBuyPrice(solAmount uint64) (uint64, error) {
	if solAmount == 0 {
		return 0, nil
	}

	vSol := new(big.Int).SetUint64(g.InitialVirtualSolReserves)
	vTok := new(big.Int).SetUint64(g.InitialVirtualTokenReserves)

	// n = x*y, i = x + amount, r = n/i + 1, s = y - r
	n := new(big.Int).Mul(vSol, vTok)
	i := new(big.Int).Add(vSol, new(big.Int).SetUint64(solAmount))
	r := new(big.Int).Div(n, i)
	r.Add(r, big.NewInt(1))
	s := new(big.Int).Sub(vTok, r)

	if s.Sign() < 0 {
		return 0, fmt.Errorf("%w: negative token amount", ErrArithmetic)
	}
	if !s.IsUint64() {
		return 0, fmt.Errorf("%w: token amount overflow", ErrArithmetic)
	}

	tokens := s.Uint64()
	if tokens < g.InitialRealTokenReserves {
		return tokens, nil
	}
	return g.InitialRealTokenReserves, nil
}
