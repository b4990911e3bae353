// ==============================
// File: internal/curve/state.go
// ==============================
package curve

import (
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
)

// BondingCurveStateSize is the exact serialized size of a bonding curve
// account: 8-byte discriminator, five u64 reserves, one boolean byte.
const BondingCurveStateSize = 49

// BondingCurveState is a point-in-time snapshot of a token's bonding curve
// reserves, decoded from a freshly fetched account blob. It is an immutable
// value object: repeated price queries must re-fetch rather than reuse it.
type BondingCurveState struct {
	Discriminator        uint64
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
}

// DecodeBondingCurveState deserializes a raw bonding curve account blob.
func DecodeBondingCurveState(data []byte) (*BondingCurveState, error) {
	if len(data) < BondingCurveStateSize {
		return nil, fmt.Errorf("bonding curve data too short: %d bytes", len(data))
	}
	var s BondingCurveState
	if err := bin.NewBorshDecoder(data).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode bonding curve account: %w", err)
	}
	return &s, nil
}

// GetBuyPrice quotes how many tokens the given amount of lamports buys at
// the current reserves, clamped to what the curve can still sell. The +1
// rounding term biases the quote in the pool's favor and must be preserved
// exactly to agree with the on-chain program.
func (s *BondingCurveState) GetBuyPrice(amount uint64) (uint64, error) {
	if s.Complete {
		return 0, ErrCurveComplete
	}
	if amount == 0 {
		return 0, nil
	}

	vSol := new(big.Int).SetUint64(s.VirtualSolReserves)
	vTok := new(big.Int).SetUint64(s.VirtualTokenReserves)

	n := new(big.Int).Mul(vSol, vTok)
	i := new(big.Int).Add(vSol, new(big.Int).SetUint64(amount))
	r := new(big.Int).Div(n, i)
	r.Add(r, big.NewInt(1))
	out := new(big.Int).Sub(vTok, r)

	if out.Sign() < 0 {
		return 0, fmt.Errorf("%w: negative token amount", ErrArithmetic)
	}

	tokens := out.Uint64()
	if tokens < s.RealTokenReserves {
		return tokens, nil
	}
	return s.RealTokenReserves, nil
}

// GetSellPrice quotes the lamports received for selling amount tokens, net
// of the protocol fee. The fee uses truncating integer division: the fee
// always rounds down, the net proceeds up.
func (s *BondingCurveState) GetSellPrice(amount, feeBasisPoints uint64) (uint64, error) {
	if s.Complete {
		return 0, ErrCurveComplete
	}
	if amount == 0 {
		return 0, nil
	}

	vSol := new(big.Int).SetUint64(s.VirtualSolReserves)
	vTok := new(big.Int).SetUint64(s.VirtualTokenReserves)
	amt := new(big.Int).SetUint64(amount)

	// n = amount * vSol / (vTok + amount)
	n := new(big.Int).Mul(amt, vSol)
	n.Div(n, new(big.Int).Add(vTok, amt))

	// a = n * feeBasisPoints / 10000
	fee := new(big.Int).Mul(n, new(big.Int).SetUint64(feeBasisPoints))
	fee.Div(fee, big.NewInt(10_000))

	return new(big.Int).Sub(n, fee).Uint64(), nil
}

// GetMarketCapSOL reports the current market cap in lamports.
func (s *BondingCurveState) GetMarketCapSOL() uint64 {
	if s.VirtualTokenReserves == 0 {
		return 0
	}
	cap := new(big.Int).Mul(
		new(big.Int).SetUint64(s.TokenTotalSupply),
		new(big.Int).SetUint64(s.VirtualSolReserves),
	)
	cap.Div(cap, new(big.Int).SetUint64(s.VirtualTokenReserves))
	return cap.Uint64()
}

// GetFinalMarketCapSOL projects the market cap after a full buyout of the
// remaining real token reserves.
func (s *BondingCurveState) GetFinalMarketCapSOL(feeBasisPoints uint64) (uint64, error) {
	totalVirtualTokens := new(big.Int).Sub(
		new(big.Int).SetUint64(s.VirtualTokenReserves),
		new(big.Int).SetUint64(s.RealTokenReserves),
	)
	if totalVirtualTokens.Sign() == 0 {
		return 0, nil
	}

	buyOut, err := s.GetBuyOutPrice(s.RealTokenReserves, feeBasisPoints)
	if err != nil {
		return 0, err
	}

	totalVirtualValue := new(big.Int).Add(
		new(big.Int).SetUint64(s.VirtualSolReserves),
		new(big.Int).SetUint64(buyOut),
	)

	cap := new(big.Int).Mul(new(big.Int).SetUint64(s.TokenTotalSupply), totalVirtualValue)
	cap.Div(cap, totalVirtualTokens)
	return cap.Uint64(), nil
}

// GetBuyOutPrice quotes the lamports needed to purchase amount tokens off
// the curve, fee included. The floor against RealSolReserves compares a
// SOL-denominated reserve against a token amount; this mirrors the on-chain
// program's own accounting and is kept verbatim, not corrected.
func (s *BondingCurveState) GetBuyOutPrice(amount, feeBasisPoints uint64) (uint64, error) {
	if s.Complete {
		return 0, ErrCurveComplete
	}

	solTokens := amount
	if s.RealSolReserves > amount {
		solTokens = s.RealSolReserves
	}

	denom := new(big.Int).Sub(
		new(big.Int).SetUint64(s.VirtualTokenReserves),
		new(big.Int).SetUint64(solTokens),
	)
	if denom.Sign() <= 0 {
		return 0, fmt.Errorf("%w: buyout exceeds virtual token reserves", ErrArithmetic)
	}

	totalSellValue := new(big.Int).Mul(
		new(big.Int).SetUint64(solTokens),
		new(big.Int).SetUint64(s.VirtualSolReserves),
	)
	totalSellValue.Div(totalSellValue, denom)
	totalSellValue.Add(totalSellValue, big.NewInt(1))

	fee := new(big.Int).Mul(totalSellValue, new(big.Int).SetUint64(feeBasisPoints))
	fee.Div(fee, big.NewInt(10_000))

	return new(big.Int).Add(totalSellValue, fee).Uint64(), nil
}
