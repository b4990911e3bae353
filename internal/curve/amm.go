// ============================
// File: internal/curve/amm.go
// ============================
package curve

import (
	"fmt"
	"math/big"
)

// BuyResult describes what a simulated buy actually executed after
// clamping against the remaining real token reserves.
type BuyResult struct {
	TokenAmount uint64
	SolAmount   uint64
}

// SellResult describes what a simulated sell actually executed.
type SellResult struct {
	TokenAmount uint64
	SolAmount   uint64
}

// AMM is a purely computational constant-product reserve model used to
// simulate a sequence of trades off-chain. It is mutated in place by
// ApplyBuy/ApplySell and must be owned exclusively by a single caller:
// never share one instance across concurrent simulations.
//
// initialVirtualTokenReserves is the launch-time scaling constant, fixed at
// construction. Sell quotes scale by it rather than the current virtual
// token reserves to stay consistent with on-chain accounting.
type AMM struct {
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	RealSolReserves      uint64
	RealTokenReserves    uint64

	initialVirtualTokenReserves uint64
}

// NewAMMFromGlobal seeds a simulator for a token that does not yet exist
// on-chain, from protocol-wide initial reserves.
func NewAMMFromGlobal(g *GlobalParams) *AMM {
	return &AMM{
		VirtualSolReserves:          g.InitialVirtualSolReserves,
		VirtualTokenReserves:        g.InitialVirtualTokenReserves,
		RealSolReserves:             0,
		RealTokenReserves:           g.InitialRealTokenReserves,
		initialVirtualTokenReserves: g.InitialVirtualTokenReserves,
	}
}

// NewAMMFromState seeds a simulator from a live curve snapshot. The launch
// scaling constant cannot be recovered from the snapshot and is supplied by
// the caller, usually from GlobalParams.
func NewAMMFromState(s *BondingCurveState, initialVirtualTokenReserves uint64) *AMM {
	return &AMM{
		VirtualSolReserves:          s.VirtualSolReserves,
		VirtualTokenReserves:        s.VirtualTokenReserves,
		RealSolReserves:             s.RealSolReserves,
		RealTokenReserves:           s.RealTokenReserves,
		initialVirtualTokenReserves: initialVirtualTokenReserves,
	}
}

// GetBuyPrice quotes the lamports needed to take tokens off the curve at
// the current reserves, without mutating them.
func (a *AMM) GetBuyPrice(tokens uint64) (uint64, error) {
	if tokens == 0 {
		return 0, nil
	}
	if tokens >= a.VirtualTokenReserves {
		return 0, fmt.Errorf("%w: buy of %d tokens drains virtual reserves of %d",
			ErrArithmetic, tokens, a.VirtualTokenReserves)
	}

	product := new(big.Int).Mul(
		new(big.Int).SetUint64(a.VirtualSolReserves),
		new(big.Int).SetUint64(a.VirtualTokenReserves),
	)
	newVirtualTokenReserves := new(big.Int).SetUint64(a.VirtualTokenReserves - tokens)

	newVirtualSolReserves := new(big.Int).Div(product, newVirtualTokenReserves)
	newVirtualSolReserves.Add(newVirtualSolReserves, big.NewInt(1))

	needed := new(big.Int).Sub(newVirtualSolReserves, new(big.Int).SetUint64(a.VirtualSolReserves))
	if needed.Sign() < 0 {
		return 0, nil
	}
	if !needed.IsUint64() {
		return 0, fmt.Errorf("%w: sol amount overflow", ErrArithmetic)
	}
	return needed.Uint64(), nil
}

// ApplyBuy executes a buy against the simulator, clamping the requested
// amount to the remaining real token reserves, and advances the reserves.
func (a *AMM) ApplyBuy(tokenAmount uint64) (BuyResult, error) {
	finalAmount := tokenAmount
	if finalAmount > a.RealTokenReserves {
		finalAmount = a.RealTokenReserves
	}

	solAmount, err := a.GetBuyPrice(finalAmount)
	if err != nil {
		return BuyResult{}, err
	}

	a.VirtualTokenReserves -= finalAmount
	a.RealTokenReserves -= finalAmount
	a.VirtualSolReserves += solAmount
	a.RealSolReserves += solAmount

	return BuyResult{TokenAmount: finalAmount, SolAmount: solAmount}, nil
}

// GetSellPrice quotes the lamports received for selling tokens at the
// current reserves, clamped to the real sol reserves.
func (a *AMM) GetSellPrice(tokens uint64) (uint64, error) {
	if tokens == 0 {
		return 0, nil
	}
	if a.VirtualTokenReserves == 0 || a.initialVirtualTokenReserves == 0 {
		return 0, fmt.Errorf("%w: zero virtual token reserves", ErrArithmetic)
	}

	scalingFactor := new(big.Int).SetUint64(a.initialVirtualTokenReserves)

	proportion := new(big.Int).Mul(new(big.Int).SetUint64(tokens), scalingFactor)
	proportion.Div(proportion, new(big.Int).SetUint64(a.VirtualTokenReserves))

	solReceived := new(big.Int).Mul(new(big.Int).SetUint64(a.VirtualSolReserves), proportion)
	solReceived.Div(solReceived, scalingFactor)

	sol := solReceived.Uint64()
	if sol > a.RealSolReserves {
		sol = a.RealSolReserves
	}
	return sol, nil
}

// ApplySell executes a sell against the simulator. The token reserves are
// incremented before pricing: the quote is computed against the
// post-increment virtual token reserves, matching on-chain ordering.
func (a *AMM) ApplySell(tokenAmount uint64) (SellResult, error) {
	a.VirtualTokenReserves += tokenAmount
	a.RealTokenReserves += tokenAmount

	solAmount, err := a.GetSellPrice(tokenAmount)
	if err != nil {
		// Roll the increment back so a failed quote cannot corrupt state.
		a.VirtualTokenReserves -= tokenAmount
		a.RealTokenReserves -= tokenAmount
		return SellResult{}, err
	}

	a.VirtualSolReserves -= solAmount
	a.RealSolReserves -= solAmount

	return SellResult{TokenAmount: tokenAmount, SolAmount: solAmount}, nil
}
