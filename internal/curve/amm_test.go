package curve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGlobals() *GlobalParams {
	return &GlobalParams{
		Initialized:                 true,
		InitialVirtualTokenReserves: 1_073_000_000_000_000,
		InitialVirtualSolReserves:   30_000_000_000,
		InitialRealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:            1_000_000_000_000_000,
		FeeBasisPoints:              100,
	}
}

func TestGetInitialBuyPrice(t *testing.T) {
	g := testGlobals()

	tokens, err := g.GetInitialBuyPrice(0)
	require.NoError(t, err)
	assert.Zero(t, tokens)

	tokens, err = g.GetInitialBuyPrice(1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(34_612_903_225_806), tokens)
}

func TestGetInitialBuyPriceClampsToRealReserves(t *testing.T) {
	g := testGlobals()

	// A spend large enough to exhaust the curve clamps to the initial real
	// token reserves instead of quoting more than the curve can sell.
	tokens, err := g.GetInitialBuyPrice(100_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, g.InitialRealTokenReserves, tokens)
}

// The SDK path (GetInitialBuyPrice) and the simulator path must agree
// bit-for-bit on the same trade.
func TestInitialBuyAgreesWithSimulator(t *testing.T) {
	g := testGlobals()
	const spend = uint64(1_000_000_000)

	tokens, err := g.GetInitialBuyPrice(spend)
	require.NoError(t, err)

	amm := NewAMMFromGlobal(g)
	sol, err := amm.GetBuyPrice(tokens)
	require.NoError(t, err)
	assert.Equal(t, spend, sol)
}

func TestAMMApplyBuyThenSellFavorsPool(t *testing.T) {
	amm := NewAMMFromGlobal(testGlobals())
	const amount = uint64(10_000_000_000_000)

	buy, err := amm.ApplyBuy(amount)
	require.NoError(t, err)
	assert.Equal(t, amount, buy.TokenAmount)
	assert.Equal(t, uint64(282_220_132), buy.SolAmount)

	sell, err := amm.ApplySell(amount)
	require.NoError(t, err)
	assert.Equal(t, amount, sell.TokenAmount)

	// Rounding always favors the pool, never the trader.
	assert.LessOrEqual(t, sell.SolAmount, buy.SolAmount)
	assert.Equal(t, uint64(282_220_131), sell.SolAmount)
}

func TestAMMApplyBuyClampsToRealReserves(t *testing.T) {
	g := testGlobals()
	amm := NewAMMFromGlobal(g)

	buy, err := amm.ApplyBuy(g.InitialRealTokenReserves + 1)
	require.NoError(t, err)
	assert.Equal(t, g.InitialRealTokenReserves, buy.TokenAmount)
	assert.Zero(t, amm.RealTokenReserves)
}

func TestAMMGetBuyPriceGuardsUnderflow(t *testing.T) {
	amm := NewAMMFromGlobal(testGlobals())

	_, err := amm.GetBuyPrice(amm.VirtualTokenReserves)
	assert.ErrorIs(t, err, ErrArithmetic)
	_, err = amm.GetBuyPrice(amm.VirtualTokenReserves + 1)
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestAMMConstantProductDriftBounded(t *testing.T) {
	amm := NewAMMFromGlobal(testGlobals())

	startTokenReserves := amm.VirtualTokenReserves
	before := new(big.Int).Mul(
		new(big.Int).SetUint64(amm.VirtualSolReserves),
		new(big.Int).SetUint64(amm.VirtualTokenReserves),
	)

	const ops = 8
	for i := 0; i < ops; i++ {
		_, err := amm.ApplyBuy(1_000_000_000_000)
		require.NoError(t, err)
	}

	after := new(big.Int).Mul(
		new(big.Int).SetUint64(amm.VirtualSolReserves),
		new(big.Int).SetUint64(amm.VirtualTokenReserves),
	)

	drift := new(big.Int).Abs(new(big.Int).Sub(after, before))

	// Each op contributes at most one +1 lamport of bias, worth at most the
	// current virtual token reserves in product terms.
	bound := new(big.Int).Mul(
		new(big.Int).SetUint64(startTokenReserves),
		big.NewInt(ops),
	)
	assert.True(t, drift.Cmp(bound) <= 0,
		"constant-product drift %s exceeds bound %s", drift, bound)
}

func TestAMMSellClampsToRealSolReserves(t *testing.T) {
	// Seed from a live snapshot with almost no real sol left.
	s := &BondingCurveState{
		VirtualTokenReserves: 1_063_000_000_000_000,
		VirtualSolReserves:   30_300_000_000,
		RealTokenReserves:    783_100_000_000_000,
		RealSolReserves:      5,
	}
	amm := NewAMMFromState(s, 1_073_000_000_000_000)

	sell, err := amm.ApplySell(1_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sell.SolAmount)
	assert.Zero(t, amm.RealSolReserves)
}
