package curve

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCurveState(s *BondingCurveState) []byte {
	data := make([]byte, BondingCurveStateSize)
	binary.LittleEndian.PutUint64(data[0:8], s.Discriminator)
	binary.LittleEndian.PutUint64(data[8:16], s.VirtualTokenReserves)
	binary.LittleEndian.PutUint64(data[16:24], s.VirtualSolReserves)
	binary.LittleEndian.PutUint64(data[24:32], s.RealTokenReserves)
	binary.LittleEndian.PutUint64(data[32:40], s.RealSolReserves)
	binary.LittleEndian.PutUint64(data[40:48], s.TokenTotalSupply)
	if s.Complete {
		data[48] = 1
	}
	return data
}

func TestDecodeBondingCurveState(t *testing.T) {
	want := &BondingCurveState{
		Discriminator:        6966180631402821399,
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      0,
		TokenTotalSupply:     1_000_000_000_000_000,
		Complete:             false,
	}

	got, err := DecodeBondingCurveState(encodeCurveState(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = DecodeBondingCurveState(make([]byte, 24))
	assert.Error(t, err, "truncated blob must be rejected")
}

func TestGetBuyPriceZeroAndComplete(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
	}

	tokens, err := s.GetBuyPrice(0)
	require.NoError(t, err)
	assert.Zero(t, tokens)

	sol, err := s.GetSellPrice(0, 100)
	require.NoError(t, err)
	assert.Zero(t, sol)

	s.Complete = true
	_, err = s.GetBuyPrice(1_000_000)
	assert.ErrorIs(t, err, ErrCurveComplete)
	_, err = s.GetSellPrice(1_000_000, 100)
	assert.ErrorIs(t, err, ErrCurveComplete)
	_, err = s.GetBuyOutPrice(1_000_000, 100)
	assert.ErrorIs(t, err, ErrCurveComplete)
}

func TestGetSellPriceTruncatingFee(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1000,
		VirtualSolReserves:   1000,
		RealTokenReserves:    500,
	}

	// gross = 100*1000/1100 = 90 (truncated), fee = 90*100/10000 = 0
	sol, err := s.GetSellPrice(100, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), sol)
}

func TestGetBuyPriceClampsToRealReserves(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    1_000, // nearly sold out
	}

	tokens, err := s.GetBuyPrice(1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), tokens)
}

func TestGetMarketCapSOL(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1000,
		VirtualSolReserves:   1000,
		TokenTotalSupply:     1_000_000_000_000_000,
	}
	assert.Equal(t, uint64(1_000_000_000_000_000), s.GetMarketCapSOL())

	s.VirtualTokenReserves = 0
	assert.Zero(t, s.GetMarketCapSOL())
}

func TestGetBuyOutAndFinalMarketCap(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1_063_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    783_100_000_000_000,
		RealSolReserves:      282_000_000,
		TokenTotalSupply:     1_000_000_000_000_000,
	}

	buyOut, err := s.GetBuyOutPrice(s.RealTokenReserves, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(84_772_883_172), buyOut)

	finalCap, err := s.GetFinalMarketCapSOL(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(410_049_600_471), finalCap)
}

func TestGetFinalMarketCapZeroDenominator(t *testing.T) {
	s := &BondingCurveState{
		VirtualTokenReserves: 1000,
		VirtualSolReserves:   1000,
		RealTokenReserves:    1000 - 1,
		RealSolReserves:      0,
		TokenTotalSupply:     1_000_000,
	}
	// realTokenReserves == virtualTokenReserves leaves no virtual tokens
	s.RealTokenReserves = 1000
	finalCap, err := s.GetFinalMarketCapSOL(0)
	require.NoError(t, err)
	assert.Zero(t, finalCap)

	_, err = s.GetBuyOutPrice(s.RealTokenReserves, 0)
	assert.ErrorIs(t, err, ErrArithmetic)
}
