// ==============================================
// File: internal/pumpfun/accounts.go
// ==============================================
package pumpfun

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/BankkRoll/pumpfundler-SDK/internal/curve"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
)

// FetchGlobalParams fetches and decodes the protocol's global account. The
// result is a read-only snapshot; it is never mutated locally.
func FetchGlobalParams(ctx context.Context, client ledger.Client, logger *zap.Logger) (*curve.GlobalParams, error) {
	globalAddr, err := DeriveGlobal()
	if err != nil {
		return nil, fmt.Errorf("derive global account: %w", err)
	}

	data, err := client.FetchAccount(ctx, globalAddr)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, fmt.Errorf("global account %s: %w", globalAddr, curve.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("fetch global account: %w", err)
	}

	params, err := curve.DecodeGlobalParams(data)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetched global account",
		zap.String("address", globalAddr.String()),
		zap.Bool("initialized", params.Initialized),
		zap.String("fee_recipient", params.FeeRecipient.String()),
		zap.Uint64("fee_basis_points", params.FeeBasisPoints))

	return params, nil
}

// FetchBondingCurveState fetches and decodes a token's bonding curve
// account. Each call returns a fresh point-in-time snapshot; callers
// needing up-to-date prices must re-fetch rather than reuse old state.
func FetchBondingCurveState(ctx context.Context, client ledger.Client, mint solana.PublicKey, logger *zap.Logger) (*curve.BondingCurveState, error) {
	curveAddr, err := DeriveBondingCurve(mint)
	if err != nil {
		return nil, fmt.Errorf("derive bonding curve: %w", err)
	}

	data, err := client.FetchAccount(ctx, curveAddr)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, fmt.Errorf("bonding curve %s: %w", curveAddr, curve.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("fetch bonding curve %s: %w", curveAddr, err)
	}

	state, err := curve.DecodeBondingCurveState(data)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetched bonding curve state",
		zap.String("mint", mint.String()),
		zap.Uint64("virtual_token_reserves", state.VirtualTokenReserves),
		zap.Uint64("virtual_sol_reserves", state.VirtualSolReserves),
		zap.Bool("complete", state.Complete))

	return state, nil
}
