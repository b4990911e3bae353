// ===========================================
// File: internal/pumpfun/accounts_test.go
// ===========================================
package pumpfun

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BankkRoll/pumpfundler-SDK/internal/curve"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
)

// emptyLedger backs no accounts at all.
type emptyLedger struct{}

func (emptyLedger) FetchAccount(context.Context, solana.PublicKey) ([]byte, error) {
	return nil, ledger.ErrAccountNotFound
}

func (emptyLedger) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func (emptyLedger) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (emptyLedger) SendTransactionWithOpts(context.Context, *solana.Transaction, ledger.TransactionOptions) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (emptyLedger) ConfirmSignature(context.Context, solana.Signature, rpc.CommitmentType) error {
	return nil
}

func (emptyLedger) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 0, nil
}

func TestFetchGlobalParamsMissingAccount(t *testing.T) {
	_, err := FetchGlobalParams(context.Background(), emptyLedger{}, zap.NewNop())
	require.ErrorIs(t, err, curve.ErrAccountNotFound)
}

func TestFetchBondingCurveStateMissingAccount(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	_, err := FetchBondingCurveState(context.Background(), emptyLedger{}, mint, zap.NewNop())
	require.ErrorIs(t, err, curve.ErrAccountNotFound)
}
