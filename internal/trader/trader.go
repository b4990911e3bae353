// ================================
// File: internal/trader/trader.go
// ================================
package trader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/BankkRoll/pumpfundler-SDK/internal/curve"
	"github.com/BankkRoll/pumpfundler-SDK/internal/events"
	"github.com/BankkRoll/pumpfundler-SDK/internal/fees"
	"github.com/BankkRoll/pumpfundler-SDK/internal/jito"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
	"github.com/BankkRoll/pumpfundler-SDK/internal/pumpfun"
	"github.com/BankkRoll/pumpfundler-SDK/internal/wallet"
)

// Options carries the trading parameters shared by all flows.
type Options struct {
	TipLamports      uint64
	SlippageBP       uint64
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
	Commitment       rpc.CommitmentType
}

// TransactionOutcome reports the result of one trading flow.
type TransactionOutcome struct {
	Success    bool
	Signature  solana.Signature
	BundleIDs  []string
	TokensOut  uint64
	LamportsIn uint64
}

// Trader drives buy, sell and create-and-buy flows against the bonding
// curve program.
type Trader struct {
	client    ledger.Client
	submitter jito.Submitter
	builder   *jito.Builder
	fees      *fees.Calculator
	bus       *events.Bus
	retry     *RetryDriver
	logger    *zap.Logger
	opts      Options

	mu          sync.Mutex
	lastGlobals *curve.GlobalParams
}

// New creates a Trader. submitter may be nil, in which case CreateAndBuy
// uses direct RPC sends instead of relay bundles. fees and bus are
// optional.
func New(client ledger.Client, submitter jito.Submitter, feeCalc *fees.Calculator, bus *events.Bus, retry *RetryDriver, logger *zap.Logger, opts Options) *Trader {
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	return &Trader{
		client:    client,
		submitter: submitter,
		builder:   jito.NewBuilder(),
		fees:      feeCalc,
		bus:       bus,
		retry:     retry,
		logger:    logger.Named("trader"),
		opts:      opts,
	}
}

// Buy purchases tokens with solAmount lamports. The token amount is priced
// off a fresh bonding curve snapshot and the spend is bounded by the
// configured slippage.
func (t *Trader) Buy(ctx context.Context, w *wallet.Wallet, mint solana.PublicKey, solAmount uint64) (*TransactionOutcome, error) {
	globals, err := pumpfun.FetchGlobalParams(ctx, t.client, t.logger)
	if err != nil {
		return nil, err
	}
	t.observeGlobals(globals)
	state, err := pumpfun.FetchBondingCurveState(ctx, t.client, mint, t.logger)
	if err != nil {
		return nil, err
	}

	tokenAmount, err := state.GetBuyPrice(solAmount)
	if err != nil {
		return nil, err
	}
	maxSolCost := fees.CalculateWithSlippageBuy(solAmount, t.opts.SlippageBP)

	instructions, err := t.buyInstructions(w, mint, globals.FeeRecipient, tokenAmount, maxSolCost)
	if err != nil {
		return nil, err
	}

	sig, err := t.sendAndConfirm(ctx, w, instructions, "buy")
	if err != nil {
		return nil, err
	}

	t.publishTrade(mint, w.PublicKey, true, solAmount, tokenAmount, sig)

	return &TransactionOutcome{
		Success:    true,
		Signature:  sig,
		TokensOut:  tokenAmount,
		LamportsIn: solAmount,
	}, nil
}

// Sell sells tokenAmount tokens, requiring at least the slippage-bounded
// SOL output.
func (t *Trader) Sell(ctx context.Context, w *wallet.Wallet, mint solana.PublicKey, tokenAmount uint64) (*TransactionOutcome, error) {
	globals, err := pumpfun.FetchGlobalParams(ctx, t.client, t.logger)
	if err != nil {
		return nil, err
	}
	t.observeGlobals(globals)
	state, err := pumpfun.FetchBondingCurveState(ctx, t.client, mint, t.logger)
	if err != nil {
		return nil, err
	}

	solOutput, err := state.GetSellPrice(tokenAmount, globals.FeeBasisPoints)
	if err != nil {
		return nil, err
	}
	minSolOutput := fees.CalculateWithSlippageSell(solOutput, t.opts.SlippageBP)

	t.logger.Info("Calculated sell parameters",
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("virtual_token_reserves", state.VirtualTokenReserves),
		zap.Uint64("virtual_sol_reserves", state.VirtualSolReserves),
		zap.Uint64("min_sol_output_lamports", minSolOutput))

	instructions, err := t.sellInstructions(w, mint, globals.FeeRecipient, tokenAmount, minSolOutput)
	if err != nil {
		return nil, err
	}

	sig, err := t.sendAndConfirm(ctx, w, instructions, "sell")
	if err != nil {
		return nil, err
	}

	t.publishTrade(mint, w.PublicKey, false, solOutput, tokenAmount, sig)

	return &TransactionOutcome{
		Success:    true,
		Signature:  sig,
		LamportsIn: solOutput,
	}, nil
}

func (t *Trader) buyInstructions(w *wallet.Wallet, mint, feeRecipient solana.PublicKey, tokenAmount, maxSolCost uint64) ([]solana.Instruction, error) {
	accounts, userATA, err := t.tradeAccounts(w, mint, feeRecipient)
	if err != nil {
		return nil, err
	}

	instructions := t.baseInstructions(w, mint)
	instructions = append(instructions, pumpfun.BuildBuyInstruction(pumpfun.BuyInstructionAccounts{
		Global:                 accounts.global,
		FeeRecipient:           feeRecipient,
		Mint:                   mint,
		BondingCurve:           accounts.bondingCurve,
		AssociatedBondingCurve: accounts.associatedBondingCurve,
		AssociatedUser:         userATA,
		User:                   w.PublicKey,
	}, tokenAmount, maxSolCost))
	return instructions, nil
}

func (t *Trader) sellInstructions(w *wallet.Wallet, mint, feeRecipient solana.PublicKey, tokenAmount, minSolOutput uint64) ([]solana.Instruction, error) {
	accounts, userATA, err := t.tradeAccounts(w, mint, feeRecipient)
	if err != nil {
		return nil, err
	}

	instructions := t.baseInstructions(w, mint)
	instructions = append(instructions, pumpfun.BuildSellInstruction(pumpfun.SellInstructionAccounts{
		Global:                 accounts.global,
		FeeRecipient:           feeRecipient,
		Mint:                   mint,
		BondingCurve:           accounts.bondingCurve,
		AssociatedBondingCurve: accounts.associatedBondingCurve,
		AssociatedUser:         userATA,
		User:                   w.PublicKey,
	}, tokenAmount, minSolOutput))
	return instructions, nil
}

type tradeAccounts struct {
	global                 solana.PublicKey
	bondingCurve           solana.PublicKey
	associatedBondingCurve solana.PublicKey
}

func (t *Trader) tradeAccounts(w *wallet.Wallet, mint, feeRecipient solana.PublicKey) (tradeAccounts, solana.PublicKey, error) {
	global, err := pumpfun.DeriveGlobal()
	if err != nil {
		return tradeAccounts{}, solana.PublicKey{}, err
	}
	bondingCurve, err := pumpfun.DeriveBondingCurve(mint)
	if err != nil {
		return tradeAccounts{}, solana.PublicKey{}, err
	}
	associatedBondingCurve, err := pumpfun.DeriveAssociatedBondingCurve(bondingCurve, mint)
	if err != nil {
		return tradeAccounts{}, solana.PublicKey{}, err
	}
	userATA, err := w.GetATA(mint)
	if err != nil {
		return tradeAccounts{}, solana.PublicKey{}, err
	}
	return tradeAccounts{
		global:                 global,
		bondingCurve:           bondingCurve,
		associatedBondingCurve: associatedBondingCurve,
	}, userATA, nil
}

// baseInstructions returns the priority-fee and idempotent ATA-create
// instructions every trade starts with.
func (t *Trader) baseInstructions(w *wallet.Wallet, mint solana.PublicKey) []solana.Instruction {
	instructions := fees.PriorityInstructions(t.opts.ComputeUnitLimit, t.opts.ComputeUnitPrice)
	instructions = append(instructions,
		w.CreateAssociatedTokenAccountIdempotentInstruction(w.PublicKey, w.PublicKey, mint))
	return instructions
}

// sendAndConfirm builds, signs, sends and confirms a transaction under the
// retry driver. The transaction is rebuilt each attempt so a stale
// blockhash cannot wedge the retry loop.
func (t *Trader) sendAndConfirm(ctx context.Context, w *wallet.Wallet, instructions []solana.Instruction, operation string) (solana.Signature, error) {
	var sig solana.Signature
	err := t.retry.Run(ctx, operation, func() error {
		blockhash, err := t.client.GetRecentBlockhash(ctx)
		if err != nil {
			return fmt.Errorf("get recent blockhash: %w", err)
		}

		tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(w.PublicKey))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create transaction: %w", err))
		}
		if err := w.SignTransaction(tx); err != nil {
			return backoff.Permanent(fmt.Errorf("sign transaction: %w", err))
		}

		sent, err := t.client.SendTransactionWithOpts(ctx, tx, ledger.TransactionOptions{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentProcessed,
		})
		if err != nil {
			return fmt.Errorf("send transaction: %w", err)
		}

		if err := t.client.ConfirmSignature(ctx, sent, t.opts.Commitment); err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		sig = sent
		return nil
	})
	if err != nil {
		return solana.Signature{}, err
	}

	t.logger.Info("Transaction confirmed",
		zap.String("operation", operation),
		zap.String("signature", sig.String()))
	return sig, nil
}

// observeGlobals compares a freshly fetched global snapshot against the
// last one seen and publishes a ParamsUpdated event when the trading
// parameters differ. The first observation is recorded silently.
func (t *Trader) observeGlobals(globals *curve.GlobalParams) {
	t.mu.Lock()
	prev := t.lastGlobals
	t.lastGlobals = globals
	t.mu.Unlock()

	if prev == nil || t.bus == nil {
		return
	}
	if prev.FeeRecipient == globals.FeeRecipient &&
		prev.InitialVirtualSolReserves == globals.InitialVirtualSolReserves &&
		prev.InitialVirtualTokenReserves == globals.InitialVirtualTokenReserves &&
		prev.FeeBasisPoints == globals.FeeBasisPoints {
		return
	}
	_ = t.bus.Publish(events.ParamsUpdatedEvent{
		BaseEvent:                   events.BaseEvent{EventType: events.ParamsUpdated, EventTime: time.Now()},
		FeeRecipient:                globals.FeeRecipient,
		InitialVirtualSolReserves:   globals.InitialVirtualSolReserves,
		InitialVirtualTokenReserves: globals.InitialVirtualTokenReserves,
		FeeBasisPoints:              globals.FeeBasisPoints,
	})
}

func (t *Trader) publishTrade(mint, user solana.PublicKey, isBuy bool, solAmount, tokenAmount uint64, sig solana.Signature) {
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(events.TradeExecutedEvent{
		BaseEvent:   events.BaseEvent{EventType: events.TradeExecuted, EventTime: time.Now()},
		Mint:        mint,
		User:        user,
		IsBuy:       isBuy,
		SolAmount:   solAmount,
		TokenAmount: tokenAmount,
		Signature:   sig,
	})
}

// CurveProgress reports how much of the tradable supply remains and the
// curve's current market cap, for monitoring flows built on top of the
// trader.
func (t *Trader) CurveProgress(ctx context.Context, mint solana.PublicKey) (remaining uint64, marketCap uint64, err error) {
	state, err := pumpfun.FetchBondingCurveState(ctx, t.client, mint, t.logger)
	if err != nil {
		return 0, 0, err
	}
	if state.Complete {
		return 0, state.GetMarketCapSOL(), curve.ErrCurveComplete
	}
	return state.RealTokenReserves, state.GetMarketCapSOL(), nil
}
