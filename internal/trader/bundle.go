// ================================
// File: internal/trader/bundle.go
// ================================
package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BankkRoll/pumpfundler-SDK/internal/curve"
	"github.com/BankkRoll/pumpfundler-SDK/internal/events"
	"github.com/BankkRoll/pumpfundler-SDK/internal/fees"
	"github.com/BankkRoll/pumpfundler-SDK/internal/jito"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
	"github.com/BankkRoll/pumpfundler-SDK/internal/pumpfun"
	"github.com/BankkRoll/pumpfundler-SDK/internal/wallet"
)

// BuyerSpec pairs a buyer wallet with its nominal spend. The actual spend
// is randomized per buyer before pricing.
type BuyerSpec struct {
	Wallet    *wallet.Wallet
	SolAmount uint64
}

// CreateAndBuy creates the token and executes the initial buys. The
// creation transaction is built and signed exactly once; the same bytes go
// out whether the flow submits relay bundles or falls back to direct RPC
// sends. Buyer transactions are priced against the initial curve snapshot
// and built in parallel.
func (t *Trader) CreateAndBuy(ctx context.Context, creator, mint *wallet.Wallet, metadata pumpfun.CreateTokenMetadata, buyers []BuyerSpec) (*TransactionOutcome, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	globals, err := pumpfun.FetchGlobalParams(ctx, t.client, t.logger)
	if err != nil {
		return nil, err
	}
	t.observeGlobals(globals)
	blockhash, err := t.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get recent blockhash: %w", err)
	}

	createTx, err := t.buildCreateTransaction(creator, mint, metadata, blockhash)
	if err != nil {
		return nil, err
	}

	buyTxs, err := t.buildBuyerTransactions(globals, mint.PublicKey, buyers, blockhash)
	if err != nil {
		return nil, err
	}

	var outcome *TransactionOutcome
	if t.submitter != nil {
		outcome, err = t.submitBundled(ctx, creator, createTx, buyTxs, blockhash)
	} else {
		outcome, err = t.submitDirect(ctx, createTx, buyTxs)
	}
	if err != nil {
		return nil, err
	}

	t.publishTokenCreated(creator, mint.PublicKey, metadata, createTx)
	return outcome, nil
}

func (t *Trader) buildCreateTransaction(creator, mint *wallet.Wallet, metadata pumpfun.CreateTokenMetadata, blockhash solana.Hash) (*solana.Transaction, error) {
	mintAuthority, err := pumpfun.DeriveMintAuthority()
	if err != nil {
		return nil, err
	}
	global, err := pumpfun.DeriveGlobal()
	if err != nil {
		return nil, err
	}
	bondingCurve, err := pumpfun.DeriveBondingCurve(mint.PublicKey)
	if err != nil {
		return nil, err
	}
	associatedBondingCurve, err := pumpfun.DeriveAssociatedBondingCurve(bondingCurve, mint.PublicKey)
	if err != nil {
		return nil, err
	}
	metadataAccount, err := pumpfun.DeriveMetadata(mint.PublicKey)
	if err != nil {
		return nil, err
	}

	createIx, err := pumpfun.BuildCreateInstruction(pumpfun.CreateInstructionAccounts{
		Mint:                   mint.PublicKey,
		MintAuthority:          mintAuthority,
		BondingCurve:           bondingCurve,
		AssociatedBondingCurve: associatedBondingCurve,
		Global:                 global,
		Metadata:               metadataAccount,
		User:                   creator.PublicKey,
	}, metadata)
	if err != nil {
		return nil, err
	}

	instructions := fees.PriorityInstructions(t.opts.ComputeUnitLimit, t.opts.ComputeUnitPrice)
	instructions = append(instructions, createIx)
	if t.fees != nil {
		size, sizeErr := estimateTransactionSize(instructions, blockhash, creator.PublicKey)
		if sizeErr != nil {
			return nil, sizeErr
		}
		instructions = t.fees.PrependFeeTransfer(creator.PublicKey, size, instructions)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(creator.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if err := signWith(tx, creator, mint); err != nil {
		return nil, err
	}
	return tx, nil
}

// buildBuyerTransactions prices and builds every buyer's transaction
// against the same immutable initial reserves. Randomized amounts are
// drawn up front because the randomness source is not safe for concurrent
// use.
func (t *Trader) buildBuyerTransactions(globals *curve.GlobalParams, mint solana.PublicKey, buyers []BuyerSpec, blockhash solana.Hash) ([]*solana.Transaction, error) {
	if len(buyers) == 0 {
		return nil, nil
	}

	feeRecipient := globals.FeeRecipient
	amounts := make([]uint64, len(buyers))
	for i, spec := range buyers {
		amounts[i] = t.builder.RandomizeBuyAmount(spec.SolAmount)
	}

	txs := make([]*solana.Transaction, len(buyers))
	g := new(errgroup.Group)
	for i, spec := range buyers {
		i, spec := i, spec
		g.Go(func() error {
			tokenAmount, err := globals.GetInitialBuyPrice(amounts[i])
			if err != nil {
				return err
			}
			maxSolCost := fees.CalculateWithSlippageBuy(amounts[i], t.opts.SlippageBP)

			instructions, err := t.buyInstructions(spec.Wallet, mint, feeRecipient, tokenAmount, maxSolCost)
			if err != nil {
				return err
			}

			tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(spec.Wallet.PublicKey))
			if err != nil {
				return fmt.Errorf("create buy transaction: %w", err)
			}
			if err := spec.Wallet.SignTransaction(tx); err != nil {
				return fmt.Errorf("sign buy transaction: %w", err)
			}
			txs[i] = tx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return txs, nil
}

// submitBundled sends the creation and buy transactions as relay bundles.
// Each chunk carries its own tip transaction and must land; one rejected
// chunk fails the whole flow after retries are exhausted.
//
// The creation transaction additionally goes out over plain RPC with the
// same signed bytes. The two submissions are redundant on purpose: either
// landing creates the token, and the duplicate is rejected as already
// processed.
func (t *Trader) submitBundled(ctx context.Context, creator *wallet.Wallet, createTx *solana.Transaction, buyTxs []*solana.Transaction, blockhash solana.Hash) (*TransactionOutcome, error) {
	if _, err := t.client.SendTransactionWithOpts(ctx, createTx, ledger.TransactionOptions{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	}); err != nil {
		// The bundle still carries the creation; a failed direct send is
		// not fatal on its own.
		t.logger.Warn("Direct send of creation transaction failed", zap.Error(err))
	}

	payload := append([]*solana.Transaction{createTx}, buyTxs...)
	chunks := t.builder.Chunk(payload)

	bundleIDs := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		tipTx, err := t.buildTipTransaction(creator, blockhash)
		if err != nil {
			return nil, err
		}
		group := append(append([]*solana.Transaction{}, chunk...), tipTx)
		t.publishBundleSubmitted(len(group))

		var outcome *jito.Outcome
		err = t.retry.Run(ctx, fmt.Sprintf("bundle chunk %d", i), func() error {
			result, submitErr := t.submitter.SubmitAndWait(ctx, group)
			if submitErr != nil {
				t.publishBundleFailed(result, submitErr)
				return submitErr
			}
			outcome = result
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("bundle chunk %d of %d failed: %w", i+1, len(chunks), err)
		}

		t.logger.Info("Bundle chunk landed",
			zap.Int("chunk", i+1),
			zap.Int("chunks", len(chunks)),
			zap.String("bundle_id", outcome.BundleID),
			zap.Uint64("slot", outcome.Slot))
		t.publishBundleLanded(outcome, len(group))
		bundleIDs = append(bundleIDs, outcome.BundleID)
	}

	return &TransactionOutcome{
		Success:   true,
		Signature: createTx.Signatures[0],
		BundleIDs: bundleIDs,
	}, nil
}

// submitDirect sends the already-signed transactions over plain RPC, the
// creation first, in order.
func (t *Trader) submitDirect(ctx context.Context, createTx *solana.Transaction, buyTxs []*solana.Transaction) (*TransactionOutcome, error) {
	all := append([]*solana.Transaction{createTx}, buyTxs...)
	for i, tx := range all {
		tx := tx
		err := t.retry.Run(ctx, fmt.Sprintf("direct send %d", i), func() error {
			sig, sendErr := t.client.SendTransactionWithOpts(ctx, tx, ledger.TransactionOptions{
				SkipPreflight:       true,
				PreflightCommitment: rpc.CommitmentProcessed,
			})
			if sendErr != nil {
				return fmt.Errorf("send transaction: %w", sendErr)
			}
			if confirmErr := t.client.ConfirmSignature(ctx, sig, t.opts.Commitment); confirmErr != nil {
				return fmt.Errorf("confirmation failed: %w", confirmErr)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return &TransactionOutcome{
		Success:   true,
		Signature: createTx.Signatures[0],
	}, nil
}

func (t *Trader) buildTipTransaction(creator *wallet.Wallet, blockhash solana.Hash) (*solana.Transaction, error) {
	tipIx := jito.BuildTipInstruction(creator.PublicKey, t.builder.TipAccount(), t.opts.TipLamports)
	tx, err := solana.NewTransaction([]solana.Instruction{tipIx}, blockhash, solana.TransactionPayer(creator.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("create tip transaction: %w", err)
	}
	if err := creator.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("sign tip transaction: %w", err)
	}
	return tx, nil
}

// estimateTransactionSize measures the serialized size of a draft built
// from the payload, before the fee transfer is prepended.
func estimateTransactionSize(instructions []solana.Instruction, blockhash solana.Hash, payer solana.PublicKey) (uint64, error) {
	draft, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return 0, fmt.Errorf("build draft transaction: %w", err)
	}
	raw, err := draft.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("serialize draft transaction: %w", err)
	}
	return uint64(len(raw)), nil
}

// signWith signs tx resolving signers across multiple wallets, used for
// the creation transaction where both the creator and the mint sign.
func signWith(tx *solana.Transaction, wallets ...*wallet.Wallet) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, w := range wallets {
			if key.Equals(w.PublicKey) {
				return &w.PrivateKey
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

func (t *Trader) publishTokenCreated(creator *wallet.Wallet, mint solana.PublicKey, metadata pumpfun.CreateTokenMetadata, createTx *solana.Transaction) {
	if t.bus == nil {
		return
	}
	bondingCurve, _ := pumpfun.DeriveBondingCurve(mint)
	_ = t.bus.Publish(events.TokenCreatedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.TokenCreated, EventTime: time.Now()},
		Mint:         mint,
		BondingCurve: bondingCurve,
		Creator:      creator.PublicKey,
		Name:         metadata.Name,
		Symbol:       metadata.Symbol,
		URI:          metadata.URI,
		Signature:    createTx.Signatures[0],
	})
}

func (t *Trader) publishBundleSubmitted(transactions int) {
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(events.BundleSubmittedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.BundleSubmitted, EventTime: time.Now()},
		Transactions: transactions,
	})
}

func (t *Trader) publishBundleLanded(outcome *jito.Outcome, transactions int) {
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(events.BundleLandedEvent{
		BaseEvent: events.BaseEvent{EventType: events.BundleLanded, EventTime: time.Now()},
		BundleID:  outcome.BundleID,
		Slot:      outcome.Slot,
	})
}

func (t *Trader) publishBundleFailed(outcome *jito.Outcome, err error) {
	if t.bus == nil {
		return
	}
	bundleID := ""
	if outcome != nil {
		bundleID = outcome.BundleID
	}
	_ = t.bus.Publish(events.BundleFailedEvent{
		BaseEvent: events.BaseEvent{EventType: events.BundleFailed, EventTime: time.Now()},
		BundleID:  bundleID,
		Error:     err,
	})
}
