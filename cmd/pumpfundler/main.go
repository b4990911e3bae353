// ============================
// File: cmd/pumpfundler/main.go
// ============================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/BankkRoll/pumpfundler-SDK/internal/config"
	"github.com/BankkRoll/pumpfundler-SDK/internal/events"
	"github.com/BankkRoll/pumpfundler-SDK/internal/fees"
	"github.com/BankkRoll/pumpfundler-SDK/internal/jito"
	"github.com/BankkRoll/pumpfundler-SDK/internal/ledger"
	"github.com/BankkRoll/pumpfundler-SDK/internal/logger"
	"github.com/BankkRoll/pumpfundler-SDK/internal/pumpfun"
	"github.com/BankkRoll/pumpfundler-SDK/internal/trader"
	"github.com/BankkRoll/pumpfundler-SDK/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	command := flag.String("cmd", "", "command: create, buy or sell")
	mintArg := flag.String("mint", "", "token mint address (buy/sell)")
	amount := flag.Uint64("amount", 0, "lamports to spend (buy) or tokens to sell")
	name := flag.String("name", "", "token name (create)")
	symbol := flag.String("symbol", "", "token symbol (create)")
	uri := flag.String("uri", "", "token metadata URI (create)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, *command, *mintArg, *amount, *name, *symbol, *uri); err != nil {
		log.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, command, mintArg string, amount uint64, name, symbol, uri string) error {
	key := os.Getenv("PUMPFUNDLER_PRIVATE_KEY")
	if key == "" {
		return fmt.Errorf("PUMPFUNDLER_PRIVATE_KEY is not set")
	}
	w, err := wallet.New(key)
	if err != nil {
		return err
	}

	client := ledger.NewRPCClient(cfg.RPCURL, log.Logger)
	relay := jito.NewClient(cfg.RelayURL, cfg.BundleWait(), log.Logger)
	bus := events.NewBus(log.Logger, 64)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var feeCalc *fees.Calculator
	if cfg.FeeRate > 0 {
		recipient := pumpfun.DefaultFeeRecipient
		if cfg.FeeRecipient != "" {
			recipient, err = solana.PublicKeyFromBase58(cfg.FeeRecipient)
			if err != nil {
				return fmt.Errorf("parse fee_recipient: %w", err)
			}
		}
		feeCalc = fees.NewCalculator(cfg.FeeRate, recipient)
	}

	retry := trader.NewRetryDriver(trader.RetryPolicy{}, log.Logger)
	t := trader.New(client, relay, feeCalc, bus, retry, log.Logger, trader.Options{
		TipLamports:      cfg.TipLamports,
		SlippageBP:       cfg.SlippageBP,
		ComputeUnitLimit: cfg.ComputeUnitLimit,
		ComputeUnitPrice: cfg.ComputeUnitPrice,
		Commitment:       rpc.CommitmentType(cfg.Commitment),
	})

	switch command {
	case "create":
		mint, err := wallet.NewRandom()
		if err != nil {
			return err
		}
		metadata := pumpfun.CreateTokenMetadata{Name: name, Symbol: symbol, URI: uri}
		var buyers []trader.BuyerSpec
		if amount > 0 {
			buyers = append(buyers, trader.BuyerSpec{Wallet: w, SolAmount: amount})
		}
		outcome, err := t.CreateAndBuy(ctx, w, mint, metadata, buyers)
		if err != nil {
			return err
		}
		log.Info("Token created",
			zap.String("mint", mint.String()),
			zap.String("signature", outcome.Signature.String()),
			zap.Strings("bundles", outcome.BundleIDs))
		return nil

	case "buy", "sell":
		mint, err := solana.PublicKeyFromBase58(mintArg)
		if err != nil {
			return fmt.Errorf("parse mint: %w", err)
		}
		var outcome *trader.TransactionOutcome
		if command == "buy" {
			outcome, err = t.Buy(ctx, w, mint, amount)
		} else {
			outcome, err = t.Sell(ctx, w, mint, amount)
		}
		if err != nil {
			return err
		}
		log.Info("Trade complete",
			zap.String("signature", outcome.Signature.String()),
			zap.Uint64("tokens", outcome.TokensOut),
			zap.Uint64("lamports", outcome.LamportsIn))
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
