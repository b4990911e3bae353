// ================================
// File: internal/ledger/ledger.go
// ================================
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions carries submission options for signed transactions.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Client is the ledger boundary the SDK depends on: binary account reads,
// signed transaction submission, and signature confirmation. The pricing
// and bundling layers never talk to an RPC endpoint directly.
type Client interface {
	// FetchAccount reads the raw binary blob of an on-chain account.
	// Returns ErrAccountNotFound when the account does not exist.
	FetchAccount(ctx context.Context, address solana.PublicKey) ([]byte, error)
	// GetRecentBlockhash returns the latest blockhash for transaction assembly.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// SendTransaction submits a signed transaction.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SendTransactionWithOpts submits with explicit preflight options.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// ConfirmSignature blocks until the signature reaches the commitment
	// level, the context is cancelled, or the wait window expires.
	ConfirmSignature(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
	// GetBalance reads an account's lamport balance.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
}
