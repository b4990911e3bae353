// ==============================
// File: internal/jito/client.go
// ==============================
package jito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

var (
	// ErrBundleRejected marks an explicit relay rejection. The top-level
	// retry policy decides whether to resubmit.
	ErrBundleRejected = errors.New("bundle rejected by relay")

	// ErrBundleTimeout marks a wait window that expired with no landed
	// transactions. Treated identically to rejection by callers.
	ErrBundleTimeout = errors.New("bundle confirmation timeout")
)

// Outcome reports what happened to one submitted bundle.
type Outcome struct {
	Accepted bool
	BundleID string
	Slot     uint64
	Status   string
}

// Submitter pushes a transaction group through the relay and blocks for its
// accept/reject signal.
type Submitter interface {
	SubmitAndWait(ctx context.Context, txs []*solana.Transaction) (*Outcome, error)
}

// Client talks JSON-RPC to a block-builder relay endpoint.
type Client struct {
	rpc          jsonrpc.RPCClient
	logger       *zap.Logger
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// NewClient creates a relay client for the given endpoint. waitTimeout
// bounds how long SubmitAndWait blocks for a bundle outcome.
func NewClient(relayURL string, waitTimeout time.Duration, logger *zap.Logger) *Client {
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &Client{
		rpc:          jsonrpc.NewClient(relayURL),
		logger:       logger.Named("jito"),
		waitTimeout:  waitTimeout,
		pollInterval: 2 * time.Second,
	}
}

// SendBundle submits the transaction group as a relay bundle and returns
// the relay's bundle id for correlation.
func (c *Client) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", fmt.Errorf("empty bundle")
	}
	if len(txs) > MaxBundleSize {
		return "", fmt.Errorf("bundle of %d transactions exceeds relay cap of %d", len(txs), MaxBundleSize)
	}

	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("serialize bundle transaction: %w", err)
		}
		encoded = append(encoded, base58.Encode(raw))
	}

	var bundleID string
	if err := c.rpc.CallForInto(ctx, &bundleID, "sendBundle", []interface{}{encoded}); err != nil {
		return "", fmt.Errorf("sendBundle: %w", err)
	}

	c.logger.Debug("Bundle submitted",
		zap.String("bundle_id", bundleID),
		zap.Int("transactions", len(txs)))

	return bundleID, nil
}

type bundleStatuses struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value []struct {
		BundleID           string      `json:"bundle_id"`
		Transactions       []string    `json:"transactions"`
		Slot               uint64      `json:"slot"`
		ConfirmationStatus string      `json:"confirmation_status"`
		Err                interface{} `json:"err"`
	} `json:"value"`
}

// WaitForBundle polls bundle statuses until the relay reports the bundle
// landed, the wait window expires, or the context is cancelled. A window
// that expires with nothing landed is a failure, not a success.
func (c *Client) WaitForBundle(ctx context.Context, bundleID string) (*Outcome, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	deadline := time.After(c.waitTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			c.logger.Warn("Bundle wait window expired", zap.String("bundle_id", bundleID))
			return &Outcome{Accepted: false, BundleID: bundleID}, ErrBundleTimeout
		case <-ticker.C:
			var statuses bundleStatuses
			err := c.rpc.CallForInto(ctx, &statuses, "getBundleStatuses", []interface{}{[]string{bundleID}})
			if err != nil {
				c.logger.Warn("getBundleStatuses error", zap.Error(err))
				continue
			}
			if len(statuses.Value) == 0 {
				continue
			}

			status := statuses.Value[0]
			if rejected(status.Err) {
				c.logger.Warn("Bundle rejected",
					zap.String("bundle_id", bundleID),
					zap.Any("err", status.Err))
				return &Outcome{
					Accepted: false,
					BundleID: bundleID,
					Slot:     status.Slot,
					Status:   status.ConfirmationStatus,
				}, ErrBundleRejected
			}

			switch status.ConfirmationStatus {
			case "confirmed", "finalized":
				c.logger.Info("Bundle landed",
					zap.String("bundle_id", bundleID),
					zap.Uint64("slot", status.Slot),
					zap.String("status", status.ConfirmationStatus))
				return &Outcome{
					Accepted: true,
					BundleID: bundleID,
					Slot:     status.Slot,
					Status:   status.ConfirmationStatus,
				}, nil
			}
		}
	}
}

// rejected interprets the relay's err field: anything other than absent or
// an explicit Ok marker is a rejection.
func rejected(errField interface{}) bool {
	if errField == nil {
		return false
	}
	m, ok := errField.(map[string]interface{})
	if !ok {
		return true
	}
	if len(m) == 0 {
		return false
	}
	v, hasOk := m["Ok"]
	return !hasOk || v != nil
}

// SubmitAndWait submits the group and blocks for its outcome.
func (c *Client) SubmitAndWait(ctx context.Context, txs []*solana.Transaction) (*Outcome, error) {
	bundleID, err := c.SendBundle(ctx, txs)
	if err != nil {
		return nil, err
	}
	return c.WaitForBundle(ctx, bundleID)
}

var _ Submitter = (*Client)(nil)
