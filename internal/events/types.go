// ==============================
// File: internal/events/types.go
// ==============================
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	// Token lifecycle events
	TokenCreated   EventType = "token.created"
	CurveCompleted EventType = "curve.completed"

	// Trade events
	TradeExecuted EventType = "trade.executed"

	// Program configuration events
	ParamsUpdated EventType = "params.updated"

	// Bundle events
	BundleSubmitted EventType = "bundle.submitted"
	BundleLanded    EventType = "bundle.landed"
	BundleFailed    EventType = "bundle.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// TokenCreatedEvent is emitted when a new token and its bonding curve are
// initialized.
type TokenCreatedEvent struct {
	BaseEvent
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
	Creator      solana.PublicKey
	Name         string
	Symbol       string
	URI          string
	Signature    solana.Signature
}

// TradeExecutedEvent is emitted after a buy or sell settles.
type TradeExecutedEvent struct {
	BaseEvent
	Mint                 solana.PublicKey
	User                 solana.PublicKey
	IsBuy                bool
	SolAmount            uint64
	TokenAmount          uint64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
	Signature            solana.Signature
}

// CurveCompletedEvent is emitted when a bonding curve's token supply is
// exhausted and trading on the curve ends.
type CurveCompletedEvent struct {
	BaseEvent
	Mint         solana.PublicKey
	BondingCurve solana.PublicKey
}

// ParamsUpdatedEvent is emitted when the program's global parameters change.
type ParamsUpdatedEvent struct {
	BaseEvent
	FeeRecipient                solana.PublicKey
	InitialVirtualSolReserves   uint64
	InitialVirtualTokenReserves uint64
	FeeBasisPoints              uint64
}

// BundleSubmittedEvent is emitted when a transaction group goes to the relay.
type BundleSubmittedEvent struct {
	BaseEvent
	BundleID     string
	Transactions int
}

// BundleLandedEvent is emitted when the relay reports a bundle on chain.
type BundleLandedEvent struct {
	BaseEvent
	BundleID string
	Slot     uint64
}

// BundleFailedEvent is emitted when a bundle is rejected or its wait
// window expires.
type BundleFailedEvent struct {
	BaseEvent
	BundleID string
	Error    error
}
