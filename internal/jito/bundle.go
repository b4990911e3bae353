// ==============================
// File: internal/jito/bundle.go
// ==============================
package jito

import (
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	// MaxBundleSize is the relay's hard cap on transactions per submission.
	MaxBundleSize = 4

	// payloadChunkSize is MaxBundleSize minus the slot reserved for the
	// tip-bearing transaction.
	payloadChunkSize = MaxBundleSize - 1
)

// Builder assembles atomically-submittable transaction groups: it picks tip
// accounts, desynchronizes per-buyer amounts, and splits oversized logical
// bundles into relay-sized chunks.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a Builder with a time-seeded source.
func NewBuilder() *Builder {
	return NewBuilderWithSeed(time.Now().UnixNano())
}

// NewBuilderWithSeed creates a Builder with a deterministic source, used in
// tests.
func NewBuilderWithSeed(seed int64) *Builder {
	return &Builder{rng: rand.New(rand.NewSource(seed))}
}

// TipAccount draws a tip address from the bounded selection window of the
// known pool.
func (b *Builder) TipAccount() solana.PublicKey {
	return tipAccounts[b.rng.Intn(tipSelectionWindow)]
}

// RandomizeBuyAmount scales a nominal per-buyer amount by a percentage p
// drawn uniformly from [10,25]: odd p scales up by (100+p)/100, even p
// scales down by (100-p)/100. Identical repeated amounts make a bundle
// trivially fingerprintable as one coordinated buy; this spreads them.
func (b *Builder) RandomizeBuyAmount(amount uint64) uint64 {
	p := uint64(b.rng.Intn(16) + 10) // [10,25]
	if p%2 == 1 {
		return amount * (100 + p) / 100
	}
	return amount * (100 - p) / 100
}

// Chunk splits payload transactions into groups small enough that each,
// plus its tip transaction, fits the relay cap. Each chunk is an
// independent atomic group with its own success signal.
func (b *Builder) Chunk(txs []*solana.Transaction) [][]*solana.Transaction {
	if len(txs) == 0 {
		return nil
	}
	chunks := make([][]*solana.Transaction, 0, (len(txs)+payloadChunkSize-1)/payloadChunkSize)
	for start := 0; start < len(txs); start += payloadChunkSize {
		end := start + payloadChunkSize
		if end > len(txs) {
			end = len(txs)
		}
		chunks = append(chunks, txs[start:end])
	}
	return chunks
}
