// ============================
// File: internal/fees/fees.go
// ============================
package fees

import (
	"math"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Calculator derives protocol transaction fees and builds the fee-transfer
// instruction targeting the fixed fee recipient. The recipient is injected
// at construction so tests can substitute fixtures.
type Calculator struct {
	feeRate      float64
	feeRecipient solana.PublicKey
}

// NewCalculator creates a Calculator. feeRate is a fraction, e.g. 0.01 for 1%.
func NewCalculator(feeRate float64, feeRecipient solana.PublicKey) *Calculator {
	return &Calculator{feeRate: feeRate, feeRecipient: feeRecipient}
}

// FeeRecipient returns the injected fee-recipient address.
func (c *Calculator) FeeRecipient() solana.PublicKey {
	return c.feeRecipient
}

// CalculateTransactionFee returns floor(size * feeRate) lamports, or 0 when
// no size is known.
func (c *Calculator) CalculateTransactionFee(size *uint64) uint64 {
	if size == nil {
		return 0
	}
	return uint64(math.Floor(float64(*size) * c.feeRate))
}

// FeeTransferInstruction builds the single value-transfer instruction from
// payer to the fee recipient for a transaction of the given size.
func (c *Calculator) FeeTransferInstruction(payer solana.PublicKey, size uint64) solana.Instruction {
	lamports := c.CalculateTransactionFee(&size)
	return system.NewTransferInstruction(lamports, payer, c.feeRecipient).Build()
}

// PrependFeeTransfer places the fee-transfer instruction ahead of the
// caller's payload, before signing.
func (c *Calculator) PrependFeeTransfer(payer solana.PublicKey, size uint64, payload []solana.Instruction) []solana.Instruction {
	out := make([]solana.Instruction, 0, len(payload)+1)
	out = append(out, c.FeeTransferInstruction(payer, size))
	return append(out, payload...)
}

// CalculateWithSlippageBuy widens the spend ceiling by the given basis
// points of slippage tolerance.
func CalculateWithSlippageBuy(amount, basisPoints uint64) uint64 {
	return amount + amount*basisPoints/10_000
}

// CalculateWithSlippageSell narrows the minimum acceptable proceeds by the
// given basis points of slippage tolerance.
func CalculateWithSlippageSell(amount, basisPoints uint64) uint64 {
	return amount - amount*basisPoints/10_000
}

// PriorityInstructions builds the compute-budget instructions carrying the
// caller's compute-unit limit and price. Either may be zero to omit it.
func PriorityInstructions(computeUnits uint32, microLamports uint64) []solana.Instruction {
	var instructions []solana.Instruction
	if computeUnits > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(computeUnits).Build())
	}
	if microLamports > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(microLamports).Build())
	}
	return instructions
}
