// ==============================================
// File: internal/pumpfun/metadata.go
// ==============================================
package pumpfun

import "fmt"

// CreateTokenMetadata describes a token at launch. The URI points at
// already-pinned off-chain metadata; uploading to a pinning service is the
// caller's concern, not the SDK's.
type CreateTokenMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// Validate checks the fields the on-chain program will reject if empty.
func (m *CreateTokenMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("token name is required")
	}
	if m.Symbol == "" {
		return fmt.Errorf("token symbol is required")
	}
	if m.URI == "" {
		return fmt.Errorf("token metadata URI is required")
	}
	return nil
}
