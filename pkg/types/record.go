package types

import (
	"fmt"
	"time"
)

// LayoutRecord is a storage layout kept by a Store for one deployed contract.
type LayoutRecord struct {
	// LayoutID is a UUID v7, generated on first Put.
	LayoutID string `json:"layout_id"`

	// ChainID identifies the chain the contract is deployed on.
	ChainID uint64 `json:"chain_id"`

	// Address is the contract address in NormalizeAddress form.
	Address string `json:"address"`

	// ContractName is the name of the contract the layout belongs to, if known.
	ContractName string `json:"contract_name"`

	// Source is the file the layout was imported from, if any.
	Source string `json:"source,omitempty"`

	// Layout is the storage layout itself.
	Layout StorageLayout `json:"layout"`

	// CreatedAt is the timestamp of the first Put.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record key and every storage item.
func (r *LayoutRecord) Validate() error {
	if r.ChainID == 0 {
		return ErrInvalidChain
	}
	if NormalizeAddress(r.Address) == "" {
		return ErrEmptyAddress
	}
	for i, item := range r.Layout.Storage {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("storage[%d] %q: %w", i, item.Label, err)
		}
	}
	return nil
}
