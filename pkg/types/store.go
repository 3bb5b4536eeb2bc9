package types

import (
	"errors"
	"strings"
)

// Store keeps storage layouts keyed by chain id and contract address.
// Callers attach to a backend, read and write records, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// Put stores a layout record. A record for a chain id and address that
	// is already present replaces the stored layout and keeps its id.
	// Returns the id of the stored record.
	Put(record *LayoutRecord) (string, error)

	// Get returns the record for the given chain id and address.
	// Returns ErrNotFound if no layout is stored for them.
	Get(chainID uint64, address string) (*LayoutRecord, error)

	// GetByID returns the record with the given id.
	GetByID(id string) (*LayoutRecord, error)

	// List returns the records matching filter, oldest first.
	List(filter Filter) ([]*LayoutRecord, error)

	// Delete removes the record with the given id.
	// Returns ErrNotFound if no record exists with that id.
	Delete(id string) error
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	ChainID  uint64 // 0 matches any chain.
	Contract string // Case-insensitive substring of the contract name.
	Limit    int    // 0 means no limit.
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Store operation errors.
var (
	ErrNotFound     = errors.New("layout not found")
	ErrInvalidID    = errors.New("invalid layout ID")
	ErrInvalidData  = errors.New("invalid layout data")
	ErrInvalidItem  = errors.New("invalid storage item")
	ErrInvalidChain = errors.New("chain id must be positive")
	ErrEmptyAddress = errors.New("address must not be empty")
)

// NormalizeAddress returns the form addresses are stored and looked up in.
// Addresses are compared case-insensitively and are not otherwise checked.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
