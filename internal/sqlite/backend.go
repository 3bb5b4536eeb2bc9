// Package sqlite implements the SQLite layout store.
//
// layouts.jsonl in the data directory is the source of truth. The SQLite
// database next to it is a query engine: it is recreated and loaded from
// the JSONL file on every Attach, and every mutation rewrites the JSONL
// file from the database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// dbFile is the SQLite database inside the data directory.
const dbFile = "slotview.db"

// Backend implements types.Store with SQLite as the query engine and a JSONL
// file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Attach creates DataDir if needed, recreates the database, and loads
// layouts.jsonl into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is derived state; start from an empty schema.
	dbPath := filepath.Join(dataDir, dbFile)
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	config.DataDir = dataDir
	if err := b.attachDB(db, config); err != nil {
		db.Close()
		return err
	}
	return nil
}

// attachDB finishes Attach on an open database. The caller holds b.mu.
func (b *Backend) attachDB(db *sql.DB, config types.Config) error {
	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	if err := ensureJSONL(config.DataDir); err != nil {
		return err
	}
	if err := loadJSONL(db, config.DataDir); err != nil {
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	log.WithField("data_dir", config.DataDir).Debug("store attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	db := b.db
	b.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Put stores record under its chain id and address. If a layout is already
// stored for them it is replaced and keeps its id and creation time;
// otherwise a UUID v7 is generated. Any LayoutID set by the caller is
// ignored. On success record carries the stored id, address and creation
// time.
func (b *Backend) Put(record *types.LayoutRecord) (string, error) {
	if record == nil {
		return "", types.ErrInvalidData
	}
	if err := record.Validate(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}

	rec := *record
	rec.Address = types.NormalizeAddress(rec.Address)

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning put: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanHeader(tx.QueryRow(
		selectLayouts+" WHERE chain_id = ? AND address = ?", int64(rec.ChainID), rec.Address))
	switch {
	case err == nil:
		rec.LayoutID = existing.rec.LayoutID
		rec.CreatedAt = existing.rec.CreatedAt
		err = updateRecord(tx, &rec)
	case errors.Is(err, types.ErrNotFound):
		rec.LayoutID = generateUUID()
		rec.CreatedAt = b.now().UTC()
		err = insertRecord(tx, &rec)
	}
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing put: %w", err)
	}
	if err := b.persistLocked(); err != nil {
		return "", err
	}

	record.LayoutID = rec.LayoutID
	record.Address = rec.Address
	record.CreatedAt = rec.CreatedAt

	log.WithFields(log.Fields{
		"layout_id": rec.LayoutID,
		"chain_id":  rec.ChainID,
		"address":   rec.Address,
		"items":     len(rec.Layout.Storage),
	}).Debug("stored layout")
	return rec.LayoutID, nil
}

// Get returns the layout stored for chainID and address.
func (b *Backend) Get(chainID uint64, address string) (*types.LayoutRecord, error) {
	if chainID == 0 {
		return nil, types.ErrInvalidChain
	}
	address = types.NormalizeAddress(address)
	if address == "" {
		return nil, types.ErrEmptyAddress
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	h, err := scanHeader(b.db.QueryRow(
		selectLayouts+" WHERE chain_id = ? AND address = ?", int64(chainID), address))
	if err != nil {
		return nil, err
	}
	return loadContents(b.db, h)
}

// GetByID returns the layout with the given id.
func (b *Backend) GetByID(id string) (*types.LayoutRecord, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	h, err := scanHeader(b.db.QueryRow(selectLayouts+" WHERE layout_id = ?", id))
	if err != nil {
		return nil, err
	}
	return loadContents(b.db, h)
}

// List returns the layouts matching filter ordered by creation time, then id.
func (b *Backend) List(filter types.Filter) ([]*types.LayoutRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.listLocked(filter)
}

func (b *Backend) listLocked(filter types.Filter) ([]*types.LayoutRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.ChainID != 0 {
		where = append(where, "chain_id = ?")
		args = append(args, int64(filter.ChainID))
	}
	if filter.Contract != "" {
		where = append(where, "instr(lower(contract_name), ?) > 0")
		args = append(args, strings.ToLower(filter.Contract))
	}
	query := selectLayouts
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, layout_id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	var headers []*header
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing layouts: %w", err)
	}

	records := make([]*types.LayoutRecord, 0, len(headers))
	for _, h := range headers {
		rec, err := loadContents(b.db, h)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes the layout with the given id.
func (b *Backend) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if err := deleteContents(tx, id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM layouts WHERE layout_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting layout: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	if err := b.persistLocked(); err != nil {
		return err
	}

	log.WithField("layout_id", id).Debug("deleted layout")
	return nil
}

// persistLocked rewrites layouts.jsonl from the database. The caller holds
// b.mu. A failure leaves the previous file in place; the next Attach
// reloads from it.
func (b *Backend) persistLocked() error {
	records, err := b.listLocked(types.Filter{})
	if err != nil {
		return fmt.Errorf("persisting layouts: %w", err)
	}
	lines := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding layout %s: %w", rec.LayoutID, err)
		}
		lines = append(lines, line)
	}
	return writeJSONL(filepath.Join(b.config.DataDir, layoutsFile), lines)
}

// generateUUID generates a new UUID v7 for layout ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
