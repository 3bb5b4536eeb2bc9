package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// timeFormat is RFC 3339 with a fixed-width fraction so that created_at
// sorts correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const selectLayouts = "SELECT layout_id, chain_id, address, contract_name, source, has_types, created_at FROM layouts"

// insertRecord writes the layouts row of rec and its types and items.
func insertRecord(q querier, rec *types.LayoutRecord) error {
	_, err := q.Exec(
		`INSERT INTO layouts (layout_id, chain_id, address, contract_name, source, has_types, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.LayoutID, int64(rec.ChainID), rec.Address, rec.ContractName, rec.Source,
		boolToInt(rec.Layout.Types != nil), rec.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting layout: %w", err)
	}
	return insertContents(q, rec.LayoutID, rec.Layout)
}

// updateRecord replaces the layout of an existing row. The id and
// created_at are left alone.
func updateRecord(q querier, rec *types.LayoutRecord) error {
	_, err := q.Exec(
		"UPDATE layouts SET contract_name = ?, source = ?, has_types = ? WHERE layout_id = ?",
		rec.ContractName, rec.Source, boolToInt(rec.Layout.Types != nil), rec.LayoutID,
	)
	if err != nil {
		return fmt.Errorf("updating layout: %w", err)
	}
	if err := deleteContents(q, rec.LayoutID); err != nil {
		return err
	}
	return insertContents(q, rec.LayoutID, rec.Layout)
}

func insertContents(q querier, layoutID string, layout types.StorageLayout) error {
	for typeID, desc := range layout.Types {
		blob, err := json.Marshal(desc)
		if err != nil {
			return fmt.Errorf("encoding type %q: %w", typeID, err)
		}
		_, err = q.Exec(
			`INSERT INTO layout_types (layout_id, type_id, label, encoding, number_of_bytes, descriptor)
VALUES (?, ?, ?, ?, ?, ?)`,
			layoutID, typeID, desc.Label, desc.Encoding, string(desc.NumberOfBytes), string(blob),
		)
		if err != nil {
			return fmt.Errorf("inserting type %q: %w", typeID, err)
		}
	}
	for i, item := range layout.Storage {
		_, err := q.Exec(
			`INSERT INTO layout_items (layout_id, position, slot, byte_offset, label, type_id, contract, ast_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			layoutID, i, item.Slot.String(), item.Offset, item.Label, item.Type, item.Contract, item.ASTID,
		)
		if err != nil {
			return fmt.Errorf("inserting item %q: %w", item.Label, err)
		}
	}
	return nil
}

func deleteContents(q querier, layoutID string) error {
	if _, err := q.Exec("DELETE FROM layout_items WHERE layout_id = ?", layoutID); err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}
	if _, err := q.Exec("DELETE FROM layout_types WHERE layout_id = ?", layoutID); err != nil {
		return fmt.Errorf("deleting types: %w", err)
	}
	return nil
}

// header is a layouts row before its contents are loaded.
type header struct {
	rec      types.LayoutRecord
	hasTypes bool
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHeader(row scanner) (*header, error) {
	var (
		h         header
		chainID   int64
		hasTypes  int
		createdAt string
	)
	err := row.Scan(&h.rec.LayoutID, &chainID, &h.rec.Address, &h.rec.ContractName, &h.rec.Source, &hasTypes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning layout: %w", err)
	}
	h.rec.ChainID = uint64(chainID)
	h.hasTypes = hasTypes != 0
	h.rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing layout created_at: %w", err)
	}
	return &h, nil
}

// loadContents fills in the types and items of h and returns the record.
func loadContents(q querier, h *header) (*types.LayoutRecord, error) {
	rec := h.rec
	if h.hasTypes {
		dict, err := loadTypes(q, rec.LayoutID)
		if err != nil {
			return nil, err
		}
		rec.Layout.Types = dict
	}
	items, err := loadItems(q, rec.LayoutID)
	if err != nil {
		return nil, err
	}
	rec.Layout.Storage = items
	return &rec, nil
}

func loadTypes(q querier, layoutID string) (types.TypeDictionary, error) {
	rows, err := q.Query("SELECT type_id, descriptor FROM layout_types WHERE layout_id = ?", layoutID)
	if err != nil {
		return nil, fmt.Errorf("loading types: %w", err)
	}
	defer rows.Close()

	dict := types.TypeDictionary{}
	for rows.Next() {
		var typeID, blob string
		if err := rows.Scan(&typeID, &blob); err != nil {
			return nil, fmt.Errorf("scanning type: %w", err)
		}
		var desc types.TypeDescriptor
		if err := json.Unmarshal([]byte(blob), &desc); err != nil {
			return nil, fmt.Errorf("decoding type %q: %w", typeID, err)
		}
		dict[typeID] = desc
	}
	return dict, rows.Err()
}

func loadItems(q querier, layoutID string) ([]types.StorageItem, error) {
	rows, err := q.Query(
		`SELECT slot, byte_offset, label, type_id, contract, ast_id FROM layout_items
WHERE layout_id = ? ORDER BY position`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	items := []types.StorageItem{}
	for rows.Next() {
		var (
			item types.StorageItem
			slot string
		)
		if err := rows.Scan(&slot, &item.Offset, &item.Label, &item.Type, &item.Contract, &item.ASTID); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Slot = types.ParseSlot(slot)
		items = append(items, item)
	}
	return items, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
