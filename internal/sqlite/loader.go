package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

// loadJSONL reads layouts.jsonl from dataDir and inserts every record into
// the database in one transaction: either all usable records load or the
// database stays empty. Lines that do not decode into a valid record, and
// records whose id or chain id and address were already loaded, are skipped.
// Unknown fields are ignored.
func loadJSONL(db *sql.DB, dataDir string) error {
	path := filepath.Join(dataDir, layoutsFile)
	raw, err := readJSONL(path)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	var loaded, skipped int
	for i, line := range raw {
		rec, ok := decodeRecord(line)
		if !ok {
			skipped++
			log.WithFields(log.Fields{"path": path, "record": i + 1}).Warn("skipping undecodable layout record")
			continue
		}
		exists, err := conflicts(tx, rec)
		if err != nil {
			return err
		}
		if exists {
			skipped++
			log.WithFields(log.Fields{
				"path":      path,
				"layout_id": rec.LayoutID,
				"chain_id":  rec.ChainID,
				"address":   rec.Address,
			}).Warn("skipping duplicate layout record")
			continue
		}
		if err := insertRecord(tx, rec); err != nil {
			return fmt.Errorf("loading layout %s: %w", rec.LayoutID, err)
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}

	log.WithFields(log.Fields{"path": path, "loaded": loaded, "skipped": skipped}).Debug("loaded layouts")
	return nil
}

// decodeRecord parses one JSONL line into a record fit for insertion.
func decodeRecord(line json.RawMessage) (*types.LayoutRecord, bool) {
	var rec types.LayoutRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, false
	}
	if rec.LayoutID == "" || rec.CreatedAt.IsZero() {
		return nil, false
	}
	if err := rec.Validate(); err != nil {
		return nil, false
	}
	rec.Address = types.NormalizeAddress(rec.Address)
	return &rec, true
}

// conflicts reports whether a loaded record already holds rec's id or key.
func conflicts(q querier, rec *types.LayoutRecord) (bool, error) {
	var n int
	err := q.QueryRow(
		"SELECT COUNT(*) FROM layouts WHERE layout_id = ? OR (chain_id = ? AND address = ?)",
		rec.LayoutID, int64(rec.ChainID), rec.Address,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking layout key: %w", err)
	}
	return n > 0, nil
}
