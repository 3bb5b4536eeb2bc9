package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/slotview/pkg/types"
)

var errDisk = errors.New("disk I/O error")

func expectSchema(mock sqlmock.Sqlmock) {
	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// mockBackend attaches a Backend to a sqlmock database over an empty data dir.
func mockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock, string) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	dir := t.TempDir()
	expectSchema(mock)
	mock.ExpectBegin()
	mock.ExpectCommit()

	b := NewBackend()
	require.NoError(t, b.attachDB(db, types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	return b, mock, dir
}

func headerColumns() []string {
	return []string{"layout_id", "chain_id", "address", "contract_name", "source", "has_types", "created_at"}
}

func TestAttachDB_SchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(createLayouts)).WillReturnError(errDisk)

	b := NewBackend()
	err = b.attachDB(db, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "creating schema")
	assert.False(t, b.attached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachDB_LoadFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectSchema(mock)
	mock.ExpectBegin().WillReturnError(errDisk)

	b := NewBackend()
	err = b.attachDB(db, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "load JSONL")
	assert.False(t, b.attached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPut_BeginFailure(t *testing.T) {
	b, mock, dir := mockBackend(t)
	mock.ExpectBegin().WillReturnError(errDisk)

	_, err := b.Put(tokenRecord(1, "0xabc", "Token"))
	assert.ErrorIs(t, err, errDisk)
	assert.NoError(t, mock.ExpectationsWereMet())

	info, err := os.Stat(filepath.Join(dir, layoutsFile))
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "layouts.jsonl is untouched")
}

func TestPut_InsertFailureRollsBack(t *testing.T) {
	b, mock, dir := mockBackend(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT layout_id, chain_id, address").
		WithArgs(int64(1), "0xabc").
		WillReturnRows(sqlmock.NewRows(headerColumns()))
	mock.ExpectExec("INSERT INTO layouts").WillReturnError(errDisk)
	mock.ExpectRollback()

	rec := tokenRecord(1, "0xABC", "Token")
	_, err := b.Put(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "inserting layout")
	assert.Empty(t, rec.LayoutID, "caller's record is not updated on failure")
	assert.NoError(t, mock.ExpectationsWereMet())

	info, err := os.Stat(filepath.Join(dir, layoutsFile))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestPut_CommitFailure(t *testing.T) {
	b, mock, _ := mockBackend(t)
	rec := tokenRecord(1, "0xabc", "Token")
	rec.Layout.Types = nil

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT layout_id, chain_id, address").
		WillReturnRows(sqlmock.NewRows(headerColumns()))
	mock.ExpectExec("INSERT INTO layouts").WillReturnResult(sqlmock.NewResult(1, 1))
	for range rec.Layout.Storage {
		mock.ExpectExec("INSERT INTO layout_items").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit().WillReturnError(errDisk)

	_, err := b.Put(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "committing put")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_QueryFailure(t *testing.T) {
	b, mock, _ := mockBackend(t)
	mock.ExpectQuery("SELECT layout_id, chain_id, address").WillReturnError(errDisk)

	_, err := b.Get(1, "0xabc")
	assert.ErrorIs(t, err, errDisk)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_CorruptTimestamp(t *testing.T) {
	b, mock, _ := mockBackend(t)
	mock.ExpectQuery("SELECT layout_id, chain_id, address").
		WillReturnRows(sqlmock.NewRows(headerColumns()).
			AddRow("id-1", int64(1), "0xabc", "Token", "", 1, "yesterday"))

	_, err := b.Get(1, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing layout created_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_CorruptDescriptor(t *testing.T) {
	b, mock, _ := mockBackend(t)
	mock.ExpectQuery("SELECT layout_id, chain_id, address").
		WillReturnRows(sqlmock.NewRows(headerColumns()).
			AddRow("id-1", int64(1), "0xabc", "Token", "", 1, "2026-03-01T12:00:00.000000000Z"))
	mock.ExpectQuery("SELECT type_id, descriptor FROM layout_types").
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"type_id", "descriptor"}).AddRow("t_bool", "{"))

	_, err := b.Get(1, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `decoding type "t_bool"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_ExecFailure(t *testing.T) {
	b, mock, _ := mockBackend(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM layout_items").WithArgs("id-1").WillReturnError(errDisk)
	mock.ExpectRollback()

	err := b.Delete("id-1")
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "deleting items")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetach_CloseFailure(t *testing.T) {
	b, mock, _ := mockBackend(t)
	mock.ExpectClose().WillReturnError(errDisk)

	assert.ErrorIs(t, b.Detach(), errDisk)
	assert.False(t, b.attached)
	assert.NoError(t, b.Detach())
	assert.NoError(t, mock.ExpectationsWereMet())
}
