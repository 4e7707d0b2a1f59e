package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit
// testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "pnl.xlsx", "income_statement", "single", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "pnl.xlsx", model.StatementIncome, model.ModeSingle)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, file_path, statement_type, mode, status, result, error, created_at, updated_at`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun_WithResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	result := &model.SpreadResult{Kind: model.ResultIncome, Income: &model.IncomeStatement{FiscalPeriod: "FY24"}}
	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "file_path", "statement_type", "mode", "status", "result", "error", "created_at", "updated_at",
	}).AddRow("run-1", "pnl.xlsx", model.StatementIncome, model.ModeSingle, model.RunStatusComplete,
		&resultJSON, (*string)(nil), now, now)

	mock.ExpectQuery(`SELECT id, file_path, statement_type, mode, status, result, error`).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "FY24", run.Result.Income.FiscalPeriod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET result`).
		WithArgs(pgxmock.AnyArg(), "complete", pgxmock.AnyArg(), "missing-run").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing-run", &model.SpreadResult{Kind: model.ResultIncome})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FailRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET error`).
		WithArgs("render: file not found", "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.FailRun(context.Background(), "run-1", "render: file not found"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "file_path", "statement_type", "mode", "status", "result", "error", "created_at", "updated_at",
	}).AddRow("run-1", "a.pdf", model.StatementIncome, model.ModeSingle, model.RunStatusComplete,
		(*[]byte)(nil), (*string)(nil), now, now)

	mock.ExpectQuery(`SELECT id, file_path, statement_type, mode, status, result, error`).
		WithArgs("complete", 100).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateRunsBulk(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectCopyFrom(pgx.Identifier{"runs"},
		[]string{"id", "file_path", "statement_type", "mode", "status", "result", "error", "created_at", "updated_at"}).
		WillReturnResult(2)

	runs := []model.Run{
		{ID: "r1", FilePath: "a.pdf", StatementType: model.StatementIncome, Mode: model.ModeSingle,
			Status: model.RunStatusComplete, CreatedAt: now, UpdatedAt: now},
		{ID: "r2", FilePath: "b.pdf", StatementType: model.StatementIncome, Mode: model.ModeSingle,
			Status: model.RunStatusFailed, Error: "render failed", CreatedAt: now, UpdatedAt: now},
	}
	n, err := s.CreateRunsBulk(context.Background(), runs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
