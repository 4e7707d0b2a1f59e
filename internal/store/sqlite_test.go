package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "statements/acme-fy24.pdf", model.StatementIncome, model.ModeMultiPeriod)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "statements/acme-fy24.pdf", got.FilePath)
	assert.Equal(t, model.StatementIncome, got.StatementType)
	assert.Equal(t, model.ModeMultiPeriod, got.Mode)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_CompleteRun_RoundTripsResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "pnl.xlsx", model.StatementIncome, model.ModeSingle)
	require.NoError(t, err)

	result := &model.SpreadResult{
		Kind: model.ResultIncome,
		Income: &model.IncomeStatement{
			Revenue:      model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
			FiscalPeriod: "FY24",
		},
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.ResultIncome, got.Result.Kind)
	require.NotNil(t, got.Result.Income)
	assert.InDelta(t, 1000000, got.Result.Income.Revenue.Amount(), 0.01)
	assert.Equal(t, "FY24", got.Result.Income.FiscalPeriod)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "broken.pdf", model.StatementAuto, model.ModeCombined)
	require.NoError(t, err)

	require.NoError(t, st.FailRun(ctx, run.ID, "render: file not found"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "render: file not found", got.Error)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "missing", model.RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "a.pdf", model.StatementIncome, model.ModeSingle)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.pdf", model.StatementBalance, model.ModeSingle)
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusComplete))

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_ListRuns_FilterByFilePath(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, "a.pdf", model.StatementIncome, model.ModeSingle)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.pdf", model.StatementIncome, model.ModeSingle)
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{FilePath: "b.pdf"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "b.pdf", runs[0].FilePath)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.CreateRun(ctx, "x.pdf", model.StatementIncome, model.ModeSingle)
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
