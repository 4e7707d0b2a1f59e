package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/spreader"
	"github.com/bridge-group/spreader-cli/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-glob>...",
	Short: "Spread many documents concurrently",
	Long:  "Runs the same extraction against every matching file. One file's failure never aborts the batch; failed files are reported in their result slot.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		stmtType, _ := cmd.Flags().GetString("type")
		period, _ := cmd.Flags().GetString("period")
		multiPeriod, _ := cmd.Flags().GetBool("multi-period")
		modelOverride, _ := cmd.Flags().GetString("model")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		ratePerMinute, _ := cmd.Flags().GetInt("rate")
		noStore, _ := cmd.Flags().GetBool("no-store")

		st, err := parseStatementType(stmtType)
		if err != nil {
			return err
		}

		files, err := expandFileArgs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return eris.New("no files matched")
		}
		zap.L().Info("batch starting", zap.Int("files", len(files)))

		sp, err := initSpreader(modelOverride)
		if err != nil {
			return err
		}

		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentFiles
		}
		if ratePerMinute <= 0 {
			ratePerMinute = cfg.Batch.RatePerMinute
		}

		template := spreader.Request{
			StatementType: st,
			Period:        period,
			MultiPeriod:   multiPeriod,
		}
		batch := sp.SpreadBatch(ctx, files, template, spreader.BatchOptions{
			MaxConcurrentFiles: concurrency,
			RatePerMinute:      ratePerMinute,
		})

		if !noStore {
			if err := persistBatch(cmd, batch, template); err != nil {
				zap.L().Warn("persist batch", zap.Error(err))
			}
		}

		printBatchSummary(batch)
		if err := writeResult(output, format, batch); err != nil {
			return err
		}
		if batch.Failed > 0 && batch.Completed == 0 {
			return eris.New("all batch files failed")
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("type", "auto", "statement type: income, balance, or auto")
	batchCmd.Flags().String("period", "", "reporting period to extract; empty detects the most recent")
	batchCmd.Flags().Bool("multi-period", false, "extract every real period column instead of one")
	batchCmd.Flags().String("model", "", "override the extraction model")
	batchCmd.Flags().String("output", "", "write results to a file instead of stdout")
	batchCmd.Flags().String("format", "json", "output format: json or yaml")
	batchCmd.Flags().Int("concurrency", 0, "max concurrent files (default from config)")
	batchCmd.Flags().Int("rate", 0, "max file starts per minute, 0 disables throttling (default from config)")
	batchCmd.Flags().Bool("no-store", false, "skip persisting runs")

	rootCmd.AddCommand(batchCmd)
}

// expandFileArgs resolves globs and literal paths into a sorted, deduplicated
// file list.
func expandFileArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "bad glob %q", arg)
		}
		if matches == nil {
			// Not a glob or nothing matched; keep the literal path so the
			// renderer reports a proper not-found error for it.
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// persistBatch writes one run row per batch file. On Postgres all rows go in
// a single COPY round trip; sqlite inserts row by row.
func persistBatch(cmd *cobra.Command, batch *model.BatchResult, template spreader.Request) error {
	ctx := cmd.Context()
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	runs := buildBatchRuns(batch, template)

	if pg, ok := st.(*store.PostgresStore); ok {
		n, err := pg.CreateRunsBulk(ctx, runs)
		if err != nil {
			return err
		}
		zap.L().Info("batch runs persisted", zap.Int64("rows", n))
		return nil
	}

	for _, r := range runs {
		created, err := st.CreateRun(ctx, r.FilePath, r.StatementType, r.Mode)
		if err != nil {
			return err
		}
		if r.Status == model.RunStatusFailed {
			if err := st.FailRun(ctx, created.ID, r.Error); err != nil {
				return err
			}
			continue
		}
		if err := st.CompleteRun(ctx, created.ID, r.Result); err != nil {
			return err
		}
	}
	return nil
}

// buildBatchRuns converts finished batch slots into final-state run rows.
func buildBatchRuns(batch *model.BatchResult, template spreader.Request) []model.Run {
	mode := extractionMode(template)
	now := time.Now().UTC()

	runs := make([]model.Run, 0, len(batch.Files))
	for i := range batch.Files {
		f := &batch.Files[i]
		r := model.Run{
			ID:            uuid.New().String(),
			FilePath:      f.FilePath,
			StatementType: template.StatementType,
			Mode:          mode,
			Status:        model.RunStatusComplete,
			Result:        f.Result,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if f.Error != "" {
			r.Status = model.RunStatusFailed
			r.Error = f.Error
			r.Result = nil
		}
		runs = append(runs, r)
	}
	return runs
}

func printBatchSummary(batch *model.BatchResult) {
	fmt.Fprintf(os.Stderr, "Batch complete: %d succeeded, %d failed of %d files\n",
		batch.Completed, batch.Failed, len(batch.Files))
	for _, f := range batch.Files {
		if f.Error != "" {
			fmt.Fprintf(os.Stderr, "  FAILED %s: %s\n", f.FilePath, f.Error)
		}
	}
}
