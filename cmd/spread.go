package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/spreader"
)

var spreadCmd = &cobra.Command{
	Use:   "spread <file>",
	Short: "Spread a financial statement document",
	Long:  "Renders the document, detects statements and periods, extracts structured line items, and validates the result. Accepts .pdf and .xlsx files.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		stmtType, _ := cmd.Flags().GetString("type")
		period, _ := cmd.Flags().GetString("period")
		multiPeriod, _ := cmd.Flags().GetBool("multi-period")
		modelOverride, _ := cmd.Flags().GetString("model")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		noStore, _ := cmd.Flags().GetBool("no-store")

		st, err := parseStatementType(stmtType)
		if err != nil {
			return err
		}

		sp, err := initSpreader(modelOverride)
		if err != nil {
			return err
		}

		req := spreader.Request{
			FilePath:      args[0],
			StatementType: st,
			Period:        period,
			MultiPeriod:   multiPeriod,
		}

		var runID string
		var persist persistFn
		if !noStore {
			persist, runID, err = beginRun(ctx, req)
			if err != nil {
				return err
			}
		}

		res, err := sp.Spread(ctx, req)
		if persist != nil {
			persist(ctx, res, err)
		}
		if err != nil {
			return eris.Wrapf(err, "spread %s", args[0])
		}

		if runID != "" {
			zap.L().Info("run persisted", zap.String("run_id", runID))
		}
		return writeResult(output, format, res)
	},
}

func init() {
	spreadCmd.Flags().String("type", "auto", "statement type: income, balance, or auto")
	spreadCmd.Flags().String("period", "", "reporting period to extract (e.g. \"FY24\", \"Q1 2024\"); empty detects the most recent")
	spreadCmd.Flags().Bool("multi-period", false, "extract every real period column instead of one")
	spreadCmd.Flags().String("model", "", "override the extraction model")
	spreadCmd.Flags().String("output", "", "write the result to a file instead of stdout")
	spreadCmd.Flags().String("format", "json", "output format: json or yaml")
	spreadCmd.Flags().Bool("no-store", false, "skip persisting the run")

	rootCmd.AddCommand(spreadCmd)
}

func parseStatementType(s string) (model.StatementType, error) {
	switch s {
	case "income", "income_statement":
		return model.StatementIncome, nil
	case "balance", "balance_sheet":
		return model.StatementBalance, nil
	case "auto", "":
		return model.StatementAuto, nil
	default:
		return "", eris.Errorf("unknown statement type %q (want income, balance, or auto)", s)
	}
}

func extractionMode(req spreader.Request) model.ExtractionMode {
	switch {
	case req.StatementType == model.StatementAuto:
		return model.ModeCombined
	case req.MultiPeriod:
		return model.ModeMultiPeriod
	default:
		return model.ModeSingle
	}
}

// persistFn records a finished run. Persistence failures are logged, never
// returned: a completed extraction is not discarded because the database was
// unavailable.
type persistFn func(ctx context.Context, res *model.SpreadResult, spreadErr error)

func beginRun(ctx context.Context, req spreader.Request) (persistFn, string, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, "", err
	}

	run, err := st.CreateRun(ctx, req.FilePath, req.StatementType, extractionMode(req))
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, "", err
	}
	if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		zap.L().Warn("mark run running", zap.Error(err))
	}

	fn := func(ctx context.Context, res *model.SpreadResult, spreadErr error) {
		defer st.Close() //nolint:errcheck
		if spreadErr != nil {
			if err := st.FailRun(ctx, run.ID, spreadErr.Error()); err != nil {
				zap.L().Warn("persist failed run", zap.Error(err))
			}
			return
		}
		if err := st.CompleteRun(ctx, run.ID, res); err != nil {
			zap.L().Warn("persist completed run", zap.Error(err))
		}
	}
	return fn, run.ID, nil
}

// writeResult encodes a value as JSON or YAML to stdout or a file.
func writeResult(path, format string, v any) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	switch format {
	case "json", "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode result")
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(v), "encode result")
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
