package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/config"
	"github.com/bridge-group/spreader-cli/internal/llm"
	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/internal/spreader"
	"github.com/bridge-group/spreader-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "spreader",
	Short: "Financial statement spreading engine",
	Long:  "Extracts structured income statements and balance sheets from PDF and Excel financial documents via vision models, with period detection, column classification, and accounting-identity validation.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initSpreader wires the pipeline from loaded config plus per-command
// overrides.
func initSpreader(modelOverride string) (*spreader.Spreader, error) {
	gw, err := llm.NewGateway(cfg.Anthropic.Key, llm.GatewayConfig{
		DeepModel:       cfg.Models.Deep,
		FastModel:       cfg.Models.Fast,
		ReasoningEffort: cfg.Models.ReasoningEffort,
	})
	if err != nil {
		return nil, err
	}

	renderer := render.NewRenderer(cfg.Render.PdftoppmPath)
	prompts := spreader.NewPromptSource(cfg.Prompts.Dir)

	return spreader.New(gw, renderer, prompts, spreader.Options{
		Render: render.Options{
			DPI:      cfg.Render.DPI,
			MaxWidth: cfg.Render.MaxWidth,
			MaxPages: cfg.Render.MaxPages,
		},
		DetectionPages:      cfg.Extraction.DetectionPages,
		MaxRetries:          cfg.Extraction.MaxRetries,
		ValidationTolerance: cfg.Extraction.ValidationTolerance,
		ReconcileTolerance:  cfg.Extraction.ReconcileTolerance,
		ModelOverride:       modelOverride,
	})
}

func initStore(ctx context.Context) (store.Store, error) {
	dsn := cfg.Store.DatabaseURL
	if cfg.Store.Driver == "sqlite" || cfg.Store.Driver == "" {
		if dsn == "" {
			dsn = "spreader.db"
		}
	}
	st, err := store.Open(ctx, cfg.Store.Driver, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
