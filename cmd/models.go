package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bridge-group/spreader-cli/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available for spreading",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tNAME\tTIER\tTHINKING\tDEFAULT")
		for _, d := range llm.Registry() {
			def := ""
			if d.Default {
				def = "*"
			}
			thinking := "no"
			if d.SupportsThinking {
				thinking = "yes"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				d.ID, d.DisplayName, d.CostTier, thinking, def)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
