package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/flac2mp3/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the external tools and output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			results := preflight.RunAll(settings, settings.Paths.OutputDir)
			fmt.Fprintln(cmd.OutOrStdout(), renderChecks(results))
			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("preflight checks failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}
}

func renderChecks(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}
