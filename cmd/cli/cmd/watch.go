// Package cmd - watch command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mua-risk/adapters/analysisfile"
	"mua-risk/core/engine"
	"mua-risk/core/output"
	"mua-risk/internal/config"
	"mua-risk/internal/errors"
	"mua-risk/internal/logging"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Recompute an analysis file every time it changes",
	Long: `Load an analysis file, print its budget and keep printing it each time
the file is saved. Edits that fail to parse are reported and skipped.

Examples:
  mua-risk watch bench.hcl
  mua-risk watch --format json bench.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addRenderFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}

	formatter, err := output.NewRegistry(opts).Get(format)
	if err != nil {
		return err
	}
	if formatter.Format() == output.FormatPDF {
		return errors.NotSupported("pdf in watch mode")
	}

	in, err := loadInput(cmd, path)
	if err != nil {
		return err
	}
	analysis := engine.NewAnalysis(in)

	render := func(report engine.Report) {
		result := &output.AnalysisResult{
			Input:  analysis.Input(),
			Report: report,
			Metadata: output.Metadata{
				AnalysisID: analysis.ID(),
				Source:     path,
				Timestamp:  time.Now().UTC(),
				Version:    Version,
			},
		}
		if err := formatter.Render(cmd.OutOrStdout(), result); err != nil {
			logging.Error("render failed", zap.Error(err))
		}
	}
	render(analysis.Report())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults := analysisDefaults(config.Get())
	err = analysisfile.Watch(ctx, path, defaults, func(next engine.Input) {
		render(analysis.Replace(applyOverrides(cmd, next)))
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
