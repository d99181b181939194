// Package cmd - compute command
package cmd

import (
	"io"
	"os"
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

var (
	outputFormat string
	outputPath   string
	useStudentT  bool
	riskTarget   float64
	precision    int32
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute <file>",
	Short: "Compute the uncertainty budget of an analysis file",
	Long: `Load an analysis file (.hcl, .yaml, .yml or .json), combine its
components and print the budget, ratios and guard band.

Examples:
  mua-risk compute bench.hcl
  mua-risk compute --format markdown bench.yaml > budget.md
  mua-risk compute --format prometheus --output /var/lib/node_exporter/mua.prom bench.hcl
  mua-risk compute --student-t --risk 0.05 bench.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func init() {
	addRenderFlags(computeCmd)
	computeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
}

// addRenderFlags registers the flags shared by compute and watch
func addRenderFlags(c *cobra.Command) {
	c.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown, pdf, prometheus)")
	c.Flags().BoolVar(&useStudentT, "student-t", false, "derive k from the Student-t table instead of k=2")
	c.Flags().Float64Var(&riskTarget, "risk", 0, "target two-sided consumer risk (default from config, 0.02)")
	c.Flags().Int32Var(&precision, "precision", 0, "decimal places of ppm figures (default from config)")
}

// loadInput loads an analysis file and applies flag overrides
func loadInput(cmd *cobra.Command, path string) (engine.Input, error) {
	in, err := analysisfile.Load(path, analysisDefaults(config.Get()))
	if err != nil {
		return engine.Input{}, err
	}
	return applyOverrides(cmd, in), nil
}

func applyOverrides(cmd *cobra.Command, in engine.Input) engine.Input {
	if cmd.Flags().Changed("student-t") {
		in.UseStudentT = useStudentT
	}
	if cmd.Flags().Changed("risk") {
		in.Risk.TargetConsumerRisk = riskTarget
	}
	return in
}

func renderOptions(cmd *cobra.Command) (output.Format, output.Options, error) {
	cfg := config.Get()
	opts := outputOptions(cfg)
	if cmd.Flags().Changed("precision") {
		if precision < 0 || precision > config.MaxPrecision {
			return "", opts, errors.Newf(errors.TypeInput, "--precision must be between 0 and %d, got %d", config.MaxPrecision, precision)
		}
		opts.Precision = precision
	}

	format := output.Format(cfg.Output.DefaultFormat)
	if outputFormat != "" {
		format = output.Format(outputFormat)
	}
	return format, opts, nil
}

func runCompute(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	format, opts, err := renderOptions(cmd)
	if err != nil {
		return err
	}

	formatter, err := output.NewRegistry(opts).Get(format)
	if err != nil {
		return err
	}
	if formatter.Format() == output.FormatPDF && outputPath == "" {
		return errors.NotSupported("pdf to stdout, use --output")
	}

	in, err := loadInput(cmd, path)
	if err != nil {
		return err
	}

	start := time.Now()
	report := engine.Compute(in)
	logging.Debug("budget computed",
		zap.String("file", path),
		zap.Int("components", report.Budget.Len()),
		zap.Int("exclusions", len(report.Exclusions)),
		zap.Duration("duration", time.Since(start)))

	result := &output.AnalysisResult{
		Input:  in,
		Report: report,
		Metadata: output.Metadata{
			Source:    path,
			Timestamp: time.Now().UTC(),
			Version:   Version,
		},
	}

	var w io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, ferr := os.Create(outputPath)
		if ferr != nil {
			return errors.Wrap(errors.TypeInput, "cannot create output file", ferr).WithContext("path", outputPath)
		}
		defer func() {
			// Close flushes; a failure here means the report is incomplete.
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(errors.TypeInternal, "cannot write output file", cerr).WithContext("path", outputPath)
			}
		}()
		w = f
	}

	if err := formatter.Render(w, result); err != nil {
		return errors.Internal("render failed", err)
	}
	if outputPath != "" {
		logging.Info("report written", zap.String("path", outputPath), zap.String("format", string(formatter.Format())))
	}
	return nil
}
