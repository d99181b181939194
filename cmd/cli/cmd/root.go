// Package cmd provides the CLI commands for mua-risk.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mua-risk/adapters/analysisfile"
	"mua-risk/core/output"
	"mua-risk/internal/config"
	"mua-risk/internal/logging"
)

// Version is set at build time with -ldflags "-X mua-risk/cmd/cli/cmd.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mua-risk",
	Short: "Measurement uncertainty budgets and guard-band risk",
	Long: `mua-risk combines uncertainty components into a measurement uncertainty
budget, derives the expanded uncertainty, TUR and TAR, and sizes a guard band
for a target consumer risk.

Examples:
  mua-risk compute bench.hcl
  mua-risk compute --format json --student-t bench.yaml
  mua-risk compute --format pdf --output budget.pdf bench.hcl
  mua-risk watch bench.hcl
  mua-risk serve --addr :8080`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	// Add subcommands
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func initConfig() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// analysisDefaults are the settings analysis files inherit from the config
func analysisDefaults(cfg *config.Config) analysisfile.Defaults {
	return analysisfile.Defaults{
		UseStudentT:        cfg.Analysis.UseStudentT,
		TargetConsumerRisk: cfg.Analysis.TargetConsumerRisk,
	}
}

func outputOptions(cfg *config.Config) output.Options {
	opts := output.Options{
		Precision:      cfg.Analysis.Precision,
		NoColor:        cfg.Output.NoColor,
		ShowComponents: cfg.Output.ShowComponents,
		Verbosity:      1,
	}
	if verbose {
		opts.Verbosity = 2
	}
	return opts
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mua-risk version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(config.Get())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
