package commands

import (
	"fmt"
	"runtime"

	"github.com/conduit-lang/entitykit/internal/catalog"
	"github.com/conduit-lang/entitykit/internal/cli/config"
	"github.com/conduit-lang/entitykit/internal/cli/ui"
	"github.com/conduit-lang/entitykit/pkg/registry"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// app is the state shared by every command of one invocation
type app struct {
	// Persistent flags
	configPath string
	premium    bool
	noColor    bool
	dump       bool
	output     string

	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Config
}

// setup loads the configuration and builds the logger and registry
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Output.Format = a.output
	}
	if a.noColor {
		cfg.Output.Color = false
	}
	if a.premium {
		cfg.Sections.Default = config.SectionsPremium
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.registry = catalog.NewConfig(cfg.Premium(), logger)

	a.logger.Debug("configuration loaded",
		zap.String("sections", cfg.Sections.Default),
		zap.String("output", cfg.Output.Format),
		zap.Strings("categories", a.registry.Names()),
	)
	return nil
}

// colorless reports whether output must be written without color
func (a *app) colorless() bool {
	return a.cfg == nil || !a.cfg.Output.Color
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "entitykit",
		Short: "Translate loosely-typed documents into typed entities",
		Long: color.CyanString(`entitykit - typed entities from loosely-typed documents

entitykit decodes JSON and YAML documents into strongly-typed catalog entities.

Modes:
  • merge     partial-merge decode: valid fields apply, the rest keep their value
  • validate  strict decode: the first missing or malformed field fails
  • diff      field-wise comparison of two documents`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			if err := a.setup(); err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), a.noColor))
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: entitykit.yml in the current or a parent directory)")
	flags.BoolVar(&a.premium, "premium", false, "Decode sections as premium sections")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&a.dump, "dump", false, "Dump the decoded entity structure")
	flags.StringVarP(&a.output, "output", "o", "", "Output format: json or yaml (default from config)")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newKindsCommand(a))
	rootCmd.AddCommand(newMergeCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newDiffCommand(a))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the entitykit version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "entitykit version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
