// Package cli provides the command-line interface for ingrid-dsc.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/commands"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/config"
	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli/output"
	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapter"

	// Register the catalog adapters.
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/duckdb"
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/postgres"
	_ "github.com/fp-wemove/ingrid-iplug-dsc/pkg/adapters/sqlite"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ingrid-dsc",
		Short: "ingrid-dsc - IGC catalog to IDF mapper",
		Long: `ingrid-dsc maps the objects of an InGrid catalog (IGC/UDK database)
to ISO 19139 IDF documents and search index fields.

Records are read from a Postgres, SQLite or DuckDB catalog. Mapped documents
are kept in a local state database, exported as files or served over HTTP.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help, completion and version commands
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, config.LoggerKey(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			logger.Debug("catalog target", "type", cfg.Target.Type, "host", cfg.Target.Host, "path", cfg.Target.Path)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ingrid-dsc.yaml)")
	rootCmd.PersistentFlags().String("target-type", "", "Catalog database type (postgres|sqlite|duckdb)")
	rootCmd.PersistentFlags().String("database", "", "Catalog database name or file")
	rootCmd.PersistentFlags().String("state", "", "Path to state database")
	rootCmd.PersistentFlags().String("index-script", "", "Index mapping script (file or preset:<name>)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes, cobra.ShellCompDirectiveNoFileComp
	})

	// Register completion for target type flag
	_ = rootCmd.RegisterFlagCompletionFunc("target-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewMapCommand())
	rootCmd.AddCommand(commands.NewIndexCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ingrid-dsc.

To load completions:

Bash:
  $ source <(ingrid-dsc completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ ingrid-dsc completion bash > /etc/bash_completion.d/ingrid-dsc
  # macOS:
  $ ingrid-dsc completion bash > $(brew --prefix)/etc/bash_completion.d/ingrid-dsc

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ingrid-dsc completion zsh > "${fpath[1]}/_ingrid-dsc"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ ingrid-dsc completion fish | source

  # To load completions for each session, execute once:
  $ ingrid-dsc completion fish > ~/.config/fish/completions/ingrid-dsc.fish

PowerShell:
  PS> ingrid-dsc completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> ingrid-dsc completion powershell > ingrid-dsc.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
