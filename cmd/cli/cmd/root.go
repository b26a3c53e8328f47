// Package cmd provides the CLI commands for remit-pricing.
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"remit-pricing/internal/bootstrap"
	"remit-pricing/internal/config"
	"remit-pricing/internal/logging"
	"remit-pricing/internal/version"
)

var (
	cfgFile  string
	seedFile string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "remit-pricing",
	Short: "Resolve remittance fees and taxes",
	Long: `remit-pricing resolves the pricing rule and taxes that govern a
remittance transaction and prints the itemized fee.

Examples:
  remit-pricing quote --seed refdata.hcl --partner <id> --service <id> \
      --corridor <id> --channel Online --amount 100
  remit-pricing refdata validate --seed refdata.yaml
  remit-pricing config show`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, json or yaml (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "reference data seed file; selects the memory backend")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}
	if seedFile != "" {
		cfg.Storage.Backend = "memory"
		cfg.Storage.SeedFile = seedFile
	}
	config.Set(cfg)

	// Logs go to stderr so command output stays parseable
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	if verbose {
		logCfg.Level = "debug"
	} else if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	if err := logging.Initialize(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// openApp wires the engine from the global configuration
func openApp(cmd *cobra.Command) (*bootstrap.App, error) {
	return bootstrap.New(cmd.Context(), config.Get())
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "remit-pricing version %s\n", version.String())
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *config.Get()
		if cfg.Cache.RedisPassword != "" {
			cfg.Cache.RedisPassword = "********"
		}
		out, err := yaml.Marshal(&cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
