// Package cli holds the phageplot command tree.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/config"
)

// Version is reported by --version and logged at startup.
const Version = "0.1.0"

// NewRootCmd builds a fresh command tree. Every call returns independent
// flag state, so tests can execute commands side by side.
func NewRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:     "phageplot",
		Short:   "Comparative genome maps for bacteriophages",
		Version: Version,
		Long: `phageplot turns annotated phage genomes and pairwise BLAST results into
a stacked genome map: one track per genome, CDS boxes by strand and
similarity ribbons between neighbouring tracks colored by identity.`,
		SilenceUsage:               true,
		SuggestionsMinimumDistance: 3,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Try load env
			if err := godotenv.Load(); err != nil {
				logger.Debug("No .env found, using local environment")
			}

			skip := map[string]string{}
			cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					skip[f.Name] = f.Value.String()
				}
			})
			if err := config.ApplyEnv(cmd.Root().PersistentFlags(), config.EnvPrefix, skip); err != nil {
				return err
			}

			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			if err := logger.InitLogger(level); err != nil {
				return err
			}
			logger.Debug("Start:", zap.String("Version", Version), zap.String("command", cmd.Name()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML file with option overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	configPath := func() string { return configFile }
	rootCmd.AddCommand(
		newBuildCmd(configPath),
		newPlotCmd(configPath),
		newBlastCmd(configPath),
		newServeCmd(configPath),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
