// Command effisensectl runs maintenance tasks against the EffiSense database.
package main

import (
	"effisense-go/internal/config"
	"effisense-go/pkg/database"
	"effisense-go/pkg/log"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "effisensectl",
	Short: "Maintenance tasks for EffiSense",
	Long: `effisensectl migrates the schema, fills an account with demo data and
runs the usage simulator outside the web server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init(cfgFile)
		log.Init(config.Conf.Log.Level, config.Conf.Log.Format, config.Conf.Log.OutputPath)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./configs/config.yaml", "config file")
}

// openDB opens and migrates the configured database.
func openDB() error {
	database.Init(config.Conf.Database)
	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
