package main

import (
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/conf"
	mediadata "github.com/lk2023060901/media-attached-filter/internal/media/data"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *conf.Config
	log     *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mafctl",
	Short: "Media attached filter maintenance CLI",
	Long: `mafctl runs the media attached filter against the configured database.

Example usage:
  mafctl migrate                 # Create or update the content table
  mafctl token 1                 # Mint an administrator token for user 1
  mafctl suggest "launch"        # Show title suggestions for a keyword
  mafctl resolve "Launch Post"   # Show which parent a title filters to`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	cfg, err = conf.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if verbose {
		log = logger.Development()
	} else {
		log = logger.Nop()
	}
	return nil
}

// openDB connects to the configured database and migrates the content table.
func openDB() (*database.DB, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := mediadata.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}
	return db, nil
}
