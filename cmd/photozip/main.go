package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/photozip/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "photozip",
	Short:   "Stream photo directories as zip archives over HTTP",
	Long: `Photozip serves every subdirectory of a photo root as a zip archive.
Each directory gets a stable token; GET /archive/<token>/ streams the
archive as the archiver produces it, without buffering it on disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("photos-dir", "", "photo root directory (default: test_photos, env: PHOTOS_DIR, PHOTOZIP_PHOTOS_DIR)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: PHOTOZIP_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
