package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stash-sh/stash/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "stashd",
	Short:   "Session-scoped typed item storage server",
	Long: `Stashd is a small storage server that keeps one typed value
(string, json or blob) per key, scoped to the caller's bearer-token
session. Sessions are minted on first contact and re-signed on every
response; the server itself stays stateless.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: STASH_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: stash.db, env: STASH_DATABASE_DSN)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		files = append(files, configFile)
	}
	return config.Load(files, cmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
