package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stash-sh/stash/client"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:     "stash-cli",
	Version: version,
	Short:   "Client for the stash storage server",
	Long: `stash-cli - client for the stash session storage server.

Each call sends the profile's current session token and saves the
refreshed token the server returns, so the session follows the profile
across invocations. A profile with no token earns a fresh session on
its first call.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.stash/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (default: the default profile)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return client.DefaultConfigPath()
}

// getClient loads the selected profile and builds a client seeded with
// its saved token. The returned save func persists the refreshed token
// back to the profile.
func getClient() (*client.Client, func() error, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := client.LoadConfigFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	profile, err := cfg.GetProfile(profileName)
	if err != nil {
		return nil, nil, err
	}

	c, err := client.New(profile.Endpoint, client.WithToken(profile.Token))
	if err != nil {
		return nil, nil, err
	}

	save := func() error {
		if c.Token() == profile.Token {
			return nil
		}
		profile.Token = c.Token()
		return cfg.Save(configPath)
	}

	return c, save, nil
}
