package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the session for the active profile.

If the profile has no token yet, this mints a new session and saves
its token to the profile.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	c, save, err := getClient()
	if err != nil {
		return err
	}

	// save even on failure: error responses carry a re-signed token too
	info, statusErr := c.Status(context.Background())
	if err := save(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if statusErr != nil {
		return statusErr
	}

	fmt.Printf("client:    %s\n", info.Client)
	fmt.Printf("ttl:       %ds\n", info.TTL)
	fmt.Printf("issued at: %s\n", info.IssuedAt)
	fmt.Printf("expires:   %s\n", info.ExpireAt)
	return nil
}
