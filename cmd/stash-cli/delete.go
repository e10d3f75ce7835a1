package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <key> [key...]",
	Aliases: []string{"rm"},
	Short:   "Delete values from the server",
	Long: `Delete one or more keys. Deleting a key that does not exist
succeeds.

Examples:
  stash-cli delete greeting
  stash-cli delete old-a old-b old-c`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(_ *cobra.Command, args []string) error {
	c, save, err := getClient()
	if err != nil {
		return err
	}

	// save even on failure: error responses carry a re-signed token too
	var deleteErr error
	for _, key := range args {
		if deleteErr = c.Delete(context.Background(), key); deleteErr != nil {
			break
		}
		fmt.Printf("deleted %q\n", key)
	}

	if err := save(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return deleteErr
}
