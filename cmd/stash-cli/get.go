package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read the value stored under a key",
	Long: `Read the value stored under a key and write it to stdout.

JSON values print as JSON, string values as text and blob values as
base64.

Examples:
  stash-cli get greeting
  stash-cli get settings | jq .`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(_ *cobra.Command, args []string) error {
	c, save, err := getClient()
	if err != nil {
		return err
	}

	// save even on failure: error responses carry a re-signed token too
	body, _, getErr := c.Get(context.Background(), args[0])
	if err := save(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if getErr != nil {
		return getErr
	}

	_, err = os.Stdout.Write(body)
	return err
}
