package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	putJSON bool
	putFile string
)

var putCmd = &cobra.Command{
	Use:   "put <key> [value]",
	Short: "Store a value under a key",
	Long: `Store a value under a key, replacing any previous value.

The value comes from the argument, from --file, or from stdin when
neither is given. Values are stored as strings unless --json is set.

Examples:
  stash-cli put greeting "hello there"
  stash-cli put settings --json '{"volume": 7}'
  cat report.json | stash-cli put report --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().BoolVar(&putJSON, "json", false, "store the value as JSON")
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", "read the value from a file")
}

func runPut(_ *cobra.Command, args []string) error {
	key := args[0]

	var body []byte
	switch {
	case putFile != "":
		raw, err := os.ReadFile(putFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", putFile, err)
		}
		body = raw
	case len(args) > 1:
		body = []byte(args[1])
	default:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		body = raw
	}

	contentType := "text/plain"
	if putJSON {
		contentType = "application/json"
	}

	c, save, err := getClient()
	if err != nil {
		return err
	}

	// save even on failure: error responses carry a re-signed token too
	info, putErr := c.Put(context.Background(), key, contentType, body)
	if err := save(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if putErr != nil {
		return putErr
	}

	fmt.Printf("stored %q (updated %s)\n", info.Key, info.UpdatedAt)
	return nil
}
