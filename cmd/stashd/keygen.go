package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stash-sh/stash/config"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the RSA key pair used to sign session tokens",
	Long: `Generate a PEM-encoded RSA key pair and write it to the
configured private/public key file paths. Existing files are never
overwritten.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().Int("bits", 2048, "RSA key size in bits")

	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	bits, _ := cmd.Flags().GetInt("bits")
	if bits < 2048 {
		return fmt.Errorf("key size %d is below the 2048 bit minimum", bits)
	}

	privPath := cfg.Session.PrivateKeyFile
	pubPath := cfg.Session.PublicKeyFile
	for _, p := range []string{privPath, pubPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("refusing to overwrite existing key file: %s", p)
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	slog.Info("key pair written", "private", privPath, "public", pubPath, "bits", bits)
	return nil
}
