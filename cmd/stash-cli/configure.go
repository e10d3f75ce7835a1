package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/stash-sh/stash/client"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

Profiles save a server endpoint together with the session token it last
issued, so every invocation continues the same session. Switch between
servers with --profile.

Configuration is stored in ~/.stash/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for the endpoint URL and whether to set the
profile as default. The endpoint connection is tested before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	cfg, err := client.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'stash-cli configure add <name>' to create one.")
		return nil
	}

	defaultProfile, _ := cfg.GetDefaultProfile()
	for _, p := range cfg.Profiles {
		marker := " "
		if defaultProfile != nil && p.Name == defaultProfile.Name {
			marker = "*"
		}
		session := "no session"
		if p.Token != "" {
			session = "has session"
		}
		fmt.Printf("%s %-20s %-40s %s\n", marker, p.Name, p.Endpoint, session)
	}
	return nil
}

func runConfigureAdd(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	cfg, err := client.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	existingProfile, _ := cfg.GetProfile(name)
	if existingProfile != nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Profile '%s' already exists. Update it", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	endpointPrompt := promptui.Prompt{
		Label:   "Endpoint URL",
		Default: client.DefaultEndpoint,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("endpoint URL is required")
			}
			parsedURL, parseErr := url.Parse(input)
			if parseErr != nil {
				return fmt.Errorf("invalid URL: %w", parseErr)
			}
			if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
				return errors.New("URL must start with http:// or https://")
			}
			return nil
		},
	}
	endpointURL, err := endpointPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	setAsDefault := false
	if len(cfg.Profiles) == 0 {
		setAsDefault = true
	} else {
		defaultPrompt := promptui.Prompt{
			Label:     "Set as default profile",
			IsConfirm: true,
		}
		if _, promptErr := defaultPrompt.Run(); promptErr == nil {
			setAsDefault = true
		}
	}

	fmt.Print("Testing connection... ")
	if connErr := testServerConnection(endpointURL); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: Could not connect to server: %v\n", connErr)

		continuePrompt := promptui.Prompt{
			Label:     "Save profile anyway",
			IsConfirm: true,
		}
		if _, promptErr := continuePrompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		fmt.Println("OK")
	}

	newProfile := client.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(endpointURL, "/"),
		Default:  setAsDefault,
	}

	if setAsDefault {
		for i := range cfg.Profiles {
			cfg.Profiles[i].Default = false
		}
	}

	if existingProfile != nil {
		if err := cfg.UpdateProfile(newProfile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	} else if err := cfg.AddProfile(newProfile); err != nil {
		return fmt.Errorf("add profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if existingProfile != nil {
		fmt.Printf("Profile '%s' updated.\n", name)
	} else {
		fmt.Printf("Profile '%s' added.\n", name)
	}

	if setAsDefault {
		fmt.Printf("Set as default profile.\n")
	}

	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	cfg, err := client.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Remove profile '%s'", name),
		IsConfirm: true,
	}
	if _, promptErr := prompt.Run(); promptErr != nil {
		fmt.Println("Cancelled.")
		return nil //nolint:nilerr // User cancelled, not an error
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	cfg, err := client.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", name)
	return nil
}

// testServerConnection checks that the endpoint answers at all. Any
// HTTP response counts as reachable.
func testServerConnection(endpointURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
