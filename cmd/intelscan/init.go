package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/intelscan/intelscan/internal/config"
)

//go:embed templates/intelscan.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new intelscan configuration file",
		Long: `Init creates a new .intelscan configuration file in the current directory.

The generated file documents every setting with its default value
commented out: database location, results directory, timeouts, the
User-Agent header, DNS resolver, and Tor proxy address.

Examples:
  # Create .intelscan in current directory
  intelscan init

  # Create config file at a specific path
  intelscan init -o myconfig.yaml

  # Force overwrite existing file
  intelscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/intelscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to adjust settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Database and results locations")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Request timeout and User-Agent")
	fmt.Fprintln(cmd.OutOrStdout(), "  - DNS resolver and Tor proxy addresses")

	return nil
}
