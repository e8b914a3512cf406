package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/logging"
)

var (
	verbose bool
	cfg     *config.Config
	logger  *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the recipe extraction pipeline from the command line",
	Long: `extract drives the same pipeline as POST /api/v1/extract.

Example usage:
  extract classify https://youtu.be/dQw4w9WgXcQ     # Show how a link is understood
  extract run --dry-run https://example.com/recipe  # Extract without saving
  extract run --user 42 https://youtu.be/abc123     # Extract and save for user 42
  extract token --user 42                           # Mint a bearer token for local testing`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig reads the environment the same way the API server does.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	level := c.LogLevel
	if verbose {
		level = "debug"
	}
	cfg = c
	logger = logging.NewWithOutput(cmd.ErrOrStderr(), level, c.LogFormat)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
