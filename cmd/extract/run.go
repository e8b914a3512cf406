package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/app"
	"github.com/pageza/recipebox/backend/internal/extraction"
	"github.com/pageza/recipebox/backend/internal/models"
)

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Extract a recipe from a link",
	Long: `Run the full pipeline for one link and print the result as JSON.

With --dry-run nothing is written and no database connection is opened.
Without it the recipe is saved for the user given by --user.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "extract without saving")
	runCmd.Flags().String("user", "", "user id to save the recipe for")
	runCmd.Flags().Duration("timeout", 2*time.Minute, "overall deadline")
}

// runOutput is the JSON printed by run.
type runOutput struct {
	Platform    extraction.Platform  `json:"platform"`
	NeedsReview bool                 `json:"needs_review"`
	Generator   string               `json:"generator,omitempty"`
	Cached      bool                 `json:"cached"`
	Attempts    []extraction.Attempt `json:"attempts"`
	Recipe      *models.Recipe       `json:"recipe"`
}

type errorOutput struct {
	Kind    extraction.Kind  `json:"kind"`
	Stage   extraction.Stage `json:"stage,omitempty"`
	Message string           `json:"error"`
	Hint    string           `json:"hint,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	userID, _ := cmd.Flags().GetString("user")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if !dryRun && userID == "" {
		return errors.New("--user is required unless --dry-run is set")
	}
	if err := loadConfig(cmd); err != nil {
		return err
	}
	if err := config.ValidateProviders(cfg); err != nil {
		logger.WithError(err).Warn("Some providers are not configured; their strategies will be skipped")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, logger, app.Options{SkipDatabase: dryRun})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Orchestrator.Extract(ctx, extraction.ExtractRequest{
		URL:    args[0],
		UserID: userID,
		DryRun: dryRun,
	})
	if err != nil {
		var e *extraction.Error
		if errors.As(err, &e) {
			_ = printJSON(cmd.OutOrStdout(), errorOutput{Kind: e.Kind, Stage: e.Stage, Message: e.Message, Hint: e.Hint})
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	return printJSON(cmd.OutOrStdout(), runOutput{
		Platform:    res.Classification.Platform,
		NeedsReview: res.NeedsReview,
		Generator:   res.Generator,
		Cached:      res.Cached,
		Attempts:    res.Attempts,
		Recipe:      res.Recipe,
	})
}
