package main

import (
	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/backend/internal/extraction"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <url>",
	Short: "Show the platform and identifiers detected for a link",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	c := extraction.Classify(args[0])
	return printJSON(cmd.OutOrStdout(), struct {
		extraction.Classification
		Author       string `json:"author,omitempty"`
		ThumbnailURL string `json:"thumbnail_url,omitempty"`
	}{c, c.Author(), c.ThumbnailURL()})
}
