package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-scout/internal/analyzer"
	"github.com/sells-group/lead-scout/internal/export"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Audit the quality of a single website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cfg, "analyze")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Analyzer.TimeoutSecs+5)*time.Second)
		defer cancel()

		url := analyzer.NormalizeURL(args[0])
		a, status := env.Pipeline.AnalyzeURL(ctx, url)

		if analyzeJSON {
			return writeJSONTo(cmd.OutOrStdout(), analyzeResponse{URL: url, WebsiteStatus: status, Assessment: a})
		}
		export.Assessment(cmd.OutOrStdout(), url, a, status)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the assessment as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}
