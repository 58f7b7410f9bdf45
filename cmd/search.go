package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
)

var (
	searchCity     string
	searchState    string
	searchCountry  string
	searchCategory string
	searchLeads    int
	searchFormat   string
	searchOut      string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find opportunity leads for a category and location",
	Example: `  lead-scout search --city Pune --state Maharashtra --country India --category Bakery
  lead-scout search --city Austin --country USA --category Plumber --leads 25 --format xlsx --out leads.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(searchFormat)
		if err != nil {
			return err
		}
		if format == export.FormatXLSX && searchOut == "" {
			return eris.New("search: --out is required for xlsx output")
		}

		env, err := initPipeline(cfg, "search")
		if err != nil {
			return err
		}

		criteria := model.SearchCriteria{
			City:          searchCity,
			State:         searchState,
			Country:       searchCountry,
			Category:      searchCategory,
			NumberOfLeads: searchLeads,
		}
		applySearchBounds(&criteria, cfg.Search)

		result, err := env.Pipeline.Run(cmd.Context(), criteria)
		if err != nil {
			return err
		}

		zap.L().Info("search complete",
			zap.String("run_id", result.RunID),
			zap.Int("leads", result.Total),
			zap.Bool("partial", result.Partial),
		)

		return writeOutput(cmd.OutOrStdout(), searchOut, format, result)
	},
}

// writeOutput renders result to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, format export.Format, result *model.SearchResult) error {
	if path == "" {
		return export.Write(stdout, format, result)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "search: create %s", path)
	}
	if err := export.Write(f, format, result); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "search: close %s", path)
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchCity, "city", "", "city to search (required)")
	f.StringVar(&searchState, "state", "", "state or region")
	f.StringVar(&searchCountry, "country", "", "country (required)")
	f.StringVar(&searchCategory, "category", "", "business category, e.g. Bakery (required)")
	f.IntVar(&searchLeads, "leads", 0, "number of leads to analyze (default from config, max 50)")
	f.StringVar(&searchFormat, "format", "table", "output format: table, json, csv or xlsx")
	f.StringVarP(&searchOut, "out", "o", "", "write output to file instead of stdout")
	_ = searchCmd.MarkFlagRequired("city")
	_ = searchCmd.MarkFlagRequired("country")
	_ = searchCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(searchCmd)
}
