package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sitegen/internal/ai"
	"sitegen/internal/generator"
	"sitegen/internal/models"
)

var (
	genType  string
	genTitle string
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Run the provider chain once and print the result as JSON",
	Long:  `generate runs the configured primary and secondary providers for one description and prints the site as JSON. Nothing is written to the database.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wt := models.WebsiteType(genType)
		if !wt.Valid() {
			return fmt.Errorf("unknown website type %q", genType)
		}

		// Logs go to stderr so stdout stays valid JSON.
		cfg, closeLog, err := setup(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		gen := generator.FromRegistry(ai.NewRegistry(cfg.ProviderConfigs()), cfg.PrimaryProvider, cfg.SecondaryProvider)
		res := gen.Generate(cmd.Context(), generator.Request{
			Description: strings.Join(args, " "),
			WebsiteType: wt,
			Title:       genTitle,
		})
		return writeResult(cmd, res)
	},
}

type generateOutput struct {
	Stage     string         `json:"stage"`
	Provider  string         `json:"provider"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Attempts  []attemptLine  `json:"attempts"`
	Site      generator.Site `json:"site"`
}

type attemptLine struct {
	Stage    string `json:"stage"`
	Provider string `json:"provider"`
	Error    string `json:"error,omitempty"`
}

func writeResult(cmd *cobra.Command, res generator.Result) error {
	out := generateOutput{
		Stage:     res.Stage,
		Provider:  res.Provider,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Site:      res.Site,
	}
	for _, a := range res.Attempts {
		line := attemptLine{Stage: a.Stage, Provider: a.Provider}
		if a.Err != nil {
			line.Error = a.Err.Error()
		}
		out.Attempts = append(out.Attempts, line)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	generateCmd.Flags().StringVarP(&genType, "type", "t", string(models.WebsiteTypeLandingPage),
		"website type: portfolio, ecommerce, blog or landing_page")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "site title (defaults to \"<Type> - AI Generated\")")
}
