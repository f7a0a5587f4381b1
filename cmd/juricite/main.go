// juricite crawls a judicial-metadata site and incrementally assembles a
// deduplicated per-citation dataset keyed by canonical law identifier.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coolbeans/juricite/internal/config"
	"github.com/coolbeans/juricite/pkg/cite"
	"github.com/coolbeans/juricite/pkg/crawler"
)

var version = "0.1.0"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "juricite",
		Short: "Judicial-metadata citation crawler",
		Long: `juricite crawls a judicial-metadata website, extracts structured legal
citations (law + article + canonical identifier) from XML and HTML, and
incrementally assembles a deduplicated per-citation dataset across runs.`,
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(crawlCmd(&configPath))
	rootCmd.AddCommand(statsCmd(&configPath))
	rootCmd.AddCommand(replayCmd(&configPath))
	rootCmd.AddCommand(parseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine loads configuration and builds the crawl engine.
func newEngine(configPath string, sitemapOverride string) (*crawler.Engine, error) {
	fileConfig, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	crawlConfig := fileConfig.CrawlerConfig()
	if sitemapOverride != "" {
		crawlConfig.SitemapIndexURL = sitemapOverride
	}
	crawlConfig.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	return crawler.New(crawlConfig)
}

func crawlCmd(configPath *string) *cobra.Command {
	var sitemapURL string

	command := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl pass (resumes from persisted state)",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(*configPath, sitemapURL)
			if err != nil {
				return err
			}
			if engine.Config().SitemapIndexURL == "" {
				return fmt.Errorf("no sitemap index URL configured (set sitemap_index_url or pass --sitemap)")
			}

			report, err := engine.Run(context.Background())
			if err != nil {
				return err
			}

			return printJSON(report)
		},
	}
	command.Flags().StringVar(&sitemapURL, "sitemap", "", "sitemap index URL (overrides config)")
	return command
}

func statsCmd(configPath *string) *cobra.Command {
	var sitemapURL string

	command := &cobra.Command{
		Use:   "stats",
		Short: "Print crawl-state and store counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(*configPath, sitemapURL)
			if err != nil {
				return err
			}

			_, reconciliation, errorLog := engine.Stores()
			pendingReconciliations, err := reconciliation.Pending()
			if err != nil {
				return err
			}
			loggedErrors, err := errorLog.Size()
			if err != nil {
				return err
			}

			state := engine.State()
			return printJSON(map[string]int{
				"completed_batches":       len(state.CompletedBatches),
				"completed_items":         len(state.CompletedItems),
				"pending_reconciliations": pendingReconciliations,
				"logged_errors":           loggedErrors,
			})
		},
	}
	command.Flags().StringVar(&sitemapURL, "sitemap", "", "sitemap index URL (overrides config)")
	return command
}

func replayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Merge reconciliation entries whose identifier has been filled in",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(*configPath, "")
			if err != nil {
				return err
			}

			citations, reconciliation, _ := engine.Stores()
			mergedCount, err := reconciliation.Replay(citations)
			if err != nil {
				return err
			}

			fmt.Printf("merged %d reconciled element(s)\n", mergedCount)
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <citation line>",
		Short: "Run one citation line through the pattern cascade (debug)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match := cite.ParseLine(args[0])
			return printJSON(map[string]any{
				"kind":     match.Kind.String(),
				"law_key":  match.LawKey,
				"law_name": match.LawName,
				"date":     match.Date,
				"articles": match.Articles,
				"counter":  match.Counter,
			})
		},
	}
}

func printJSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
