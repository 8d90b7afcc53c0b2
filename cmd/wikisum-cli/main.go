// Package main provides the wikisum-cli command-line tool for operating a
// wikisum deployment: config validation, token budgeting, and cache key
// inspection.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	wikisummary "github.com/baam28/wiki-summary"
	"github.com/baam28/wiki-summary/internal/cache"
	"github.com/baam28/wiki-summary/internal/tokens"
	"github.com/baam28/wiki-summary/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "wikisum-cli",
		Short:         "wikisum-cli — Wikipedia summarization service command line tool",
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newValidateCmd(),
		newTokensCmd(),
		newKeyCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a service configuration file (JSON/YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := wikisummary.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			fmt.Printf("✓ Config is valid\n")
			fmt.Printf("  Provider:      %s\n", cfg.Provider)
			fmt.Printf("  Model:         %s\n", cfg.Model)
			fmt.Printf("  Input budget:  %d tokens\n", cfg.MaxInputTokens)
			fmt.Printf("  Output budget: %d tokens\n", cfg.MaxOutputTokens)
			fmt.Printf("  Rate limit:    %d/min (enabled=%t)\n", cfg.RateLimitPerMinute, cfg.RateLimitEnabled)
			fmt.Printf("  Cache TTL:     %ds (enabled=%t)\n", cfg.CacheTTLSeconds, cfg.CacheEnabled)
			return nil
		},
	}
}

func newTokensCmd() *cobra.Command {
	var budget int

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count tokens in a file or stdin, optionally against a budget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}

			text := string(data)
			count := tokens.Count(text)
			fmt.Printf("Tokens: %d\n", count)

			if budget > 0 {
				truncated := tokens.Truncate(text, budget)
				fmt.Printf("Budget: %d\n", budget)
				if truncated == text {
					fmt.Println("Fits within budget.")
				} else {
					fmt.Printf("Truncated to %d tokens (%d bytes of %d kept).\n",
						tokens.Count(truncated), len(truncated), len(text))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&budget, "budget", 0, "report truncation against this token budget")
	return cmd
}

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <query>",
		Short: "Print the cache key a query normalizes to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			fmt.Println(cache.DeriveKey(query))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikisum-cli %s\n", version.String())
		},
	}
}
