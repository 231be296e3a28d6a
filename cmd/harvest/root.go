// Package main provides the entry point for the harvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for harvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawl web pages and extract clean structured content",
		Long: `harvest is a web content ingestion tool. Starting from a seed URL it
safely fetches a bounded set of linked pages, extracts titles, metadata,
headings, main text, links, and images from HTML or RSS/Atom bodies, and
merges everything into one document tree.

Private, loopback, and link-local targets are refused before any network
call so the tool cannot be pointed at internal infrastructure by accident.
Use --allow-private to crawl intranet or development servers deliberately.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
