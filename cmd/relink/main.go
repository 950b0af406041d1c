// Package main provides the relink CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// Shared pipeline flags, resolved against env and global config.
var (
	zoteroPathFlag string
	thresholdFlag  int
	uriPrefixFlag  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relink",
	Short: "Repair orphaned Zotero citations in Word documents",
	Long: `relink reconciles broken Zotero citations in a .docx document against
your local Zotero library.

Citations whose stored URIs no longer resolve are matched back to library
items using a tiered strategy: exact DOI, exact ISBN, fuzzy title/author/year,
then title-only as a strict fallback. All commands output JSON by default
for easy integration with other tools; pass --human for prose.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&zoteroPathFlag, "zotero-path", "z", "", "Path to Zotero data directory or zotero.sqlite")
	rootCmd.PersistentFlags().IntVarP(&thresholdFlag, "threshold", "t", -1, "Fuzzy match threshold, 0-100 (default 80)")
	rootCmd.PersistentFlags().StringVar(&uriPrefixFlag, "uri-prefix", "", "Library-scope prefix for rewritten URIs (default: derived from the library account)")
	rootCmd.Version = Version
}
