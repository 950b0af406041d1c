package main

import (
	"os"

	"github.com/matsen/relink/internal/match"
	"github.com/matsen/relink/internal/relink"
	"github.com/matsen/relink/internal/report"
	"github.com/spf13/cobra"
)

var reportPath string

func init() {
	checkCmd.Flags().StringVar(&reportPath, "report", "", "Also write the text report to this file")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <document.docx>",
	Short: "Find orphaned citations and their library matches",
	Long: `Extract every Zotero citation from the document, classify each cited
item against the library, and match orphaned items back to library records.
Nothing is written; use 'relink fix' to produce a corrected document.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// CheckResponse is the response for the check command.
type CheckResponse struct {
	Document     string `json:"document"`
	LibraryItems int    `json:"library_items"`
	Threshold    int    `json:"threshold"`
	*relink.Result
}

func runCheck(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	doc := mustReadDocument(docPath)

	snap := mustLoadSnapshot()
	idx := match.NewIndex(snap.Records)
	opts := buildOptions(snap)

	res, err := relink.Analyze(doc.Body(), idx, opts)
	if err != nil {
		exitWithError(analyzeExitCode(err), "analyzing document: %v", err)
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(report.Render(res, opts.Threshold)), 0o644); err != nil {
			exitWithError(ExitError, "writing report: %v", err)
		}
	}

	if humanOutput {
		outputHuman("%s", report.Render(res, opts.Threshold))
		return nil
	}
	return outputJSON(CheckResponse{
		Document:     docPath,
		LibraryItems: idx.Len(),
		Threshold:    opts.Threshold,
		Result:       res,
	})
}
