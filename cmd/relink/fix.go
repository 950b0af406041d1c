package main

import (
	"path/filepath"

	"github.com/matsen/relink/internal/match"
	"github.com/matsen/relink/internal/relink"
	"github.com/spf13/cobra"
)

var fixOutputPath string

func init() {
	fixCmd.Flags().StringVarP(&fixOutputPath, "output", "o", "", "Path for the corrected document (required)")
	fixCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(fixCmd)
}

var fixCmd = &cobra.Command{
	Use:   "fix <document.docx>",
	Short: "Write a corrected copy with relinked citations",
	Long: `Run the full reconciliation and write a new document in which every
matched orphan's URIs are replaced with the canonical library URI. The
original document is never modified; unmatched orphans keep their stale
URIs and are reported instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

// FixResponse is the response for the fix command.
type FixResponse struct {
	Status       string `json:"status"`
	Output       string `json:"output"`
	Replacements int    `json:"replacements"`
	*relink.Result
}

func runFix(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	if samePath(docPath, fixOutputPath) {
		exitWithError(ExitError, "output path must differ from the input document")
	}

	doc := mustReadDocument(docPath)
	snap := mustLoadSnapshot()
	idx := match.NewIndex(snap.Records)
	opts := buildOptions(snap)

	res, replaced, err := relink.Fix(doc, idx, opts, fixOutputPath)
	if err != nil {
		exitWithError(analyzeExitCode(err), "fixing document: %v", err)
	}

	if humanOutput {
		outputHuman("Replaced %d URI(s) across %d matched item(s)\n", replaced, res.Matched)
		if n := res.UnlocatedCount(); n > 0 {
			outputHuman("%d matched URI(s) could not be located in the document text and were left unchanged\n", n)
		}
		if res.Unmatched > 0 {
			outputHuman("%d orphaned item(s) had no match and were left unchanged\n", res.Unmatched)
		}
		outputHuman("Corrected document saved to: %s\n", fixOutputPath)
		outputHuman("\nOpen the document in Word with Zotero running and click Refresh to verify links.\n")
		return nil
	}
	return outputJSON(FixResponse{
		Status:       "ok",
		Output:       fixOutputPath,
		Replacements: replaced,
		Result:       res,
	})
}

// samePath reports whether two paths spell the same file once cleaned to
// absolute form.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
