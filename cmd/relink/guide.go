package main

import (
	"os"

	"github.com/matsen/relink/internal/match"
	"github.com/matsen/relink/internal/relink"
	"github.com/matsen/relink/internal/report"
	"github.com/spf13/cobra"
)

var guideOutputPath string

func init() {
	guideCmd.Flags().StringVarP(&guideOutputPath, "output", "o", "", "Write the guide to this file instead of stdout")
	rootCmd.AddCommand(guideCmd)
}

var guideCmd = &cobra.Command{
	Use:   "guide <document.docx>",
	Short: "Generate a manual relinking guide",
	Long: `Generate step-by-step instructions for manually relinking each orphaned
citation in Word, with the matched library item to search for where one
was found.`,
	Args: cobra.ExactArgs(1),
	RunE: runGuide,
}

func runGuide(cmd *cobra.Command, args []string) error {
	doc := mustReadDocument(args[0])
	snap := mustLoadSnapshot()
	idx := match.NewIndex(snap.Records)
	opts := buildOptions(snap)

	res, err := relink.Analyze(doc.Body(), idx, opts)
	if err != nil {
		exitWithError(analyzeExitCode(err), "analyzing document: %v", err)
	}

	guide := report.RenderGuide(res)
	if guideOutputPath != "" {
		if err := os.WriteFile(guideOutputPath, []byte(guide), 0o644); err != nil {
			exitWithError(ExitError, "writing guide: %v", err)
		}
		if humanOutput {
			outputHuman("Manual relinking guide saved to: %s\n", guideOutputPath)
		} else {
			outputJSON(map[string]string{"status": "ok", "path": guideOutputPath})
		}
		return nil
	}

	outputHuman("%s", guide)
	return nil
}
