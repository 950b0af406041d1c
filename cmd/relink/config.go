package main

import (
	"github.com/matsen/relink/internal/config"
	"github.com/matsen/relink/internal/match"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long:  `Show the global config file location and the effective settings after flag and environment resolution.`,
	RunE:  runConfig,
}

// ConfigResponse is the response for the config command.
type ConfigResponse struct {
	Path       string `json:"path"`
	ZoteroPath string `json:"zotero_path,omitempty"`
	Threshold  int    `json:"threshold"`
	URIPrefix  string `json:"uri_prefix,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	resp := ConfigResponse{
		Path:       config.GlobalConfigPath(),
		ZoteroPath: resolveZoteroPath(cfg),
		Threshold:  resolveThreshold(cfg),
		URIPrefix:  uriPrefixFlag,
	}
	if resp.URIPrefix == "" {
		resp.URIPrefix = cfg.URIPrefix
	}

	if humanOutput {
		outputHuman("Config file:  %s\n", resp.Path)
		outputHuman("Zotero path:  %s\n", orDefault(resp.ZoteroPath, "(auto-discover)"))
		outputHuman("Threshold:    %d (title-only fallback fixed at %d)\n", resp.Threshold, match.FallbackTitleThreshold)
		outputHuman("URI prefix:   %s\n", orDefault(resp.URIPrefix, "(derived from library account)"))
		return nil
	}
	return outputJSON(resp)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
