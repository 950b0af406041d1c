package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/relink/internal/config"
	"github.com/matsen/relink/internal/docx"
	"github.com/matsen/relink/internal/library"
	"github.com/matsen/relink/internal/match"
	"github.com/matsen/relink/internal/relink"
)

// ZoteroPathEnv overrides the Zotero data location between flag and config.
const ZoteroPathEnv = "ZOTERO_DATA_DIR"

// resolveZoteroPath picks the Zotero location: flag, then environment,
// then global config, then empty (platform discovery).
func resolveZoteroPath(cfg *config.GlobalConfig) string {
	if zoteroPathFlag != "" {
		return zoteroPathFlag
	}
	if p := os.Getenv(ZoteroPathEnv); p != "" {
		return config.ExpandTilde(p)
	}
	return cfg.ZoteroPath
}

// resolveThreshold picks the fuzzy threshold: flag, then config, then the
// engine default. The flag default of -1 means unset, so an explicit 0 is
// a valid threshold; a config value of 0 means unset. Exits on an
// out-of-range value.
func resolveThreshold(cfg *config.GlobalConfig) int {
	t := thresholdFlag
	if t == -1 {
		t = cfg.Threshold
		if t == 0 {
			t = match.DefaultThreshold
		}
	}
	if t < 0 || t > 100 {
		exitWithError(ExitError, "threshold must be between 0 and 100, got %d", t)
	}
	return t
}

// mustLoadSnapshot locates and loads the Zotero library or exits.
func mustLoadSnapshot() *library.Snapshot {
	// Allow ZOTERO_DATA_DIR to come from a .env file alongside the document
	_ = godotenv.Load()

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	dbPath, err := library.FindDatabase(resolveZoteroPath(cfg))
	if err != nil {
		exitWithError(ExitConfigError,
			"could not find Zotero database; specify it with --zotero-path (common locations: ~/Zotero/zotero.sqlite)")
	}

	snap, err := library.Load(dbPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading Zotero library: %v", err)
	}
	return snap
}

// buildOptions resolves the run options against config and the snapshot's
// account identity.
func buildOptions(snap *library.Snapshot) relink.Options {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	prefix := uriPrefixFlag
	if prefix == "" {
		prefix = cfg.URIPrefix
	}
	if prefix == "" {
		prefix = snap.BaseURI()
	}
	return relink.Options{
		Threshold: resolveThreshold(cfg),
		URIPrefix: prefix,
	}
}

// mustReadDocument reads the input document or exits.
func mustReadDocument(path string) *docx.Document {
	doc, err := docx.Read(path)
	if err != nil {
		exitWithError(ExitDataError, "reading document: %v", err)
	}
	return doc
}

// analyzeExitCode maps an analysis error to an exit code.
func analyzeExitCode(err error) int {
	if errors.Is(err, docx.ErrNoFields) {
		return ExitDataError
	}
	return ExitError
}
