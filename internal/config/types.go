// Package config loads the optional per-notebook settings file.
package config

import (
	"github.com/alexisbeaulieu97/add-entry/internal/theme"
	"github.com/alexisbeaulieu97/add-entry/internal/typst"
)

// FileName is the settings file looked up in the notebook root.
const FileName = ".add-entry.yaml"

// Config holds the settings that tailor add-entry to a notebook layout.
type Config struct {
	// Package is the Notebookinator import queried for themes.
	Package string `yaml:"package" validate:"required,typst_package"`
	// Label tags the metadata emitted by the query script.
	Label         string `yaml:"label" validate:"required,typst_label"`
	FallbackTheme string `yaml:"fallback_theme" validate:"omitempty,excludesall=/"`
	MainFile      string `yaml:"main_file" validate:"required,notebook_path"`
	EntriesDir    string `yaml:"entries_dir" validate:"required,notebook_path"`
	Aggregator    string `yaml:"aggregator" validate:"required,notebook_path"`
	// Shell overrides the shell used to run the Typst query.
	Shell         string `yaml:"shell"`
	Typst         string `yaml:"typst" validate:"required"`
	EscapeStrings bool   `yaml:"escape_strings"`
	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Package:       typst.DefaultPackage,
		Label:         typst.DefaultLabel,
		FallbackTheme: theme.DefaultFallback,
		MainFile:      "main.typ",
		EntriesDir:    "entries",
		Aggregator:    "entries/entries.typ",
		Typst:         typst.DefaultBinary,
		LogLevel:      "warn",
	}
}
