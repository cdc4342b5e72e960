package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads FileName from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	p := filepath.Join(dir, FileName)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return ParseConfig(p)
}

// ParseConfig loads a settings file, layering it over the defaults, and
// validates the result.
func ParseConfig(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, apperrors.NewParseError(p, 0, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewParseError(p, extractLine(err), err)
	}

	normalize(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Shell = strings.TrimSpace(cfg.Shell)
	cfg.Typst = strings.TrimSpace(cfg.Typst)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	for _, field := range []*string{&cfg.MainFile, &cfg.EntriesDir, &cfg.Aggregator} {
		if *field != "" && isNotebookPath(*field) {
			*field = path.Clean(*field)
		}
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
