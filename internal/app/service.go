// Package app sequences the steps that add an entry to a notebook.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alexisbeaulieu97/add-entry/internal/author"
	"github.com/alexisbeaulieu97/add-entry/internal/config"
	"github.com/alexisbeaulieu97/add-entry/internal/entry"
	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/shell"
	"github.com/alexisbeaulieu97/add-entry/internal/theme"
	"github.com/alexisbeaulieu97/add-entry/internal/tui"
	"github.com/alexisbeaulieu97/add-entry/internal/typst"
	"github.com/alexisbeaulieu97/add-entry/pkg/diff"
)

// Service coordinates theme discovery, the entry form and materialization.
type Service struct {
	Executor shell.Executor
	Prompter tui.Prompter
	// Stderr receives user-facing diagnostics and the Typst query's stderr.
	Stderr   io.Writer
	Logger   *logger.Logger
	Now      func() time.Time
	Location *time.Location
}

// Request configures one run.
type Request struct {
	// Root is the notebook directory.
	Root   string
	Config *config.Config
	// DryRun computes the entry and aggregator changes without writing them.
	DryRun bool
}

// Result describes the entry that was created.
type Result struct {
	Entry *entry.Entry
	Paths entry.Paths
	// Theme is the name of the theme whose entry types were offered.
	Theme         string
	FellBack      bool
	DateRecovered bool
	// Preview is set for dry runs only.
	Preview *Preview
}

// Preview is the outcome of a dry run.
type Preview struct {
	Content []byte
	// AggregatorDiff is a line diff of the aggregator before and after the
	// include is appended.
	AggregatorDiff string
}

// AddEntry runs the whole flow. Failures before the entry file is written
// leave the notebook untouched.
func (s *Service) AddEntry(ctx context.Context, req Request) (*Result, error) {
	cfg := req.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := s.Logger.WithFields(map[string]any{"root": req.Root})

	querier := &typst.Querier{
		Executor: s.Executor,
		Shell:    cfg.Shell,
		Typst:    cfg.Typst,
		Package:  cfg.Package,
		Label:    cfg.Label,
		Dir:      req.Root,
		Stderr:   s.stderr(),
		Logger:   log,
	}
	catalog, err := querier.EntryTypes(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := typst.ExtractThemes(filepath.Join(req.Root, filepath.FromSlash(cfg.MainFile)), log)
	if err != nil {
		return nil, err
	}

	resolution, err := theme.Resolve(catalog, candidates, cfg.FallbackTheme)
	if err != nil {
		return nil, err
	}
	if resolution.Fallback {
		fmt.Fprintf(s.stderr(), "Could not find theme in ./%s, defaulting to %s.\n", cfg.MainFile, resolution.Theme.Name)
	}
	if resolution.Ambiguous() {
		log.Warn("theme reference matches several themes", "candidate", resolution.Candidate, "matches", resolution.Matches, "selected", resolution.Theme.Name)
	}

	palette, err := theme.DecodePalette(resolution.Theme.EntryTypes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc := s.location()
	selection, err := s.Prompter.Prompt(ctx, tui.Options{
		EntryTypes: palette,
		Today:      entry.Today(now, loc),
		Author:     author.Lookup(ctx, s.Executor, req.Root, log),
	})
	if err != nil {
		return nil, err
	}
	log.Debug("entry form submitted", "section", selection.Section, "type", selection.EntryType)

	date, parsed := entry.ParseDate(selection.Date, now, loc)
	if !parsed {
		fmt.Fprintln(s.stderr(), entry.DateFailureMessage)
	}

	e, err := entry.NewEntry(selection, entry.FormatDate(date))
	if err != nil {
		return nil, err
	}

	materializer := &entry.Materializer{
		Root:       req.Root,
		EntriesDir: cfg.EntriesDir,
		Aggregator: cfg.Aggregator,
		Escape:     cfg.EscapeStrings,
		Logger:     log,
	}
	res := &Result{
		Entry:         e,
		Theme:         resolution.Theme.Name,
		FellBack:      resolution.Fallback,
		DateRecovered: !parsed,
	}

	if req.DryRun {
		plan, err := materializer.Plan(e)
		if err != nil {
			return nil, err
		}
		label := filepath.ToSlash(cfg.Aggregator)
		res.Paths = plan.Paths
		res.Preview = &Preview{
			Content:        plan.Content,
			AggregatorDiff: diff.Lines(plan.Before, plan.After, "a/"+label, "b/"+label),
		}
		log.Info("dry run, nothing written", "file", plan.Paths.File)
		return res, nil
	}

	paths, err := materializer.Materialize(e)
	if err != nil {
		return nil, err
	}
	res.Paths = paths

	log.Info("entry created", "file", paths.File, "theme", resolution.Theme.Name)
	return res, nil
}

func (s *Service) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}
