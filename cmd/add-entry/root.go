package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/add-entry/internal/app"
	"github.com/alexisbeaulieu97/add-entry/internal/config"
	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/shell"
	"github.com/alexisbeaulieu97/add-entry/internal/tui"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

type rootFlags struct {
	verbose bool
	dryRun  bool
	dir     string
}

// deps are the collaborators the root command wires into the service.
type deps struct {
	executor shell.Executor
	prompter tui.Prompter
	now      func() time.Time
}

func defaultDeps() deps {
	return deps{
		executor: shell.OSExecutor{},
		prompter: tui.TerminalPrompter{},
		now:      time.Now,
	}
}

func newRootCmd(d deps) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "add-entry",
		Short:         "Scaffold a new entry in a Notebookinator notebook",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddEntry(cmd, flags, d)
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Preview the entry without writing anything")
	cmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "Notebook root (defaults to the current directory)")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runAddEntry(cmd *cobra.Command, flags *rootFlags, d deps) error {
	root, err := notebookRoot(flags.dir)
	if err != nil {
		return newCommandError("add entry", "resolve notebook directory", err, "Pass an existing directory with --dir")
	}

	cfg, err := config.Load(root)
	if err != nil {
		return newCommandError("add entry", "load "+config.FileName, err, "Fix or remove "+filepath.Join(root, config.FileName))
	}

	stderr := cmd.ErrOrStderr()
	log, err := newLogger(cfg, flags, stderr)
	if err != nil {
		return newCommandError("add entry", "configure logging", err, "Use one of trace, debug, info, warn or error for log_level")
	}

	svc := &app.Service{
		Executor: d.executor,
		Prompter: d.prompter,
		Stderr:   stderr,
		Logger:   log,
		Now:      d.now,
	}

	res, err := svc.AddEntry(cmd.Context(), app.Request{Root: root, Config: cfg, DryRun: flags.dryRun})
	if err != nil {
		log.Debug("add entry failed", "kind", string(apperrors.KindOf(err)))
		return describeFailure(err)
	}

	rel, relErr := filepath.Rel(root, res.Paths.File)
	if relErr != nil {
		rel = res.Paths.File
	}
	rel = filepath.ToSlash(rel)

	out := cmd.OutOrStdout()
	if res.Preview != nil {
		fmt.Fprintf(out, "Would create %s:\n%s\n\n%s", rel, res.Preview.Content, res.Preview.AggregatorDiff)
		return nil
	}
	fmt.Fprintf(out, "Created %s\n", rel)
	return nil
}

func notebookRoot(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func newLogger(cfg *config.Config, flags *rootFlags, out io.Writer) (*logger.Logger, error) {
	level := cfg.LogLevel
	if flags.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:         level,
		HumanReadable: true,
		Writer:        out,
		Component:     "add-entry",
	})
}
