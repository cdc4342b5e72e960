// Package author finds the default author name for a new entry.
package author

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/shell"
)

// Lookup returns `git config --get user.name` run in dir, trimmed. Any failure
// yields "". When git itself is not installed the configuration is read
// directly: the repository at dir merged with the global scope, or the global
// scope alone outside a repository.
func Lookup(ctx context.Context, executor shell.Executor, dir string, log *logger.Logger) string {
	if executor == nil {
		return ""
	}

	result, err := executor.Run(ctx, shell.Command{
		Name:   "git",
		Args:   []string{"config", "--get", "user.name"},
		Dir:    dir,
		Stderr: io.Discard,
	})
	switch {
	case err == nil:
		return strings.TrimSpace(string(result.Stdout))
	case errors.Is(err, exec.ErrNotFound):
		log.Debug("git not installed, reading git config directly", "dir", dir)
		return fromConfigFiles(dir, log)
	default:
		log.Debug("git author lookup failed", "error", err.Error(), "stderr", result.Stderr)
		return ""
	}
}

func fromConfigFiles(dir string, log *logger.Logger) string {
	if dir != "" {
		repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
		if err == nil {
			cfg, err := repo.ConfigScoped(config.GlobalScope)
			if err == nil {
				return strings.TrimSpace(cfg.User.Name)
			}
			log.Debug("reading repository git config failed", "error", err.Error())
		}
	}

	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		log.Debug("reading global git config failed", "error", err.Error())
		return ""
	}
	return strings.TrimSpace(cfg.User.Name)
}
