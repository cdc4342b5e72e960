// Package shell runs the external commands add-entry depends on: the shell
// wrapping the Typst CLI and git.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// GitBashPath is the Git for Windows bash used when no shell is configured.
const GitBashPath = `C:\Program Files\Git\usr\bin\bash.exe`

// Command describes a process to run.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Stderr receives the child's standard error as it is produced. When nil
	// the parent's standard error is used.
	Stderr io.Writer
}

// String renders the command for error messages.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result captures what a finished command produced.
type Result struct {
	Stdout []byte
	Stderr string
}

// Executor runs commands. Tests substitute fakes.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// OSExecutor runs commands with os/exec.
type OSExecutor struct{}

var _ Executor = OSExecutor{}

// Run starts the command and waits for it. Stdout is collected; stderr is
// streamed through to Command.Stderr while also being collected.
func (OSExecutor) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)
	}

	err := cmd.Run()

	return Result{
		Stdout: stdoutBuf.Bytes(),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}, err
}

// Determine returns the shell used to run scripts: explicit when set, the Git
// for Windows bash on Windows, bash elsewhere.
func Determine(explicit string) string {
	return determineFor(runtime.GOOS, explicit)
}

func determineFor(goos, explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	if goos == "windows" {
		return GitBashPath
	}
	return "bash"
}
