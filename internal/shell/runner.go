package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
)

// Command describes one subprocess invocation.
type Command struct {
	// Name is the program, resolved through PATH.
	Name string

	// Args are passed to the program verbatim.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// String renders the command line for logs and error messages.
// Env is left out since it may carry credentials.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes external commands.
type Runner interface {
	// Run starts the command and waits for it to finish.
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner implements Runner with os/exec. Output is streamed rather
// than captured so long uploads show progress.
type ExecRunner struct {
	stdout io.Writer
	stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner that streams child output to stdout and
// stderr. Nil writers discard the output.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &ExecRunner{stdout: stdout, stderr: stderr}
}

// Run executes cmd and waits for it. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	logger := logging.FromContext(ctx)
	logger.Debug("running command", "cmd", cmd.String(), "dir", cmd.Dir, "env", envKeys(cmd.Env))

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "%s interrupted", cmd)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errors.Mark(
				errors.Wrapf(err, "%s exited with code %d", cmd, exitErr.ExitCode()),
				errors.ErrCommandFailed)
		}
		return errors.Mark(errors.Wrapf(err, "starting %s", cmd), errors.ErrCommandFailed)
	}

	logger.Log(ctx, logging.LevelTrace, "command finished", "cmd", cmd.String())
	return nil
}

// LookPath reports the resolved location of a program on PATH.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, "%s not found in PATH", name)
	}
	return path, nil
}

// envKeys returns only the names from KEY=VALUE pairs.
func envKeys(env []string) []string {
	keys := make([]string, 0, len(env))
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		keys = append(keys, key)
	}
	return keys
}
