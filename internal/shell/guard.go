package shell

import (
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// ErrReleaseRunning indicates another release process holds the workspace.
var ErrReleaseRunning = errors.New("another release is already running")

// ProcessLister returns a snapshot of the process table.
type ProcessLister func() ([]ps.Process, error)

// Guard detects other instances of the release tool.
type Guard struct {
	executable string
	self       int
	parent     int
	list       ProcessLister
}

// NewGuard creates a guard matching processes whose executable name equals
// executable. An empty executable uses the running binary's name.
func NewGuard(executable string) *Guard {
	if executable == "" {
		executable = currentExecutable()
	}
	return &Guard{
		executable: executable,
		self:       os.Getpid(),
		parent:     os.Getppid(),
		list:       ps.Processes,
	}
}

// Executable returns the process name the guard looks for.
func (g *Guard) Executable() string {
	return g.executable
}

// WithLister replaces the process table source. Intended for tests.
func (g *Guard) WithLister(list ProcessLister) *Guard {
	g.list = list
	return g
}

// Check returns ErrReleaseRunning when a process other than this one, its
// parent or its children runs the same executable.
func (g *Guard) Check() error {
	processes, err := g.list()
	if err != nil {
		return errors.Wrap(err, "listing processes")
	}

	for _, p := range processes {
		if p.Pid() == g.self || p.Pid() == g.parent || p.PPid() == g.self {
			continue
		}
		if !sameExecutable(p.Executable(), g.executable) {
			continue
		}
		return errors.Wrapf(ErrReleaseRunning, "pid %d (%s)", p.Pid(), p.Executable())
	}

	return nil
}

func currentExecutable() string {
	path, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return filepath.Base(path)
}

// sameExecutable compares process names. Windows reports the .exe suffix
// and Linux truncates comm to 15 bytes, so both forms are accepted.
func sameExecutable(got, want string) bool {
	got = strings.TrimSuffix(got, ".exe")
	want = strings.TrimSuffix(want, ".exe")
	if got == want {
		return true
	}
	const commLen = 15
	return len(want) > commLen && got == want[:commLen]
}
