package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
	"github.com/mishamyrt/commitfmt-release/internal/shell/mocks"
)

const binary = "commitfmt"

type workspace struct {
	root    string
	dist    string
	npm     string
	pypi    string
	readme  string
	locator *artifact.Locator
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func write(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
}

// newWorkspace lays out build outputs for every key plus npm and PyPI
// package trees, including a directory that maps to no platform and a
// hidden directory.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	w := &workspace{
		root:   root,
		dist:   filepath.Join(root, "target", "distrib"),
		npm:    filepath.Join(root, "packaging", "npm"),
		pypi:   filepath.Join(root, "packaging", "pypi"),
		readme: filepath.Join(root, "README.md"),
	}
	w.locator = artifact.NewLocator(w.dist, binary)

	for _, k := range artifact.Keys() {
		path, err := w.locator.Path(k)
		require.NoError(t, err)
		write(t, path, "binary for "+k.String(), 0o755)
	}

	write(t, w.readme, "# commitfmt\n", 0o644)

	write(t, filepath.Join(w.npm, binary, "package.json"), `{"name": "commitfmt"}`, 0o644)
	for _, k := range artifact.Keys() {
		write(t, filepath.Join(w.npm, NPMPackageName(binary, k), "package.json"), `{}`, 0o644)
	}
	write(t, filepath.Join(w.npm, "scratch-notes", "package.json"), `{}`, 0o644)
	write(t, filepath.Join(w.npm, "scratch-notes", "notes.txt"), "keep me", 0o644)
	mkdir(t, w.npm, ".git")

	for _, goos := range []string{"darwin", "linux", "windows"} {
		pkg := PyPIPackageName(binary, goos)
		write(t, filepath.Join(w.pypi, pkg, "pyproject.toml"), "[project]\nversion = \"1.0.0\"\n", 0o644)
		mkdir(t, w.pypi, pkg, pkg)
	}
	mkdir(t, w.pypi, ".venv")

	return w
}

func (w *workspace) npmStrategy(runner shell.Runner) *NPM {
	return NewNPM(NPMConfig{Root: w.npm}, w.locator, runner)
}

func (w *workspace) pypiStrategy(runner shell.Runner, token string) *PyPI {
	return NewPyPI(PyPIConfig{Root: w.pypi, Python: "python3", Readme: w.readme, Token: token}, w.locator, runner)
}

func testContext(t *testing.T) context.Context {
	return logging.NewContext(t.Context(), logging.ForTest(t))
}

func TestNPM_Targets(t *testing.T) {
	s := NewNPM(NPMConfig{Root: "npm"}, artifact.NewLocator("dist", binary), nil)

	tests := []struct {
		pkg    string
		want   []Target
		wantOK bool
	}{
		{"commitfmt-darwin-arm64", []Target{{artifact.Key{OS: "darwin", Arch: "arm64"}, "commitfmt"}}, true},
		{"commitfmt-linux-x64", []Target{{artifact.Key{OS: "linux", Arch: "x64"}, "commitfmt"}}, true},
		{"commitfmt-windows-x64", []Target{{artifact.Key{OS: "windows", Arch: "x64"}, "commitfmt.exe"}}, true},
		{"commitfmt", nil, false},
		{"scratch-notes", nil, false},
		{"commitfmt-linux-amd64", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			got, ok := s.Targets(tt.pkg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPyPI_Targets(t *testing.T) {
	s := NewPyPI(PyPIConfig{Root: "pypi"}, artifact.NewLocator("dist", binary), nil)

	got, ok := s.Targets("commitfmt_windows")
	require.True(t, ok)
	assert.Equal(t, []Target{
		{artifact.Key{OS: "windows", Arch: "x64"}, filepath.Join("commitfmt_windows", "commitfmt_amd64.exe")},
		{artifact.Key{OS: "windows", Arch: "arm64"}, filepath.Join("commitfmt_windows", "commitfmt_arm64.exe")},
	}, got)

	got, ok = s.Targets("commitfmt_darwin")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, artifact.ArchX64, got[0].Key.Arch, "x64 comes first")
	assert.Equal(t, filepath.Join("commitfmt_darwin", "commitfmt_arm64"), got[1].Dest)

	_, ok = s.Targets("commitfmt_freebsd")
	assert.False(t, ok)
}

func TestPublisher_NPM(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	var dirs []string
	runner.EXPECT().Run(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, cmd shell.Command) error {
		assert.Equal(t, "npm", cmd.Name)
		assert.Equal(t, []string{"publish"}, cmd.Args)
		assert.Empty(t, cmd.Env)
		dirs = append(dirs, filepath.Base(cmd.Dir))
		return nil
	})

	var out bytes.Buffer
	p := New(w.npmStrategy(runner), w.locator, WithOutput(&out))
	require.NoError(t, p.Run(testContext(t)))

	assert.Equal(t, []string{
		"commitfmt",
		"commitfmt-darwin-arm64",
		"commitfmt-darwin-x64",
		"commitfmt-linux-arm64",
		"commitfmt-linux-x64",
		"commitfmt-windows-arm64",
		"commitfmt-windows-x64",
		"scratch-notes",
	}, dirs, "every non-hidden package is published in name order")

	for _, k := range artifact.Keys() {
		dest := filepath.Join(w.npm, NPMPackageName(binary, k), w.locator.FileName(k))
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "binary for "+k.String(), string(data))
	}

	assert.Contains(t, out.String(), "Copying binaries...\n")
	assert.Contains(t, out.String(), " → "+filepath.Join(w.npm, "commitfmt-linux-x64", "commitfmt")+"\n")
	assert.Contains(t, out.String(), "- commitfmt-windows-x64\n")
	assert.NotContains(t, out.String(), "Copying assets...")
}

func TestPublisher_UnmappedPackageUntouched(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)
	runner.EXPECT().Run(mock.Anything, mock.Anything).Return(nil)

	scratch := filepath.Join(w.npm, "scratch-notes")
	before, err := os.ReadDir(scratch)
	require.NoError(t, err)

	p := New(w.npmStrategy(runner), w.locator)
	plan, err := p.Plan([]string{"commitfmt", "scratch-notes"})
	require.NoError(t, err)
	assert.Empty(t, plan.Binaries, "neither package maps to a platform")

	require.NoError(t, p.Run(testContext(t)))

	after, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
	data, err := os.ReadFile(filepath.Join(scratch, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestPublisher_PlanIsDeterministic(t *testing.T) {
	w := newWorkspace(t)
	p := New(w.pypiStrategy(nil, "pypi-token"), w.locator)

	packages, err := p.Packages()
	require.NoError(t, err)
	assert.Equal(t, []string{"commitfmt_darwin", "commitfmt_linux", "commitfmt_windows"}, packages)

	first, err := p.Plan(packages)
	require.NoError(t, err)
	second, err := p.Plan(packages)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first.Binaries, 6)
	var got []string
	for _, a := range first.Binaries {
		rel, err := filepath.Rel(w.pypi, a.Dest)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"commitfmt_darwin/commitfmt_darwin/commitfmt_amd64",
		"commitfmt_darwin/commitfmt_darwin/commitfmt_arm64",
		"commitfmt_linux/commitfmt_linux/commitfmt_amd64",
		"commitfmt_linux/commitfmt_linux/commitfmt_arm64",
		"commitfmt_windows/commitfmt_windows/commitfmt_amd64.exe",
		"commitfmt_windows/commitfmt_windows/commitfmt_arm64.exe",
	}, got)

	require.Len(t, first.Assets, 3)
	for _, a := range first.Assets {
		assert.Equal(t, w.readme, a.Source)
		assert.Equal(t, "README.md", filepath.Base(a.Dest))
	}
}

func TestPublisher_CopiesAreReproducible(t *testing.T) {
	w := newWorkspace(t)
	p := New(w.npmStrategy(nil), w.locator)

	packages, err := p.Packages()
	require.NoError(t, err)
	plan, err := p.Plan(packages)
	require.NoError(t, err)

	first, err := p.Copy(t.Context(), plan)
	require.NoError(t, err)
	second, err := p.Copy(t.Context(), plan)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 6)
}

func TestPublisher_CopyPreservesModeAndTime(t *testing.T) {
	w := newWorkspace(t)
	k := artifact.Key{OS: artifact.OSLinux, Arch: artifact.ArchX64}
	src, err := w.locator.Path(k)
	require.NoError(t, err)

	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dest := filepath.Join(w.npm, "commitfmt-linux-x64", "commitfmt")
	write(t, dest, "stale", 0o600)

	p := New(w.npmStrategy(nil), w.locator)
	plan, err := p.Plan([]string{"commitfmt-linux-x64"})
	require.NoError(t, err)
	_, err = p.Copy(t.Context(), plan)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestPublisher_PyPI(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	var calls []string
	runner.EXPECT().Run(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, cmd shell.Command) error {
		pkg := filepath.Base(cmd.Dir)
		calls = append(calls, pkg+": "+cmd.String())

		if cmd.String() == "python3 -m build" {
			write(t, filepath.Join(cmd.Dir, "dist", pkg+"-1.0.0.tar.gz"), "sdist", 0o644)
			write(t, filepath.Join(cmd.Dir, "dist", pkg+"-1.0.0-py3-none-any.whl"), "wheel", 0o644)
			return nil
		}

		assert.Equal(t, []string{"TWINE_USERNAME=__token__", "TWINE_PASSWORD=pypi-secret"}, cmd.Env)
		return nil
	})

	// stale artifact from an earlier build must not be uploaded
	write(t, filepath.Join(w.pypi, "commitfmt_linux", "dist", "commitfmt_linux-0.9.0.tar.gz"), "old", 0o644)

	var out bytes.Buffer
	p := New(w.pypiStrategy(runner, "pypi-secret"), w.locator, WithOutput(&out))
	require.NoError(t, p.Run(testContext(t)))

	upload := func(pkg string) string {
		return pkg + ": python3 -m twine upload " +
			filepath.Join("dist", pkg+"-1.0.0-py3-none-any.whl") + " " +
			filepath.Join("dist", pkg+"-1.0.0.tar.gz") +
			" --repository pypi --non-interactive"
	}
	assert.Equal(t, []string{
		"commitfmt_darwin: python3 -m build",
		upload("commitfmt_darwin"),
		"commitfmt_linux: python3 -m build",
		upload("commitfmt_linux"),
		"commitfmt_windows: python3 -m build",
		upload("commitfmt_windows"),
	}, calls)

	for _, pkg := range []string{"commitfmt_darwin", "commitfmt_linux", "commitfmt_windows"} {
		data, err := os.ReadFile(filepath.Join(w.pypi, pkg, "README.md"))
		require.NoError(t, err)
		assert.Equal(t, "# commitfmt\n", string(data))
	}

	data, err := os.ReadFile(filepath.Join(w.pypi, "commitfmt_linux", "commitfmt_linux", "commitfmt_arm64"))
	require.NoError(t, err)
	assert.Equal(t, "binary for linux/arm64", string(data))

	text := out.String()
	assert.Less(t, strings.Index(text, "Copying assets..."), strings.Index(text, "Copying binaries..."))
	assert.Less(t, strings.Index(text, "Copying binaries..."), strings.Index(text, "Publishing packages..."))
	assert.NotContains(t, text, "pypi-secret")
}

func TestPublisher_MissingCredential(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	p := New(w.pypiStrategy(runner, ""), w.locator)
	err := p.Run(testContext(t))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingCredential))
	assert.Equal(t, errors.ExitUser, errors.Classify(err).Code)

	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	for _, pkg := range []string{"commitfmt_darwin", "commitfmt_linux", "commitfmt_windows"} {
		assert.NoFileExists(t, filepath.Join(w.pypi, pkg, "README.md"))
		assert.NoFileExists(t, filepath.Join(w.pypi, pkg, pkg, "commitfmt_amd64"))
	}
}

func TestPublisher_MissingArtifact(t *testing.T) {
	for _, eco := range []string{"npm", "pypi"} {
		t.Run(eco, func(t *testing.T) {
			w := newWorkspace(t)
			runner := mocks.NewMockRunner(t)

			missing, err := w.locator.Path(artifact.Key{OS: artifact.OSLinux, Arch: artifact.ArchX64})
			require.NoError(t, err)
			require.NoError(t, os.Remove(missing))

			var s Strategy = w.npmStrategy(runner)
			if eco == "pypi" {
				s = w.pypiStrategy(runner, "pypi-token")
			}

			err = New(s, w.locator).Run(testContext(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, artifact.ErrArtifactMissing))
			assert.Contains(t, err.Error(), "linux/x64")

			runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
			assert.NoFileExists(t, filepath.Join(w.npm, "commitfmt-darwin-arm64", "commitfmt"),
				"no copy happens before every source is resolved")
			assert.NoFileExists(t, filepath.Join(w.pypi, "commitfmt_darwin", "README.md"))
		})
	}
}

func TestPublisher_MissingManifest(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)
	require.NoError(t, os.Remove(filepath.Join(w.npm, "commitfmt-linux-arm64", "package.json")))

	err := New(w.npmStrategy(runner), w.locator).Run(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingManifest))
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestPublisher_UnmappedDirectoryWithoutManifest(t *testing.T) {
	w := newWorkspace(t)
	// Publishing would run npm publish in scratch-notes, so the run stops
	// before anything is copied.
	runner := mocks.NewMockRunner(t)
	require.NoError(t, os.Remove(filepath.Join(w.npm, "scratch-notes", "package.json")))

	err := New(w.npmStrategy(runner), w.locator).Run(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingManifest))
	assert.Contains(t, err.Error(), "scratch-notes")
	assert.NoFileExists(t, filepath.Join(w.npm, "commitfmt-linux-x64", "commitfmt"))
	assert.FileExists(t, filepath.Join(w.npm, "scratch-notes", "notes.txt"))
}

func TestPublisher_MissingNestedDirectory(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)
	nested := filepath.Join(w.pypi, "commitfmt_windows", "commitfmt_windows")
	require.NoError(t, os.Remove(nested))

	err := New(w.pypiStrategy(runner, "pypi-token"), w.locator).Run(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDestination))
	assert.NoDirExists(t, nested)
}

func TestPublisher_FailFast(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	var dirs []string
	runner.EXPECT().Run(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, cmd shell.Command) error {
		pkg := filepath.Base(cmd.Dir)
		dirs = append(dirs, pkg)
		if pkg == "commitfmt-darwin-x64" {
			return errors.Mark(errors.New("npm publish exited with code 1"), errors.ErrCommandFailed)
		}
		return nil
	})

	err := New(w.npmStrategy(runner), w.locator).Run(testContext(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing commitfmt-darwin-x64")
	assert.True(t, errors.Is(err, errors.ErrCommandFailed))
	assert.Equal(t, errors.ExitSystem, errors.Classify(err).Code)
	assert.Equal(t, []string{"commitfmt", "commitfmt-darwin-arm64", "commitfmt-darwin-x64"}, dirs)
}

func TestPublisher_EmptyDist(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)
	runner.EXPECT().Run(mock.Anything, mock.Anything).Return(nil).Once()

	err := New(w.pypiStrategy(runner, "pypi-token"), w.locator).Run(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDist))
}

type busyGuard struct{}

func (busyGuard) Check() error { return shell.ErrReleaseRunning }

func TestPublisher_Guard(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	err := New(w.npmStrategy(runner), w.locator, WithGuard(busyGuard{})).Run(testContext(t))
	assert.True(t, errors.Is(err, shell.ErrReleaseRunning))
	assert.NoFileExists(t, filepath.Join(w.npm, "commitfmt-linux-x64", "commitfmt"))
}

func TestPublisher_Cancelled(t *testing.T) {
	w := newWorkspace(t)
	runner := mocks.NewMockRunner(t)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	err := New(w.npmStrategy(runner), w.locator).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
