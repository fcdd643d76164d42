package provision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/pkgmgr"
	"github.com/arthur-debert/dotup/pkg/runner"
	"github.com/arthur-debert/dotup/pkg/testutil"
)

type fakeInstaller struct {
	calls int
	err   error
	onRun func()
}

func (f *fakeInstaller) Name() string { return "fake" }

func (f *fakeInstaller) Install(r runner.Runner) error {
	f.calls++
	if f.onRun != nil {
		f.onRun()
	}
	return f.err
}

func aptStrategy(t *testing.T, fake *testutil.FakeRunner) pkgmgr.Strategy {
	t.Helper()
	fake.WithBinary("apt-get", "/usr/bin/apt-get").
		WithBinary("sudo", "/usr/bin/sudo")
	s, err := pkgmgr.Detect(fake)
	require.NoError(t, err)
	return s
}

func TestEnsureSatisfiedLocally(t *testing.T) {
	fake := testutil.NewFakeRunner().
		WithBinary("fzf", "/usr/bin/fzf").
		On("/usr/bin/fzf --version", "0.61.0 (abc1234)\n")
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	outcome, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: &fakeInstaller{},
	})

	require.NoError(t, err)
	assert.Equal(t, Satisfied, outcome.Kind)
	assert.Equal(t, "0.61.0", outcome.Version)
	// Satisfied short-circuits: no metadata query, no install.
	assert.Zero(t, fake.CallCount("apt-cache policy fzf"))
}

func TestEnsureStaleLocalAndStaleCandidateUsesFallback(t *testing.T) {
	// Local fzf reports 0.42, repository candidate 0.58, minimum 0.60:
	// both fail, the fallback runs exactly once.
	fallback := &fakeInstaller{}
	fake := testutil.NewFakeRunner().
		WithBinary("fzf", "/usr/bin/fzf").
		On("/usr/bin/fzf --version", "0.42 (abc1234)\n")
	fake.On("apt-cache policy fzf", aptPolicy("0.58-1"))
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	outcome, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: fallback,
	})

	require.NoError(t, err)
	assert.Equal(t, FallbackUsed, outcome.Kind)
	assert.Equal(t, 1, fallback.calls)
	// The stale candidate must not have been installed.
	assert.Zero(t, fake.InteractiveCallCount("sudo apt-get install -y fzf"))
}

func TestEnsureManagerInstallSucceeds(t *testing.T) {
	// Local fzf absent, candidate 0.61: the manager installs it and the
	// re-checked version passes, so the fallback never runs.
	fallback := &fakeInstaller{}
	fake := testutil.NewFakeRunner()
	fake.On("apt-cache policy fzf", aptPolicy("0.61-1"))
	fake.InteractiveHooks["sudo apt-get install -y fzf"] = func() {
		fake.WithBinary("fzf", "/usr/bin/fzf").
			On("/usr/bin/fzf --version", "0.61 (abc1234)\n")
	}
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	outcome, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: fallback,
	})

	require.NoError(t, err)
	assert.Equal(t, Installed, outcome.Kind)
	assert.Equal(t, "0.61", outcome.Version)
	assert.Zero(t, fallback.calls)
}

func TestEnsureBrokenManagerPromiseFallsThrough(t *testing.T) {
	// The repository advertises 0.61 but the installed binary still
	// reports 0.42. The manager is untrusted for this tool and the
	// fallback takes over; the manager's copy stays in place.
	fallback := &fakeInstaller{}
	fake := testutil.NewFakeRunner().
		WithBinary("fzf", "/usr/bin/fzf").
		On("/usr/bin/fzf --version", "0.42 (abc1234)\n")
	fake.On("apt-cache policy fzf", aptPolicy("0.61-1"))
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	outcome, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: fallback,
	})

	require.NoError(t, err)
	assert.Equal(t, FallbackUsed, outcome.Kind)
	assert.Equal(t, 1, fake.InteractiveCallCount("sudo apt-get install -y fzf"))
	assert.Equal(t, 1, fallback.calls)
}

func TestEnsureManagerInstallErrorFallsThrough(t *testing.T) {
	fallback := &fakeInstaller{}
	fake := testutil.NewFakeRunner()
	fake.On("apt-cache policy fzf", aptPolicy("0.61-1"))
	fake.InteractiveErrs["sudo apt-get install -y fzf"] = assert.AnError
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	outcome, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: fallback,
	})

	require.NoError(t, err)
	assert.Equal(t, FallbackUsed, outcome.Kind)
	assert.Equal(t, 1, fallback.calls)
}

func TestEnsureFallbackFailureIsFatal(t *testing.T) {
	fallback := &fakeInstaller{err: assert.AnError}
	fake := testutil.NewFakeRunner()
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	_, err := p.Ensure(ToolRequirement{
		Command: "fzf", Package: "fzf", MinVersion: "0.60",
		Fallback: fallback,
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFallbackInstall))
}

func TestEnsureMissingFallbackIsFatal(t *testing.T) {
	fake := testutil.NewFakeRunner()
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	_, err := p.Ensure(ToolRequirement{Command: "fzf", Package: "fzf", MinVersion: "0.60"})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFallbackInstall))
}

func TestLocalVersionPrefersLocalBin(t *testing.T) {
	localBin := t.TempDir()
	localCopy := filepath.Join(localBin, "fzf")
	require.NoError(t, os.WriteFile(localCopy, []byte("#!/bin/sh\n"), 0755))

	fake := testutil.NewFakeRunner().
		WithBinary("fzf", "/usr/bin/fzf").
		On("/usr/bin/fzf --version", "0.42 (stale system copy)\n").
		On(localCopy+" --version", "0.61.0 (abc1234)\n")
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, localBin)

	assert.Equal(t, "0.61.0", p.LocalVersion("fzf"))
}

func TestLocalVersionMissingTool(t *testing.T) {
	fake := testutil.NewFakeRunner()
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	assert.Equal(t, "", p.LocalVersion("fzf"))
}

func TestLocalVersionReadsStderrWhenStdoutEmpty(t *testing.T) {
	fake := testutil.NewFakeRunner().WithBinary("oldertool", "/usr/bin/oldertool")
	fake.Responses["/usr/bin/oldertool --version"] = runner.Result{Stderr: "oldertool v1.4.0\n"}
	strategy := aptStrategy(t, fake)
	p := New(fake, strategy, t.TempDir())

	assert.Equal(t, "1.4.0", p.LocalVersion("oldertool"))
}

func aptPolicy(candidate string) string {
	return "fzf:\n  Installed: (none)\n  Candidate: " + candidate + "\n"
}
