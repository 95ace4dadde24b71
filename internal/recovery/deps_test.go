package recovery

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/steamrescue/steamrescue/internal/config"
	"github.com/steamrescue/steamrescue/internal/logging"
	"github.com/steamrescue/steamrescue/internal/toolchain"
	"github.com/steamrescue/steamrescue/internal/types"
)

// fakePrompter scripts every interactive checkpoint. Boolean answer slices
// are consumed per call; when exhausted the zero value falls back to the
// Default* field.
type fakePrompter struct {
	InstallAnswers   []bool
	ClosedAnswers    []bool
	DefaultClosed    bool
	RelaunchAnswers  []bool
	CleanupAnswer    bool
	Password         string
	PasswordProvided bool
	Passphrase       string

	PromptErr error // returned by every method when set

	ClosedCalls   int
	RelaunchCalls int
	AwaitCalls    int
	PasswordCalls int
	CleanupCalls  int
	InstallCalls  int
}

func pop(answers *[]bool, fallback bool) bool {
	if len(*answers) == 0 {
		return fallback
	}
	v := (*answers)[0]
	*answers = (*answers)[1:]
	return v
}

func (p *fakePrompter) ConfirmInstall(context.Context) (bool, error) {
	p.InstallCalls++
	return pop(&p.InstallAnswers, false), p.PromptErr
}

func (p *fakePrompter) ConfirmAppClosed(context.Context) (bool, error) {
	p.ClosedCalls++
	return pop(&p.ClosedAnswers, p.DefaultClosed), p.PromptErr
}

func (p *fakePrompter) OfferRelaunch(context.Context) (bool, error) {
	p.RelaunchCalls++
	return pop(&p.RelaunchAnswers, false), p.PromptErr
}

func (p *fakePrompter) AwaitRecoveryDone(context.Context) error {
	p.AwaitCalls++
	return p.PromptErr
}

func (p *fakePrompter) UnpackPassword(context.Context) (string, bool, error) {
	p.PasswordCalls++
	return p.Password, p.PasswordProvided, p.PromptErr
}

func (p *fakePrompter) ExportPassphrase(context.Context) (string, error) {
	return p.Passphrase, p.PromptErr
}

func (p *fakePrompter) ConfirmCleanup(context.Context) (bool, error) {
	p.CleanupCalls++
	return p.CleanupAnswer, p.PromptErr
}

// fakeBridge scripts adb outcomes. BackupSizes is consumed per Backup call:
// a non-negative value writes an artifact of that many bytes, backupErrMark
// simulates tool exit failure, backupNoFileMark exits cleanly without
// writing anything.
const (
	backupErrMark    int64 = -1
	backupNoFileMark int64 = -2
)

type fakeBridge struct {
	BackupSizes []int64

	BackupCalls    int
	LaunchCalls    int
	ForceStopCalls int
	InstallCalls   int
	InstallErr     error
}

func (b *fakeBridge) Backup(_ context.Context, _ string, outPath string) error {
	b.BackupCalls++
	if len(b.BackupSizes) == 0 {
		return errors.New("fakeBridge: no scripted backup result")
	}
	size := b.BackupSizes[0]
	b.BackupSizes = b.BackupSizes[1:]

	switch size {
	case backupErrMark:
		return errors.New("adb backup: device disconnected")
	case backupNoFileMark:
		return nil
	}
	return os.WriteFile(outPath, make([]byte, size), 0o600)
}

func (b *fakeBridge) Launch(context.Context, string) error {
	b.LaunchCalls++
	return nil
}

func (b *fakeBridge) ForceStop(context.Context, string) error {
	b.ForceStopCalls++
	return nil
}

func (b *fakeBridge) Install(context.Context, string) error {
	b.InstallCalls++
	return b.InstallErr
}

// fakeRunner scripts external command results. Results is consumed per
// call; OnRun (when set) is invoked with the call index so tests can
// materialize side effects like the flat archive.
type fakeRunner struct {
	Results []error
	OnRun   func(call int, name string, args []string)
	Calls   [][]string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := len(r.Calls)
	r.Calls = append(r.Calls, append([]string{name}, args...))
	if r.OnRun != nil {
		r.OnRun(call, name, args)
	}
	if call < len(r.Results) {
		return []byte("scripted output"), r.Results[call]
	}
	return nil, nil
}

// stepClock advances a fixed amount per Now() call for deterministic
// durations.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		WorkDir:        t.TempDir(),
		PackageID:      config.DefaultPackageID,
		MinBackupBytes: 2048,
		MaxAttempts:    5,
	}
}

func testOrchestrator(t *testing.T, cfg *config.Config, bridge *fakeBridge, prompter *fakePrompter, runner *fakeRunner) *Orchestrator {
	t.Helper()
	logger := logging.New(types.LogLevelNone, false)
	logger.SetOutput(io.Discard)

	tools := toolchain.Tools{Adb: "adb", Java: "java", AbeJar: "abe.jar"}
	deps := Deps{
		Clock: &stepClock{now: time.Unix(1700000000, 0), step: time.Second},
	}
	if runner != nil {
		deps.Command = runner
	}
	return New(cfg, logger, tools, bridge, prompter, deps)
}
