package recovery

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"time"
)

// FS abstracts filesystem operations to simplify testing.
type FS interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Open(path string) (*os.File, error)
	Create(name string) (*os.File, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	ReadDir(path string) ([]os.DirEntry, error)
}

// CommandRunner executes external tools synchronously.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DeviceBridge is the subset of adb operations the workflow drives.
type DeviceBridge interface {
	Backup(ctx context.Context, packageID, outPath string) error
	Launch(ctx context.Context, packageID string) error
	ForceStop(ctx context.Context, packageID string) error
	Install(ctx context.Context, apkPath string) error
}

// Prompter encapsulates every interactive checkpoint of the flow. The
// console implementation lives in the cmd package; tests inject scripted
// fakes.
type Prompter interface {
	// ConfirmInstall asks whether to (re)install the configured APK.
	ConfirmInstall(ctx context.Context) (bool, error)

	// ConfirmAppClosed asks whether the target app is fully terminated,
	// not merely backgrounded.
	ConfirmAppClosed(ctx context.Context) (bool, error)

	// OfferRelaunch asks whether to relaunch the app so the operator can
	// redo the in-app recovery steps before the next attempt.
	OfferRelaunch(ctx context.Context) (bool, error)

	// AwaitRecoveryDone blocks until the operator finished the in-app steps.
	AwaitRecoveryDone(ctx context.Context) error

	// UnpackPassword asks for the optional backup password. The second
	// return is false when the operator declined to provide one.
	UnpackPassword(ctx context.Context) (password string, provided bool, err error)

	// ExportPassphrase asks (twice, no echo) for the export file passphrase.
	ExportPassphrase(ctx context.Context) (string, error)

	// ConfirmCleanup asks whether to delete the run's on-disk artifacts.
	ConfirmCleanup(ctx context.Context) (bool, error)
}

// Clock abstracts time acquisition for determinism in tests.
type Clock interface {
	Now() time.Time
}

// Deps groups the orchestrator's injectable dependencies. Nil fields fall
// back to os-backed defaults; Prompter and Bridge have no default.
type Deps struct {
	FS      FS
	Command CommandRunner
	Clock   Clock
}

type osFS struct{}

func (osFS) Stat(path string) (os.FileInfo, error)  { return os.Stat(path) }
func (osFS) ReadFile(path string) ([]byte, error)   { return os.ReadFile(path) }
func (osFS) Open(path string) (*os.File, error)     { return os.Open(path) }
func (osFS) Create(name string) (*os.File, error)   { return os.Create(name) }
func (osFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (osFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Remove(path string) error                     { return os.Remove(path) }
func (osFS) RemoveAll(path string) error                  { return os.RemoveAll(path) }
func (osFS) ReadDir(path string) ([]os.DirEntry, error)   { return os.ReadDir(path) }

type osCommandRunner struct{}

func (osCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (d Deps) withDefaults() Deps {
	if d.FS == nil {
		d.FS = osFS{}
	}
	if d.Command == nil {
		d.Command = osCommandRunner{}
	}
	if d.Clock == nil {
		d.Clock = systemClock{}
	}
	return d
}
