// Package recovery drives the staged extraction pipeline: device backup,
// unpack, expand, and secret discovery, with the operator in the loop at
// every checkpoint.
package recovery

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/steamrescue/steamrescue/internal/config"
	"github.com/steamrescue/steamrescue/internal/logging"
	"github.com/steamrescue/steamrescue/internal/toolchain"
)

// backupClass classifies the outcome of one backup attempt.
type backupClass int

const (
	classValid backupClass = iota
	classTooSmall
	classToolFailed
)

// StageResult records one pipeline stage for the end-of-run summary.
type StageResult struct {
	Name     string
	Status   string
	Duration time.Duration
}

// Orchestrator owns the whole recovery flow. All state lives in the
// configured workspace directory; the orchestrator itself only tracks the
// per-stage summary.
type Orchestrator struct {
	cfg    *config.Config
	logger *logging.Logger
	tools  toolchain.Tools

	fs     FS
	cmd    CommandRunner
	clock  Clock
	bridge DeviceBridge
	prompt Prompter

	stages []StageResult
}

// New builds an orchestrator. Bridge and prompter are required; the Deps
// fields default to os-backed implementations when nil.
func New(cfg *config.Config, logger *logging.Logger, tools toolchain.Tools, bridge DeviceBridge, prompter Prompter, deps Deps) *Orchestrator {
	deps = deps.withDefaults()
	return &Orchestrator{
		cfg:    cfg,
		logger: logger,
		tools:  tools,
		fs:     deps.FS,
		cmd:    deps.Command,
		clock:  deps.Clock,
		bridge: bridge,
		prompt: prompter,
	}
}

// Run executes the full pipeline and prints recovered secrets to out.
// Stages are strictly sequential: each must fully complete before the next
// starts, and any stage failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context, out io.Writer) error {
	if err := o.fs.MkdirAll(o.cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace %s: %w", o.cfg.WorkDir, err)
	}

	if err := o.runStage("install", func() error { return o.maybeInstall(ctx) }); err != nil {
		return err
	}
	if err := o.runStage("backup", func() error {
		_, err := o.CreateBackup(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := o.runStage("unpack", func() error { return o.Unpack(ctx) }); err != nil {
		return err
	}
	if err := o.runStage("expand", func() error { return o.Expand() }); err != nil {
		return err
	}

	var findings []Finding
	if err := o.runStage("discovery", func() error {
		var err error
		findings, err = o.Discover()
		return err
	}); err != nil {
		return err
	}

	if err := o.runStage("report", func() error { return o.Report(ctx, findings, out) }); err != nil {
		return err
	}

	o.cleanup(ctx)
	o.PrintSummary(out)
	return nil
}

// runStage times fn and records its outcome for the summary.
func (o *Orchestrator) runStage(name string, fn func() error) error {
	start := o.clock.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	o.stages = append(o.stages, StageResult{
		Name:     name,
		Status:   status,
		Duration: o.clock.Now().Sub(start),
	})
	return err
}

// maybeInstall offers to (re)install the configured legacy APK. Without a
// configured APK the stage is silently skipped.
func (o *Orchestrator) maybeInstall(ctx context.Context) error {
	if o.cfg.ApkPath == "" || o.cfg.SkipInstall {
		o.logger.Skip("APK installation step skipped")
		return nil
	}
	o.logger.Step("Optional: install the legacy app version that still permits device backups")
	install, err := o.prompt.ConfirmInstall(ctx)
	if err != nil {
		return mapAbort(err)
	}
	if !install {
		o.logger.Skip("Keeping the currently installed app version")
		return nil
	}
	if err := o.bridge.Install(ctx, o.cfg.ApkPath); err != nil {
		return fmt.Errorf("failed to install %s: %w", o.cfg.ApkPath, err)
	}
	o.logger.Info("Installed %s", o.cfg.ApkPath)
	return nil
}

// CreateBackup drives the bounded backup retry loop and returns the size of
// the validated artifact.
//
// Per attempt: the operator confirms the app is fully closed (declining
// consumes the attempt without invoking the tool), any previous artifact is
// deleted, the backup runs, and the result is classified. Artifacts smaller
// than the configured threshold are the known placeholder produced when the
// app was still running.
func (o *Orchestrator) CreateBackup(ctx context.Context) (int64, error) {
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		o.logger.Step("Backup attempt %d/%d", attempt, o.cfg.MaxAttempts)

		closed, err := o.prompt.ConfirmAppClosed(ctx)
		if err != nil {
			return 0, mapAbort(err)
		}
		if !closed {
			o.logger.Warning("Attempt %d skipped: close the app completely (swipe it away in recent apps) and try again", attempt)
			continue
		}

		size, class, attemptErr := o.attemptBackup(ctx)
		switch class {
		case classValid:
			o.logger.Info("Backup artifact is valid (%d bytes)", size)
			return size, nil
		case classTooSmall:
			o.logger.Warning("Backup artifact is only %d bytes (minimum %d); the app was most likely still running", size, o.cfg.MinBackupBytes)
		case classToolFailed:
			o.logger.Warning("Backup tool failed: %v", attemptErr)
		}

		if attempt < o.cfg.MaxAttempts {
			if err := o.offerRecovery(ctx); err != nil {
				return 0, err
			}
		}
	}
	return 0, fmt.Errorf("%w: no valid artifact after %d attempts; make sure the app is fully closed and the device backup prompt is approved without a password", ErrBackupInvalid, o.cfg.MaxAttempts)
}

// attemptBackup performs one backup invocation and classifies the result.
func (o *Orchestrator) attemptBackup(ctx context.Context) (int64, backupClass, error) {
	artifact := o.cfg.ArtifactPath()

	// Each attempt starts from a clean slate; a stale artifact from a
	// previous attempt must never be classified.
	if err := o.fs.Remove(artifact); err != nil && !os.IsNotExist(err) {
		return 0, classToolFailed, fmt.Errorf("failed to remove previous artifact: %w", err)
	}

	o.logger.Info("Unlock the device and approve the full-backup prompt. Leave the password fields empty.")
	if err := o.bridge.Backup(ctx, o.cfg.PackageID, artifact); err != nil {
		return 0, classToolFailed, err
	}

	info, err := o.fs.Stat(artifact)
	if err != nil {
		return 0, classToolFailed, fmt.Errorf("backup tool exited cleanly but produced no artifact: %w", err)
	}
	if info.Size() < o.cfg.MinBackupBytes {
		return info.Size(), classTooSmall, nil
	}
	return info.Size(), classValid, nil
}

// offerRecovery optionally relaunches the app so the operator can redo the
// in-app recovery steps, then force-stops it again. Never forced.
func (o *Orchestrator) offerRecovery(ctx context.Context) error {
	relaunch, err := o.prompt.OfferRelaunch(ctx)
	if err != nil {
		return mapAbort(err)
	}
	if !relaunch {
		return nil
	}

	if err := o.bridge.Launch(ctx, o.cfg.PackageID); err != nil {
		// Launch failing is not fatal to the retry loop; the operator can
		// open the app by hand.
		o.logger.Warning("Could not launch %s: %v", o.cfg.PackageID, err)
	}
	o.logger.Info("Redo the in-app recovery steps, then continue here.")
	if err := o.prompt.AwaitRecoveryDone(ctx); err != nil {
		return mapAbort(err)
	}
	if err := o.bridge.ForceStop(ctx, o.cfg.PackageID); err != nil {
		return fmt.Errorf("failed to force-stop %s: %w", o.cfg.PackageID, err)
	}
	o.logger.Info("App force-stopped")
	return nil
}

// cleanup offers to delete the run's on-disk artifacts. Failures and
// declines only log; the recovery result is already printed.
func (o *Orchestrator) cleanup(ctx context.Context) {
	if o.cfg.KeepArtifacts {
		o.logger.Skip("Keeping workspace artifacts in %s", o.cfg.WorkDir)
		return
	}
	remove, err := o.prompt.ConfirmCleanup(ctx)
	if err != nil || !remove {
		o.logger.Info("Workspace artifacts kept in %s; they contain your secrets, delete them when done", o.cfg.WorkDir)
		return
	}
	for _, path := range []string{o.cfg.ArtifactPath(), o.cfg.FlatArchivePath(), o.cfg.TreePath()} {
		if err := o.fs.RemoveAll(path); err != nil {
			o.logger.Warning("Could not remove %s: %v", path, err)
		}
	}
	o.logger.Info("Workspace artifacts removed")
}

// Stages returns the recorded per-stage results.
func (o *Orchestrator) Stages() []StageResult {
	return o.stages
}
