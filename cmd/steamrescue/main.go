package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/steamrescue/steamrescue/internal/adb"
	"github.com/steamrescue/steamrescue/internal/cli"
	"github.com/steamrescue/steamrescue/internal/config"
	"github.com/steamrescue/steamrescue/internal/input"
	"github.com/steamrescue/steamrescue/internal/logging"
	"github.com/steamrescue/steamrescue/internal/recovery"
	"github.com/steamrescue/steamrescue/internal/toolchain"
	"github.com/steamrescue/steamrescue/internal/types"
)

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "steamrescue: internal error: %v\n", r)
			exitCode = types.ExitPanicError.Int()
		}
	}()

	args := cli.Parse()
	if args.ShowVersion {
		cli.ShowVersion()
	}
	if args.ShowHelp {
		cli.ShowHelp()
	}

	cfg, err := config.Load(args.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "steamrescue: configuration error: %v\n", err)
		return types.ExitConfigError.Int()
	}
	applyArgs(cfg, args)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "steamrescue: configuration error: %v\n", err)
		return types.ExitConfigError.Int()
	}

	level := cfg.LogLevel()
	if args.LogLevelSet {
		level = args.LogLevel
	}
	logger := logging.New(level, cfg.UseColor)
	logging.SetDefaultLogger(logger)

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "steamrescue: cannot create workspace %s: %v\n", cfg.WorkDir, err)
		return types.ExitConfigError.Int()
	}
	if err := logger.OpenLogFile(cfg.LogPath()); err != nil {
		logger.Warning("Session log unavailable: %v", err)
	} else {
		defer logger.CloseLogFile()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C cancels the context and closes stdin so blocked prompts
	// unwind instead of hanging.
	var closeStdinOnce sync.Once
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Warning("Interrupt received, aborting")
		cancel()
		closeStdinOnce.Do(func() { os.Stdin.Close() })
	}()

	resolver := &toolchain.Resolver{
		ToolsDir:     cfg.ToolsDir(),
		AdbOverride:  cfg.AdbPath,
		JavaOverride: cfg.JavaPath,
		AbeOverride:  cfg.AbeJar,
	}
	tools, err := resolver.Resolve()
	if err != nil {
		logger.Critical("%v", err)
		fmt.Fprintf(os.Stderr, "steamrescue: %v\n", err)
		return types.ExitToolError.Int()
	}
	logger.Debug("Tools: adb=%s java=%s abe=%s", tools.Adb, tools.Java, tools.AbeJar)

	bridge := adb.New(tools.Adb, cfg.DeviceSerial, logger)
	device, err := bridge.EnsureReady(ctx)
	if err != nil {
		logger.Critical("%v", err)
		fmt.Fprintf(os.Stderr, "steamrescue: %v\n", err)
		return exitCodeFor(err).Int()
	}
	logger.Info("Using device %s", device.Serial)

	orch := recovery.New(cfg, logger, tools, bridge, newConsolePrompter(), recovery.Deps{})
	if err := orch.Run(ctx, os.Stdout); err != nil {
		code := exitCodeFor(err)
		if code == types.ExitUserAbort {
			logger.Warning("Aborted: %v", err)
		} else {
			logger.Critical("%v", err)
		}
		fmt.Fprintf(os.Stderr, "steamrescue: %v\n", err)
		return code.Int()
	}

	return types.ExitSuccess.Int()
}

// applyArgs overlays command-line flags onto the environment-derived config.
func applyArgs(cfg *config.Config, args *cli.Args) {
	if args.WorkDir != "" {
		cfg.WorkDir = args.WorkDir
	}
	if args.PackageID != "" {
		cfg.PackageID = args.PackageID
	}
	if args.DeviceSerial != "" {
		cfg.DeviceSerial = args.DeviceSerial
	}
	if args.ApkPath != "" {
		cfg.ApkPath = args.ApkPath
	}
	if args.ExportPath != "" {
		cfg.ExportPath = args.ExportPath
	}
	if args.NoColor {
		cfg.UseColor = false
	}
	if args.ShowQR {
		cfg.ShowQR = true
	}
	if args.SkipInstall {
		cfg.SkipInstall = true
	}
	if args.KeepArtifacts {
		cfg.KeepArtifacts = true
	}
}

// exitCodeFor maps workflow errors onto process exit codes.
func exitCodeFor(err error) types.ExitCode {
	switch {
	case errors.Is(err, recovery.ErrUserAbort), input.IsAborted(err):
		return types.ExitUserAbort
	case errors.Is(err, recovery.ErrBackupInvalid):
		return types.ExitBackupError
	case errors.Is(err, recovery.ErrUnpackFailed):
		return types.ExitUnpackError
	case errors.Is(err, recovery.ErrStructureMissing):
		return types.ExitStructureError
	case errors.Is(err, toolchain.ErrToolUnavailable):
		return types.ExitToolError
	case errors.Is(err, adb.ErrNoDevice), errors.Is(err, adb.ErrUnauthorized):
		return types.ExitDeviceError
	default:
		return types.ExitGenericError
	}
}
