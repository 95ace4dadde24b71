// Package cli parses command-line arguments for the steamrescue binary.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/steamrescue/steamrescue/internal/types"
	"github.com/steamrescue/steamrescue/internal/version"
)

// Args holds the parsed command-line arguments
type Args struct {
	EnvFile      string
	WorkDir      string
	PackageID    string
	DeviceSerial string
	ApkPath      string
	LogLevel     types.LogLevel
	LogLevelSet  bool
	NoColor      bool
	ShowQR       bool
	ExportPath   string
	SkipInstall  bool
	KeepArtifacts bool
	ShowVersion  bool
	ShowHelp     bool
}

// Parse parses command-line arguments and returns Args struct
func Parse() *Args {
	args := &Args{}

	flag.StringVar(&args.EnvFile, "env-file", "",
		"Path to a .env file seeding configuration variables")
	flag.StringVar(&args.WorkDir, "workdir", "",
		"Workspace directory owning backup artifact, archive and extracted tree")
	flag.StringVar(&args.PackageID, "package", "",
		"Target application package id (default: the Steam mobile app)")
	flag.StringVar(&args.DeviceSerial, "device-serial", "",
		"Serial of the device to use when several are connected")
	flag.StringVar(&args.ApkPath, "apk", "",
		"Legacy APK to offer for (re)installation before the backup stage")

	var logLevelStr string
	flag.StringVar(&logLevelStr, "log-level", "",
		"Log level (debug|info|warning|error|critical)")
	flag.StringVar(&logLevelStr, "l", "",
		"Log level (shorthand)")

	flag.BoolVar(&args.NoColor, "no-color", false,
		"Disable ANSI colors in console output")
	flag.BoolVar(&args.ShowQR, "qr", false,
		"Render each recovered otpauth URI as a terminal QR code")
	flag.StringVar(&args.ExportPath, "export", "",
		"Write recovered secrets to an age-encrypted file at the given path")
	flag.BoolVar(&args.SkipInstall, "skip-install", false,
		"Skip the optional APK (re)installation step")
	flag.BoolVar(&args.KeepArtifacts, "keep-artifacts", false,
		"Keep backup artifact, flat archive and extracted tree after the run")

	flag.BoolVar(&args.ShowVersion, "version", false,
		"Show version information")
	flag.BoolVar(&args.ShowVersion, "v", false,
		"Show version information (shorthand)")

	flag.BoolVar(&args.ShowHelp, "help", false,
		"Show help message")
	flag.BoolVar(&args.ShowHelp, "h", false,
		"Show help message (shorthand)")

	flag.Usage = func() {
		printHelp(os.Stderr, os.Args[0])
	}

	flag.Parse()

	if logLevelStr != "" {
		args.LogLevel = parseLogLevel(logLevelStr)
		args.LogLevelSet = true
	}

	return args
}

// parseLogLevel converts string to LogLevel
func parseLogLevel(s string) types.LogLevel {
	switch s {
	case "debug", "5":
		return types.LogLevelDebug
	case "info", "4":
		return types.LogLevelInfo
	case "warning", "3":
		return types.LogLevelWarning
	case "error", "2":
		return types.LogLevelError
	case "critical", "1":
		return types.LogLevelCritical
	case "none", "0":
		return types.LogLevelNone
	default:
		return types.LogLevelInfo
	}
}

// ShowHelp displays help message and exits
func ShowHelp() {
	printHelp(os.Stderr, os.Args[0])
	os.Exit(0)
}

// ShowVersion displays version information and exits
func ShowVersion() {
	printVersion(os.Stdout)
	os.Exit(0)
}

func printHelp(w io.Writer, argv0 string) {
	fmt.Fprintf(w, "Usage: %s [options]\n\n", argv0)
	fmt.Fprintln(w, "steamrescue - recover Steam Guard TOTP secrets via an adb device backup")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s\n", argv0)
	fmt.Fprintf(w, "  %s --workdir /tmp/rescue --qr\n", argv0)
	fmt.Fprintf(w, "  %s --export secrets.age --log-level debug\n", argv0)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "steamrescue")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintf(w, "Build: %s\n", version.Build())
}
