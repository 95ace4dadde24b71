// Package config loads runtime configuration for the recovery workflow.
//
// Configuration comes from the environment (optionally seeded from a .env
// file in the working directory); command-line flags override individual
// fields after loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/steamrescue/steamrescue/internal/types"
)

// DefaultPackageID is the application whose private storage holds the
// Steam Guard files.
const DefaultPackageID = "com.valvesoftware.android.steam.community"

// Config holds all runtime settings for a recovery run.
type Config struct {
	// WorkDir is the workspace owning every ephemeral artifact of the run:
	// the raw backup, the flat archive and the expanded tree.
	WorkDir string `env:"STEAMRESCUE_WORKDIR"`

	// PackageID is the target application package on the device.
	PackageID string `env:"STEAMRESCUE_PACKAGE"`

	// DeviceSerial pins the run to one device when several are connected.
	DeviceSerial string `env:"STEAMRESCUE_DEVICE_SERIAL"`

	// Tool path overrides. Empty means "resolve from workdir tools/ or PATH".
	AdbPath  string `env:"STEAMRESCUE_ADB"`
	JavaPath string `env:"STEAMRESCUE_JAVA"`
	AbeJar   string `env:"STEAMRESCUE_ABE_JAR"`

	// ApkPath points at a legacy APK that still allows adb backup. When set,
	// the flow offers to (re)install it before the backup stage.
	ApkPath string `env:"STEAMRESCUE_APK"`

	// MinBackupBytes is the size below which a backup artifact is treated as
	// the known empty-placeholder failure (app not fully closed).
	MinBackupBytes int64 `env:"STEAMRESCUE_MIN_BACKUP_BYTES" envDefault:"2048"`

	// MaxAttempts bounds the backup retry loop.
	MaxAttempts int `env:"STEAMRESCUE_MAX_ATTEMPTS" envDefault:"5"`

	LogLevelName string `env:"STEAMRESCUE_LOG_LEVEL" envDefault:"info"`
	UseColor     bool   `env:"STEAMRESCUE_COLOR" envDefault:"true"`

	// Output options.
	ShowQR     bool   `env:"STEAMRESCUE_QR"`
	ExportPath string `env:"STEAMRESCUE_EXPORT"`

	// SkipInstall suppresses the optional APK (re)installation step even
	// when ApkPath is set.
	SkipInstall bool `env:"STEAMRESCUE_SKIP_INSTALL"`

	// KeepArtifacts suppresses the end-of-run cleanup prompt.
	KeepArtifacts bool `env:"STEAMRESCUE_KEEP_ARTIFACTS"`
}

// Load builds the configuration from the environment. A .env file at
// envFile (if present) seeds variables without overriding ones already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.PackageID == "" {
		cfg.PackageID = DefaultPackageID
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaultWorkDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that the rest of the pipeline relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PackageID) == "" {
		return fmt.Errorf("package id cannot be empty")
	}
	if c.MinBackupBytes <= 0 {
		return fmt.Errorf("minimum backup size must be positive, got %d", c.MinBackupBytes)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("maximum backup attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

// LogLevel converts the configured level name into a LogLevel.
func (c *Config) LogLevel() types.LogLevel {
	switch strings.ToLower(strings.TrimSpace(c.LogLevelName)) {
	case "debug":
		return types.LogLevelDebug
	case "info", "":
		return types.LogLevelInfo
	case "warning", "warn":
		return types.LogLevelWarning
	case "error":
		return types.LogLevelError
	case "critical":
		return types.LogLevelCritical
	case "none":
		return types.LogLevelNone
	default:
		return types.LogLevelInfo
	}
}

// ArtifactPath is the location of the raw device backup artifact.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.WorkDir, "steam-backup.ab")
}

// FlatArchivePath is the location of the unpacked flat tar archive.
func (c *Config) FlatArchivePath() string {
	return filepath.Join(c.WorkDir, "steam-backup.tar")
}

// TreePath is the directory the flat archive is expanded into.
func (c *Config) TreePath() string {
	return filepath.Join(c.WorkDir, "extracted")
}

// ToolsDir is where pre-provisioned tool binaries are looked up.
func (c *Config) ToolsDir() string {
	return filepath.Join(c.WorkDir, "tools")
}

// LogPath is the session log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.WorkDir, "steamrescue.log")
}

func defaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "steamrescue")
	}
	return filepath.Join(home, ".steamrescue")
}
