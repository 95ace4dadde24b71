package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/steamrescue/steamrescue/internal/types"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelWarning, false)
	logger.SetOutput(&buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warning("warning message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level were emitted:\n%s", out)
	}
	if !strings.Contains(out, "warning message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warning and error in output:\n%s", out)
	}
}

func TestLogger_Counters(t *testing.T) {
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&bytes.Buffer{})

	if logger.HasWarnings() || logger.HasErrors() {
		t.Fatal("fresh logger should have no warnings or errors")
	}

	logger.Warning("w")
	if !logger.HasWarnings() {
		t.Error("HasWarnings() = false after Warning()")
	}
	if logger.HasErrors() {
		t.Error("HasErrors() = true with only a warning logged")
	}

	logger.Error("e")
	if !logger.HasErrors() {
		t.Error("HasErrors() = false after Error()")
	}
}

func TestLogger_FatalUsesExitFunc(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelDebug, false)
	logger.SetOutput(&buf)

	exitCode := -1
	logger.SetExitFunc(func(code int) { exitCode = code })

	logger.Fatal(types.ExitBackupError, "backup never became valid")

	if exitCode != types.ExitBackupError.Int() {
		t.Errorf("exit code = %d, want %d", exitCode, types.ExitBackupError.Int())
	}
	if !strings.Contains(buf.String(), "backup never became valid") {
		t.Errorf("fatal message missing from output:\n%s", buf.String())
	}
}

func TestLogger_StepLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelInfo, false)
	logger.SetOutput(&buf)

	logger.Step("creating device backup")

	if !strings.Contains(buf.String(), "STEP") {
		t.Errorf("STEP label missing from output:\n%s", buf.String())
	}
}

func TestLogger_NoColorOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogLevelInfo, false)
	logger.SetOutput(&buf)

	logger.Info("plain")

	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("ANSI escape found with color disabled:\n%q", buf.String())
	}
}
