// Package toolchain resolves the external tools the recovery flow shells
// out to: the adb device bridge, a Java runtime, and the Android backup
// extractor jar.
//
// It only verifies that an invocable path exists for each tool; downloading
// or installing them is out of scope.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrToolUnavailable marks a required external tool that could not be located.
var ErrToolUnavailable = errors.New("required tool unavailable")

// Tools holds resolved, invocable paths for every external dependency.
type Tools struct {
	Adb    string
	Java   string
	AbeJar string
}

// Resolver locates tools from explicit overrides, a pre-provisioned tools
// directory, and finally PATH.
type Resolver struct {
	// ToolsDir is the workspace directory holding pre-provisioned binaries.
	ToolsDir string

	// Explicit per-tool overrides from configuration. Empty means "search".
	AdbOverride  string
	JavaOverride string
	AbeOverride  string

	// Seams for tests.
	LookPath func(string) (string, error)
	Stat     func(string) (os.FileInfo, error)
}

func (r *Resolver) lookPath(name string) (string, error) {
	if r.LookPath != nil {
		return r.LookPath(name)
	}
	return exec.LookPath(name)
}

func (r *Resolver) stat(path string) (os.FileInfo, error) {
	if r.Stat != nil {
		return r.Stat(path)
	}
	return os.Stat(path)
}

// Resolve locates all tools or fails with a diagnostic naming the first
// missing one and where it was searched.
func (r *Resolver) Resolve() (Tools, error) {
	adb, err := r.resolveBinary("adb", r.AdbOverride)
	if err != nil {
		return Tools{}, err
	}
	java, err := r.resolveBinary("java", r.JavaOverride)
	if err != nil {
		return Tools{}, err
	}
	abe, err := r.resolveFile("abe.jar", r.AbeOverride)
	if err != nil {
		return Tools{}, err
	}
	return Tools{Adb: adb, Java: java, AbeJar: abe}, nil
}

// resolveBinary finds an executable: override, then tools dir, then PATH.
func (r *Resolver) resolveBinary(name, override string) (string, error) {
	if override != "" {
		if _, err := r.stat(override); err != nil {
			return "", fmt.Errorf("%w: configured path for %s does not exist: %s", ErrToolUnavailable, name, override)
		}
		return override, nil
	}
	if r.ToolsDir != "" {
		candidate := filepath.Join(r.ToolsDir, name)
		if _, err := r.stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if path, err := r.lookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s not found (searched %s and PATH); install it or set its path in the configuration", ErrToolUnavailable, name, r.ToolsDir)
}

// resolveFile finds a plain file (the extractor jar is invoked through java,
// so PATH lookup does not apply).
func (r *Resolver) resolveFile(name, override string) (string, error) {
	if override != "" {
		if _, err := r.stat(override); err != nil {
			return "", fmt.Errorf("%w: configured path for %s does not exist: %s", ErrToolUnavailable, name, override)
		}
		return override, nil
	}
	if r.ToolsDir != "" {
		candidate := filepath.Join(r.ToolsDir, name)
		if _, err := r.stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found in %s; place the Android backup extractor jar there or set its path in the configuration", ErrToolUnavailable, name, r.ToolsDir)
}
