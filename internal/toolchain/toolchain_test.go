package toolchain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolve_FromToolsDir(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "adb")
	writeTool(t, dir, "java")
	writeTool(t, dir, "abe.jar")

	r := &Resolver{
		ToolsDir: dir,
		LookPath: func(name string) (string, error) {
			t.Errorf("PATH consulted for %s despite tools dir hit", name)
			return "", errors.New("not found")
		},
	}
	tools, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if tools.Adb != filepath.Join(dir, "adb") {
		t.Errorf("Adb = %q", tools.Adb)
	}
	if tools.AbeJar != filepath.Join(dir, "abe.jar") {
		t.Errorf("AbeJar = %q", tools.AbeJar)
	}
}

func TestResolve_OverridesWin(t *testing.T) {
	dir := t.TempDir()
	adb := writeTool(t, dir, "custom-adb")
	java := writeTool(t, dir, "custom-java")
	abe := writeTool(t, dir, "custom-abe.jar")

	r := &Resolver{
		ToolsDir:     t.TempDir(), // empty, would fail without overrides
		AdbOverride:  adb,
		JavaOverride: java,
		AbeOverride:  abe,
	}
	tools, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if tools.Adb != adb || tools.Java != java || tools.AbeJar != abe {
		t.Errorf("overrides not honored: %+v", tools)
	}
}

func TestResolve_BinaryFallsBackToPath(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "abe.jar")

	r := &Resolver{
		ToolsDir: dir,
		LookPath: func(name string) (string, error) {
			return "/usr/bin/" + name, nil
		},
	}
	tools, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if tools.Adb != "/usr/bin/adb" {
		t.Errorf("Adb = %q, want PATH fallback", tools.Adb)
	}
	if tools.Java != "/usr/bin/java" {
		t.Errorf("Java = %q, want PATH fallback", tools.Java)
	}
}

func TestResolve_MissingToolIsUnavailable(t *testing.T) {
	r := &Resolver{
		ToolsDir: t.TempDir(),
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
	_, err := r.Resolve()
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("err = %v, want ErrToolUnavailable", err)
	}
}

func TestResolve_BadOverrideIsUnavailable(t *testing.T) {
	r := &Resolver{
		AdbOverride: "/nonexistent/adb",
	}
	_, err := r.Resolve()
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("err = %v, want ErrToolUnavailable", err)
	}
}

func TestResolve_JarNotSearchedInPath(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "adb")
	writeTool(t, dir, "java")

	r := &Resolver{
		ToolsDir: dir,
		LookPath: func(name string) (string, error) {
			if name == "abe.jar" {
				t.Error("abe.jar looked up in PATH")
			}
			return "", errors.New("not found")
		},
	}
	if _, err := r.Resolve(); !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("err = %v, want ErrToolUnavailable for missing jar", err)
	}
}
