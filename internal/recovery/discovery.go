package recovery

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/steamrescue/steamrescue/internal/steamguard"
)

// candidatePrefix is the naming pattern of files that may hold secrets.
const candidatePrefix = "Steamguard-"

// Finding pairs a candidate file with the record recovered from it.
type Finding struct {
	Path   string
	Record steamguard.Record
}

// Discover walks the expanded tree for candidate files and parses each one.
// Individual files that yield nothing are skipped silently; only the
// aggregate zero-result conditions are fatal, each with its own diagnostic
// naming the failed stage.
func (o *Orchestrator) Discover() ([]Finding, error) {
	base := filepath.Join(o.cfg.TreePath(), "apps", o.cfg.PackageID, "f")
	o.logger.Step("Scanning %s for %s* files", base, candidatePrefix)

	if _, err := o.fs.Stat(base); err != nil {
		return nil, fmt.Errorf("%w: expected path %s is absent; the backup is incomplete or targets the wrong package", ErrStructureMissing, base)
	}

	entries, err := o.fs.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot list %s: %v", ErrStructureMissing, base, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), candidatePrefix) {
			candidates = append(candidates, filepath.Join(base, entry.Name()))
		}
	}
	// Deterministic output ordering regardless of directory listing order.
	sort.Strings(candidates)

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no %s* files under %s; the backup is incomplete", ErrStructureMissing, candidatePrefix, base)
	}
	o.logger.Info("Found %d candidate file(s)", len(candidates))

	var findings []Finding
	for _, path := range candidates {
		data, err := o.fs.ReadFile(path)
		if err != nil {
			o.logger.Warning("Skipping unreadable candidate %s: %v", path, err)
			continue
		}
		rec := steamguard.Parse(data)
		rec.SourcePath = path
		if !rec.Found() {
			o.logger.Skip("%s: no recoverable secrets", filepath.Base(path))
			continue
		}
		o.logger.Info("Recovered record from %s: %s", filepath.Base(path), rec)
		findings = append(findings, Finding{Path: path, Record: rec})
	}

	if len(findings) == 0 {
		return nil, fmt.Errorf("%w: %d candidate file(s) contained no recoverable secrets", ErrStructureMissing, len(candidates))
	}
	return findings, nil
}
