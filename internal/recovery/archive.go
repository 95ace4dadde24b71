package recovery

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Unpack converts the raw backup artifact into a flat tar archive using the
// external extractor jar. If the first, password-less attempt fails the
// operator is asked once for an optional backup password; a second failure
// is fatal. A wrong password and a corrupt artifact are indistinguishable
// at this layer, so the diagnostic names both.
func (o *Orchestrator) Unpack(ctx context.Context) error {
	o.logger.Step("Unpacking backup artifact into a flat archive")

	firstErr := o.runExtractor(ctx, "")
	if firstErr == nil {
		return nil
	}
	o.logger.Warning("Unpack without a password failed: %v", firstErr)

	password, provided, err := o.prompt.UnpackPassword(ctx)
	if err != nil {
		return mapAbort(err)
	}
	if !provided {
		return fmt.Errorf("%w: a backup password is required to continue", ErrUserAbort)
	}

	if err := o.runExtractor(ctx, password); err != nil {
		return fmt.Errorf("%w: unpack failed both without and with a password; either the password is wrong or the artifact is corrupt: %v", ErrUnpackFailed, err)
	}
	return nil
}

// runExtractor invokes `java -jar abe.jar unpack <artifact> <tar> [password]`.
func (o *Orchestrator) runExtractor(ctx context.Context, password string) error {
	args := []string{"-jar", o.tools.AbeJar, "unpack", o.cfg.ArtifactPath(), o.cfg.FlatArchivePath()}
	if password != "" {
		args = append(args, password)
	}
	out, err := o.cmd.Run(ctx, o.tools.Java, args...)
	if err != nil {
		return fmt.Errorf("extractor failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	// The extractor can exit zero without writing the archive.
	if _, err := o.fs.Stat(o.cfg.FlatArchivePath()); err != nil {
		return fmt.Errorf("extractor produced no archive: %w", err)
	}
	return nil
}

// Expand materializes the flat archive into the workspace tree. Any
// previous tree is deleted first so no stale files leak between attempts;
// re-expanding the same archive is therefore idempotent.
func (o *Orchestrator) Expand() error {
	tree := o.cfg.TreePath()
	o.logger.Step("Expanding flat archive into %s", tree)

	if err := o.fs.RemoveAll(tree); err != nil {
		return fmt.Errorf("%w: could not clear previous tree %s: %v", ErrUnpackFailed, tree, err)
	}
	if err := o.fs.MkdirAll(tree, 0o755); err != nil {
		return fmt.Errorf("%w: could not create tree %s: %v", ErrUnpackFailed, tree, err)
	}

	archive, err := o.fs.Open(o.cfg.FlatArchivePath())
	if err != nil {
		return fmt.Errorf("%w: could not open flat archive: %v", ErrUnpackFailed, err)
	}
	defer archive.Close()

	if err := extractTar(o.fs, archive, tree); err != nil {
		return fmt.Errorf("%w: %v", ErrUnpackFailed, err)
	}
	return nil
}

// extractTar expands r into dest, refusing entries that would escape it.
func extractTar(fsys FS, r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corrupt flat archive: %w", err)
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create directory for %s: %w", target, err)
			}
			f, err := fsys.Create(target)
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close file %s: %w", target, err)
			}
		default:
			// Symlinks and special files never appear in app-data backups;
			// skip rather than fail.
		}
	}
}

// safeJoin joins name under dest and rejects traversal outside it.
func safeJoin(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry with absolute path: %s", name)
	}
	target := filepath.Join(dest, filepath.Clean(name))
	if target != dest && !strings.HasPrefix(target, dest+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes the tree: %s", name)
	}
	return target, nil
}
