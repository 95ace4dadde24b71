package recovery

import (
	"errors"
	"fmt"

	"github.com/steamrescue/steamrescue/internal/input"
)

var (
	// ErrUserAbort - the operator declined a required confirmation or
	// interrupted the run.
	ErrUserAbort = errors.New("aborted by operator")

	// ErrBackupInvalid - every backup attempt within the retry budget was
	// classified TooSmall or ToolFailed.
	ErrBackupInvalid = errors.New("backup artifact invalid")

	// ErrUnpackFailed - the artifact could not be converted into a usable
	// directory tree (unpack or expand stage).
	ErrUnpackFailed = errors.New("backup unpack failed")

	// ErrStructureMissing - the expanded tree lacks the expected layout,
	// candidate files, or recoverable secrets.
	ErrStructureMissing = errors.New("backup structure missing")
)

// mapAbort folds input-layer aborts (Ctrl+C, closed stdin) into the
// workflow-level abort error; other errors pass through.
func mapAbort(err error) error {
	if err == nil {
		return nil
	}
	if input.IsAborted(err) {
		return fmt.Errorf("%w: input interrupted", ErrUserAbort)
	}
	return err
}
