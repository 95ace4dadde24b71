// Package input provides cancellable reads from stdin for the interactive
// checkpoints of the recovery flow.
package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrInputAborted signals that interactive input was interrupted (typically via Ctrl+C
// causing context cancellation and/or stdin closure).
//
// Callers should translate this into the appropriate workflow-level abort error.
var ErrInputAborted = errors.New("input aborted")

// IsAborted reports whether an operation was aborted by the user (typically via Ctrl+C),
// by checking for ErrInputAborted and context cancellation.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInputAborted) || errors.Is(err, context.Canceled)
}

// MapInputError normalizes common stdin errors (EOF/closed fd) into ErrInputAborted.
func MapInputError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return ErrInputAborted
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "use of closed file") ||
		strings.Contains(errStr, "bad file descriptor") ||
		strings.Contains(errStr, "file already closed") {
		return ErrInputAborted
	}
	return err
}

// ReadLine reads a single line and supports cancellation. On ctx cancellation
// or stdin closure it returns ErrInputAborted.
func ReadLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- result{line: line, err: MapInputError(err)}
	}()
	select {
	case <-ctx.Done():
		return "", ErrInputAborted
	case res := <-ch:
		return res.line, res.err
	}
}

// ReadPassword reads a password (no echo) and supports cancellation. On ctx
// cancellation or stdin closure it returns ErrInputAborted. The readPassword
// argument is typically term.ReadPassword; it is injectable for tests.
func ReadPassword(ctx context.Context, readPassword func(int) ([]byte, error), fd int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if readPassword == nil {
		return nil, errors.New("readPassword function is nil")
	}
	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := readPassword(fd)
		ch <- result{b: b, err: MapInputError(err)}
	}()
	select {
	case <-ctx.Done():
		return nil, ErrInputAborted
	case res := <-ch:
		return res.b, res.err
	}
}
