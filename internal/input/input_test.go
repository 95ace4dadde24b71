package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReadLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("yes\n"))
	line, err := ReadLine(context.Background(), reader)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if strings.TrimSpace(line) != "yes" {
		t.Errorf("line = %q, want %q", line, "yes")
	}
}

func TestReadLine_EOFMapsToAborted(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	_, err := ReadLine(context.Background(), reader)
	if !errors.Is(err, ErrInputAborted) {
		t.Errorf("err = %v, want ErrInputAborted", err)
	}
}

func TestReadLine_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that blocks forever; cancellation must win.
	blocking := bufio.NewReader(neverReader{})
	done := make(chan error, 1)
	go func() {
		_, err := ReadLine(ctx, blocking)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInputAborted) {
			t.Errorf("err = %v, want ErrInputAborted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadLine did not return after cancellation")
	}
}

func TestReadPassword(t *testing.T) {
	fake := func(int) ([]byte, error) { return []byte("hunter2"), nil }
	pw, err := ReadPassword(context.Background(), fake, 0)
	if err != nil {
		t.Fatalf("ReadPassword failed: %v", err)
	}
	if string(pw) != "hunter2" {
		t.Errorf("password = %q, want %q", pw, "hunter2")
	}
}

func TestReadPassword_NilFunc(t *testing.T) {
	if _, err := ReadPassword(context.Background(), nil, 0); err == nil {
		t.Error("expected error for nil readPassword function")
	}
}

func TestMapInputError(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		aborted bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"closed file", fmt.Errorf("read: use of closed file"), true},
		{"bad fd", fmt.Errorf("read /dev/stdin: bad file descriptor"), true},
		{"other", fmt.Errorf("disk on fire"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapInputError(tc.err)
			if tc.aborted && !errors.Is(got, ErrInputAborted) {
				t.Errorf("MapInputError(%v) = %v, want ErrInputAborted", tc.err, got)
			}
			if !tc.aborted && errors.Is(got, ErrInputAborted) {
				t.Errorf("MapInputError(%v) unexpectedly mapped to ErrInputAborted", tc.err)
			}
		})
	}
}

func TestIsAborted(t *testing.T) {
	if !IsAborted(ErrInputAborted) {
		t.Error("IsAborted(ErrInputAborted) = false")
	}
	if !IsAborted(context.Canceled) {
		t.Error("IsAborted(context.Canceled) = false")
	}
	if IsAborted(nil) || IsAborted(io.ErrUnexpectedEOF) {
		t.Error("IsAborted matched an unrelated error")
	}
}

type neverReader struct{}

func (neverReader) Read([]byte) (int, error) {
	select {}
}
