package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/steamrescue/steamrescue/internal/input"
)

// consolePrompter implements recovery.Prompter over stdin. Every read goes
// through the input package so Ctrl+C aborts cleanly at any checkpoint.
type consolePrompter struct {
	reader *bufio.Reader
}

func newConsolePrompter() *consolePrompter {
	return &consolePrompter{reader: bufio.NewReader(os.Stdin)}
}

func (p *consolePrompter) ConfirmInstall(ctx context.Context) (bool, error) {
	return promptYesNo(ctx, p.reader,
		"Install the configured legacy APK now (keeps app data)? [y/N]: ", false)
}

func (p *consolePrompter) ConfirmAppClosed(ctx context.Context) (bool, error) {
	return promptYesNo(ctx, p.reader,
		"Is the Steam app fully closed on the device (swiped away from recent apps, not just backgrounded)? [y/N]: ", false)
}

func (p *consolePrompter) OfferRelaunch(ctx context.Context) (bool, error) {
	return promptYesNo(ctx, p.reader,
		"Relaunch the app so you can redo the in-app recovery steps before the next attempt? [Y/n]: ", true)
}

func (p *consolePrompter) AwaitRecoveryDone(ctx context.Context) error {
	return pause(ctx, p.reader,
		"Press Enter once you have finished the in-app steps and are back on the home screen... ")
}

func (p *consolePrompter) UnpackPassword(ctx context.Context) (string, bool, error) {
	has, err := promptYesNo(ctx, p.reader,
		"Was the device backup protected with a password? [y/N]: ", false)
	if err != nil {
		return "", false, err
	}
	if !has {
		return "", false, nil
	}
	fmt.Print("Backup password: ")
	pw, err := p.readSecret(ctx)
	if err != nil {
		return "", false, err
	}
	return pw, true, nil
}

func (p *consolePrompter) ExportPassphrase(ctx context.Context) (string, error) {
	for {
		fmt.Print("Export passphrase (empty to cancel): ")
		first, err := p.readSecret(ctx)
		if err != nil {
			return "", err
		}
		if first == "" {
			return "", nil
		}
		fmt.Print("Confirm passphrase: ")
		second, err := p.readSecret(ctx)
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		fmt.Println("Passphrases do not match, try again.")
	}
}

// readSecret reads without echo on a real terminal and falls back to a plain
// line read when stdin is a pipe.
func (p *consolePrompter) readSecret(ctx context.Context) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := input.ReadPassword(ctx, term.ReadPassword, fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := input.ReadLine(ctx, p.reader)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *consolePrompter) ConfirmCleanup(ctx context.Context) (bool, error) {
	return promptYesNo(ctx, p.reader,
		"Delete the backup artifact, flat archive and extracted tree now? They contain your secrets in the clear. [y/N]: ", false)
}

func promptYesNo(ctx context.Context, reader *bufio.Reader, question string, defaultYes bool) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, input.ErrInputAborted
		}
		fmt.Print(question)
		resp, err := input.ReadLine(ctx, reader)
		if err != nil {
			return false, err
		}
		resp = strings.TrimSpace(strings.ToLower(resp))
		if resp == "" {
			return defaultYes, nil
		}
		switch resp {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Println("Please answer with 'y' or 'n'.")
		}
	}
}

func pause(ctx context.Context, reader *bufio.Reader, message string) error {
	if err := ctx.Err(); err != nil {
		return input.ErrInputAborted
	}
	fmt.Print(message)
	_, err := input.ReadLine(ctx, reader)
	return err
}
