// Package adb wraps the adb device bridge binary.
//
// Only the handful of operations the recovery flow needs is exposed; every
// call shells out to adb synchronously and returns its combined output in
// errors so the operator can see what the tool reported.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/steamrescue/steamrescue/internal/logging"
)

var (
	// ErrNoDevice means adb sees no connected devices at all.
	ErrNoDevice = errors.New("no connected device")

	// ErrUnauthorized means a device is connected but has not accepted the
	// host's debugging key yet.
	ErrUnauthorized = errors.New("device not authorized")
)

// DeviceState is the state column reported by `adb devices`.
type DeviceState string

const (
	StateDevice       DeviceState = "device"
	StateUnauthorized DeviceState = "unauthorized"
	StateOffline      DeviceState = "offline"
)

// Device is one row of the `adb devices` listing.
type Device struct {
	Serial string
	State  DeviceState
}

// Deps holds the injectable seams of the bridge.
type Deps struct {
	CommandContext func(context.Context, string, ...string) *exec.Cmd
}

// Bridge executes adb commands against one (optionally pinned) device.
type Bridge struct {
	path   string
	serial string
	logger *logging.Logger
	deps   Deps
}

// New creates a bridge for the adb binary at path. If serial is non-empty
// every device command is pinned to that device.
func New(path, serial string, logger *logging.Logger) *Bridge {
	return &Bridge{
		path:   path,
		serial: serial,
		logger: logger,
		deps: Deps{
			CommandContext: exec.CommandContext,
		},
	}
}

// SetDeps overrides the command seam (used by tests).
func (b *Bridge) SetDeps(deps Deps) {
	if deps.CommandContext != nil {
		b.deps.CommandContext = deps.CommandContext
	}
}

func (b *Bridge) run(ctx context.Context, deviceScoped bool, args ...string) ([]byte, error) {
	full := make([]string, 0, len(args)+2)
	if deviceScoped && b.serial != "" {
		full = append(full, "-s", b.serial)
	}
	full = append(full, args...)

	b.logger.Debug("adb %s", strings.Join(full, " "))
	cmd := b.deps.CommandContext(ctx, b.path, full...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("adb %s: %w (%s)", args[0], err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Devices lists connected devices as reported by `adb devices`.
func (b *Bridge) Devices(ctx context.Context) ([]Device, error) {
	out, err := b.run(ctx, false, "devices")
	if err != nil {
		return nil, err
	}
	return parseDeviceList(out), nil
}

// EnsureReady returns the device to use, distinguishing "nothing connected"
// from "connected but unauthorized" so the operator gets an actionable
// message.
func (b *Bridge) EnsureReady(ctx context.Context) (Device, error) {
	devices, err := b.Devices(ctx)
	if err != nil {
		return Device{}, err
	}

	if b.serial != "" {
		for _, d := range devices {
			if d.Serial != b.serial {
				continue
			}
			if d.State == StateDevice {
				return d, nil
			}
			return Device{}, fmt.Errorf("%w: device %s is %s; accept the debugging prompt on its screen", ErrUnauthorized, d.Serial, d.State)
		}
		return Device{}, fmt.Errorf("%w: device %s is not connected", ErrNoDevice, b.serial)
	}

	sawUnauthorized := false
	for _, d := range devices {
		switch d.State {
		case StateDevice:
			return d, nil
		case StateUnauthorized:
			sawUnauthorized = true
		}
	}
	if sawUnauthorized {
		return Device{}, fmt.Errorf("%w: a device is connected but unauthorized; accept the USB debugging prompt on its screen and re-run", ErrUnauthorized)
	}
	return Device{}, fmt.Errorf("%w: connect the device via USB and enable USB debugging", ErrNoDevice)
}

// Install installs (or downgrades to) the given APK, keeping app data.
func (b *Bridge) Install(ctx context.Context, apkPath string) error {
	out, err := b.run(ctx, true, "install", "-r", "-d", apkPath)
	if err != nil {
		return err
	}
	// adb install can exit 0 while reporting Failure on stdout.
	if bytes.Contains(out, []byte("Failure")) {
		return fmt.Errorf("adb install reported failure: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

// Launch starts the package's launcher activity so the operator can redo
// the in-app recovery steps.
func (b *Bridge) Launch(ctx context.Context, packageID string) error {
	_, err := b.run(ctx, true, "shell", "monkey", "-p", packageID, "-c", "android.intent.category.LAUNCHER", "1")
	return err
}

// ForceStop fully terminates the package (backgrounded is not enough for a
// clean backup).
func (b *Bridge) ForceStop(ctx context.Context, packageID string) error {
	_, err := b.run(ctx, true, "shell", "am", "force-stop", packageID)
	return err
}

// Backup creates a device backup of the package at outPath, excluding the
// APK itself. The device shows a confirmation screen; the operator must
// approve it without setting a password.
func (b *Bridge) Backup(ctx context.Context, packageID, outPath string) error {
	_, err := b.run(ctx, true, "backup", "-f", outPath, "-noapk", packageID)
	return err
}

func parseDeviceList(out []byte) []Device {
	var devices []Device
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{
			Serial: fields[0],
			State:  DeviceState(fields[1]),
		})
	}
	return devices
}
