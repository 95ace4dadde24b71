package types

// ExitCode represents the application's exit codes.
type ExitCode int

const (
	// ExitSuccess - Execution completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGenericError - Unspecified generic error.
	ExitGenericError ExitCode = 1

	// ExitConfigError - Configuration error.
	ExitConfigError ExitCode = 2

	// ExitToolError - A required external tool (adb, java, abe.jar) is missing or not invocable.
	ExitToolError ExitCode = 3

	// ExitDeviceError - No connected and authorized device.
	ExitDeviceError ExitCode = 4

	// ExitBackupError - The device backup never produced a valid artifact within the retry budget.
	ExitBackupError ExitCode = 5

	// ExitUnpackError - The backup artifact could not be unpacked into a flat archive.
	ExitUnpackError ExitCode = 6

	// ExitStructureError - The expanded tree is missing the expected layout, candidate files, or secrets.
	ExitStructureError ExitCode = 7

	// ExitUserAbort - The operator declined a required confirmation or interrupted the run.
	ExitUserAbort ExitCode = 8

	// ExitPanicError - Unhandled panic caught.
	ExitPanicError ExitCode = 13
)

// String returns a human-readable description of the exit code.
func (e ExitCode) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitGenericError:
		return "generic error"
	case ExitConfigError:
		return "configuration error"
	case ExitToolError:
		return "tool unavailable"
	case ExitDeviceError:
		return "device not ready"
	case ExitBackupError:
		return "backup invalid"
	case ExitUnpackError:
		return "unpack failed"
	case ExitStructureError:
		return "backup structure missing"
	case ExitUserAbort:
		return "aborted by user"
	case ExitPanicError:
		return "panic error"
	default:
		return "unknown error"
	}
}

// Int returns the exit code as an integer.
func (e ExitCode) Int() int {
	return int(e)
}
