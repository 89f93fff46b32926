package gdb

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"
)

// checkTimeout bounds each individual prerequisite probe.
const checkTimeout = 2 * time.Second

// PrerequisiteCheck is the result of probing a single prerequisite.
type PrerequisiteCheck struct {
	Name      string
	Available bool
	Path      string // resolved path, for binary checks
	Version   string // detected version, if applicable
	Message   string // success info or failure guidance
	Error     error
}

// PrerequisiteResult aggregates all prerequisite checks.
type PrerequisiteResult struct {
	Checks []PrerequisiteCheck
	// AllAvailable is true when every required prerequisite is present.
	AllAvailable bool
}

// ValidatePrerequisites checks everything a session needs:
//   - the GDB binary (required)
//   - OpenOCD connectivity (reported, but not required: the probe may be
//     brought up later)
func ValidatePrerequisites(ctx context.Context, gdbPath, openocdHost string, openocdPort int) (*PrerequisiteResult, error) {
	gdbCheck := checkGDBBinary(ctx, gdbPath)
	stubCheck := checkOpenOCDConnection(ctx, openocdHost, openocdPort)

	return &PrerequisiteResult{
		Checks:       []PrerequisiteCheck{gdbCheck, stubCheck},
		AllAvailable: gdbCheck.Available,
	}, nil
}

// checkGDBBinary verifies the GDB binary resolves and executes.
func checkGDBBinary(ctx context.Context, gdbPath string) PrerequisiteCheck {
	check := PrerequisiteCheck{Name: gdbPath}

	path, err := exec.LookPath(gdbPath)
	if err != nil {
		check.Error = err
		check.Message = gdbPath + " not found in PATH\n" +
			"Install on macOS: brew install --cask gcc-arm-embedded\n" +
			"Install on Linux: sudo apt-get install gdb-multiarch (and pass --gdb-path gdb-multiarch)"
		return check
	}
	check.Path = path

	versionCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, path, "--version").Output()
	if err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("%s found at %s but failed to execute: %v", gdbPath, path, err)
		return check
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		check.Version = strings.TrimSpace(line)
	}
	check.Available = true
	check.Message = "Found at " + path
	return check
}

// checkOpenOCDConnection probes the GDB stub port. Non-fatal: a missing
// probe only means sessions will fail until it's up.
func checkOpenOCDConnection(ctx context.Context, host string, port int) PrerequisiteCheck {
	check := PrerequisiteCheck{Name: "OpenOCD Connection"}
	address := fmt.Sprintf("%s:%d", host, port)

	conn, err := dialStub(ctx, address)
	if err != nil {
		check.Error = err
		check.Message = fmt.Sprintf("Cannot connect to OpenOCD at %s\n"+
			"This is not fatal, but sessions will fail.\n"+
			"Ensure OpenOCD is running: openocd -f <your-config.cfg>", address)
		return check
	}
	conn.Close()

	check.Available = true
	check.Message = "Connected successfully to " + address
	return check
}

func dialStub(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: checkTimeout}
	return dialer.DialContext(ctx, "tcp", address)
}

// ValidateGDBPath confirms the binary at gdbPath is GNU GDB. Used as a
// pre-flight check before spawning a session.
func ValidateGDBPath(ctx context.Context, gdbPath string) error {
	if gdbPath == "" {
		return &PrerequisiteError{
			Prerequisite: "gdb",
			Details:      "GDB path is empty",
		}
	}

	versionCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	output, err := exec.CommandContext(versionCtx, gdbPath, "--version").Output()
	if err != nil {
		return &PrerequisiteError{
			Prerequisite: gdbPath,
			Details:      fmt.Sprintf("Failed to execute %s --version", gdbPath),
			Err:          err,
		}
	}
	if !strings.Contains(string(output), "GNU gdb") {
		return &PrerequisiteError{
			Prerequisite: gdbPath,
			Details:      fmt.Sprintf("%s does not appear to be GNU GDB", gdbPath),
		}
	}
	return nil
}

// ValidateOpenOCDConnection confirms the stub accepts TCP connections.
func ValidateOpenOCDConnection(ctx context.Context, host string, port int) error {
	conn, err := dialStub(ctx, fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return &GDBConnectionError{Host: host, Port: port, Err: err}
	}
	conn.Close()
	return nil
}

// FormatPrerequisiteReport renders a PrerequisiteResult for the terminal.
func FormatPrerequisiteReport(result *PrerequisiteResult) string {
	var sb strings.Builder

	sb.WriteString("Session Prerequisites:\n\n")

	for _, check := range result.Checks {
		if check.Available {
			sb.WriteString(fmt.Sprintf("✓ %s\n", check.Name))
			if check.Version != "" {
				sb.WriteString(fmt.Sprintf("  Version: %s\n", check.Version))
			}
			if check.Path != "" {
				sb.WriteString(fmt.Sprintf("  Path: %s\n", check.Path))
			}
		} else {
			sb.WriteString(fmt.Sprintf("✗ %s\n", check.Name))
			if check.Message != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", check.Message))
			}
		}
		sb.WriteString("\n")
	}

	if result.AllAvailable {
		sb.WriteString("All required prerequisites are available.\n")
	} else {
		sb.WriteString("Some prerequisites are missing. Install them before starting a session.\n")
	}

	return sb.String()
}
