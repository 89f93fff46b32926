// Ringscope inspects Hubris-style embedded firmware through a debug probe.
//
// It talks to the target's GDB remote stub (OpenOCD or J-Link) for two
// operations:
//
//   - Decoding trace ring buffers from raw target memory
//   - Driving on-target test sessions to a pass/fail verdict
//
// Prerequisites:
//
//   - arm-none-eabi-gdb installed and in PATH (not needed for 'dump --direct')
//   - OpenOCD (or another GDB stub) connected to the target
//
// See 'ringscope --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		logging.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ringscope",
	Short: "Firmware trace ring and test session inspector",
	Long: `Inspect embedded firmware through a GDB remote stub.

ringscope decodes tagged trace ring buffers from raw target memory and
monitors on-target test suites to a verdict:
  - dump:    read and decode a firmware trace ring buffer
  - monitor: run a test session (stop, classify, tally) to pass/fail
  - discover: find networked debug probes via mDNS
  - check:   verify GDB and probe connectivity

Target knowledge (ring geometry, trace variants, test plans) comes from
firmware profiles; 'ringscope dump --help' lists the built-in ones.

Use 'ringscope check' to verify prerequisites.`,
	Version: version.Version,
	Example: `  # Verify GDB and probe setup
  ringscope check

  # Decode the SPDM responder trace ring
  ringscope dump --profile spdm-responder

  # Decode without a local GDB install (raw remote serial protocol)
  ringscope dump --profile spdm-responder --direct

  # Run the HMAC digest test session with a live view
  ringscope monitor --profile digest-test --symbol-file build/hubris.elf --watch`,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ringscope %s\n", version.Full())
	},
}
