// Ringscope-server runs a test session headless and serves its event feed.
//
// It drives the same stop/classify/tally loop as 'ringscope monitor' but
// without a terminal UI: observers follow the session over WebSocket
// (/ws) and HTTP (/api/status, /healthz). After the verdict the server
// keeps serving the session history and outcome until interrupted, which
// suits CI dashboards and remote bench setups.
//
// Usage:
//
//	ringscope-server serve --profile digest-test --symbol-file build/hubris.elf
//
// See 'ringscope-server serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/gdb"
	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/profile"
	"github.com/ringscope/ringscope/internal/server"
	"github.com/ringscope/ringscope/internal/session"
	"github.com/ringscope/ringscope/internal/trace"
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
	Use:   "ringscope-server",
	Short: "Headless test session feed server",
	Long: `Run a firmware test session and serve its live event feed.

Note: for interactive use (styled output, live TUI), use the 'ringscope'
utility instead; 'ringscope monitor --serve' embeds the same feed server.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	profileName string
	profileFile string
	symbolFile  string
	gdbPath     string
	openocdHost string
	openocdPort int
	gdbTimeout  string
	resetHalt   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a session and serve its feed",
	Long: `Attach to the target, run the profile's test session, and serve the
session feed over HTTP and WebSocket.

Endpoints:
  /ws           live session events (JSON), history replayed on connect
  /api/status   session state and outcome
  /api/report   latest trace decode report (when one exists)
  /healthz      liveness

The process exits non-zero when the session verdict is not Succeeded, but
only after the feed is interrupted (Ctrl+C), so observers can collect the
outcome first.`,
	Example: `  # Serve the digest test session on the default port
  ringscope-server serve --profile digest-test --symbol-file build/hubris.elf

  # Remote probe, custom port
  ringscope-server serve --profile digest-test --port 8474 --openocd-host 192.168.4.16`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen hostname (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8474, "Listen port")
	serveCmd.Flags().StringVar(&profileName, "profile", "", "Firmware profile name")
	serveCmd.Flags().StringVar(&profileFile, "profile-file", "", "Load profiles from a YAML file instead of the built-in catalog")
	serveCmd.Flags().StringVar(&symbolFile, "symbol-file", "", "ELF image with symbols (required to set breakpoints by name)")
	serveCmd.Flags().StringVar(&gdbPath, "gdb-path", "arm-none-eabi-gdb", "Path to arm-none-eabi-gdb binary")
	serveCmd.Flags().StringVar(&openocdHost, "openocd-host", "localhost", "GDB stub hostname")
	serveCmd.Flags().IntVar(&openocdPort, "openocd-port", 3333, "GDB stub port")
	serveCmd.Flags().StringVar(&gdbTimeout, "timeout", "30s", "GDB command timeout (e.g., 30s, 2m)")
	serveCmd.Flags().BoolVar(&resetHalt, "reset", false, "Reset and halt the target before the first resume")
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	if err := logging.InitializeFromEnv(); err != nil {
		_ = err
	}
	logger := logging.GetLogger()

	var catalog *profile.Catalog
	var err error
	if profileFile != "" {
		catalog, err = profile.LoadFile(profileFile)
	} else {
		catalog, err = profile.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if profileName == "" {
		return fmt.Errorf("no profile selected (available: %s)",
			strings.Join(catalog.Names(), ", "))
	}
	prof, ok := catalog.Get(profileName)
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %s)",
			profileName, strings.Join(catalog.Names(), ", "))
	}
	if prof.Session == nil {
		return fmt.Errorf("profile %q describes no test session", prof.Name)
	}

	opts, err := prof.Session.MonitorOptions()
	if err != nil {
		return err
	}

	commandTimeout, err := time.ParseDuration(gdbTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout value: %w", err)
	}

	endpoint := fmt.Sprintf("%s:%d", openocdHost, openocdPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{Host: host, Port: port}, logger)
	srv.SetSession(prof.Name, endpoint)

	srvDone := make(chan error, 1)
	go func() {
		srvDone <- srv.Start(ctx)
	}()

	driver := gdb.NewDriver(gdb.Config{
		GDBPath:        gdbPath,
		OpenOCDHost:    openocdHost,
		OpenOCDPort:    openocdPort,
		CommandTimeout: commandTimeout,
	}, logger)
	if err := driver.Start(ctx, gdb.AttachSpec{
		SymbolFile:  symbolFile,
		Breakpoints: prof.Session.Breakpoints(),
		Reset:       resetHalt,
	}); err != nil {
		stop()
		<-srvDone
		return fmt.Errorf("failed to attach: %w", err)
	}
	defer driver.Close()

	events := make(chan session.Event, 64)
	opts.Events = events

	fanDone := make(chan struct{})
	go func() {
		defer close(fanDone)
		for ev := range events {
			srv.Publish(ev)
		}
	}()

	mon, err := session.New(opts, logger)
	if err != nil {
		return err
	}

	logger.Info("session starting",
		zap.String("profile", prof.Name),
		zap.String("probe", endpoint),
	)
	outcome := mon.Run(ctx, driver)
	close(events)
	<-fanDone

	srv.SetOutcome(outcome)

	// On a failed or timed-out session the target is still attached; decode
	// its trace ring so observers can see what the firmware logged last.
	if prof.Trace != nil &&
		(outcome.Verdict == session.VerdictFailed || outcome.Verdict == session.VerdictTimedOut) {
		if table, terr := prof.Trace.VariantTable(); terr == nil {
			report, derr := trace.Decode(driver, prof.Trace.LayoutCandidates(), table)
			if derr != nil {
				logger.Warn("trace decode after session failed", zap.Error(derr))
			} else {
				srv.SetReport(report)
			}
		}
	}

	logger.Info("session finished, feed remains available",
		zap.String("verdict", outcome.Verdict.String()),
		zap.String("reason", outcome.Reason),
	)
	fmt.Printf("session %s: %s (%d/%d rounds)\n",
		outcome.Verdict, outcome.Reason, outcome.Rounds, outcome.MaxRounds)

	// Keep serving history and outcome until interrupted.
	if err := <-srvDone; err != nil {
		return err
	}

	if !outcome.Success() {
		return fmt.Errorf("session %s: %s", outcome.Verdict, outcome.Reason)
	}
	return nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ringscope-server %s\n", version.Full())
	},
}
