package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ringscope/ringscope/internal/config"
	"github.com/ringscope/ringscope/internal/discovery"
	"github.com/ringscope/ringscope/internal/gdb"
	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/profile"
	"github.com/ringscope/ringscope/internal/rsp"
	"github.com/ringscope/ringscope/internal/server"
	"github.com/ringscope/ringscope/internal/session"
	"github.com/ringscope/ringscope/internal/target"
	"github.com/ringscope/ringscope/internal/trace"
	"github.com/ringscope/ringscope/internal/ui"
	"github.com/ringscope/ringscope/internal/urls"
)

// Command flags
var (
	gdbPath     string
	openocdHost string
	openocdPort int
	gdbTimeout  string
	verbose     bool

	probeAlias  string
	profileName string
	profileFile string
	symbolFile  string
	resetHalt   bool

	dumpDirect bool

	monitorWatch   bool
	serveAddr      string
	sessionTimeout string

	scanTimeout  int
	discoverSave bool
	discoverWait string
)

func init() {
	// Common flags for all commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&openocdHost, "openocd-host", "localhost", "GDB stub hostname")
	rootCmd.PersistentFlags().IntVar(&openocdPort, "openocd-port", 3333, "GDB stub port")
	rootCmd.PersistentFlags().StringVar(&gdbPath, "gdb-path", "arm-none-eabi-gdb", "Path to arm-none-eabi-gdb binary")
	rootCmd.PersistentFlags().StringVar(&gdbTimeout, "timeout", "30s", "GDB command timeout (e.g., 30s, 2m)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed GDB output")
	rootCmd.PersistentFlags().StringVar(&probeAlias, "probe", "", "Registered probe alias (provides host, port, symbol file)")

	// Add subcommands
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(checkCmd)
}

// applyRegistry fills in flag values from the user's probe registry: the
// preferred GDB path, the default profile, and the endpoint of a registered
// probe alias. Explicit flags always win.
func applyRegistry(cmd *cobra.Command) {
	reg, err := config.GetGlobalRegistry()
	if err != nil {
		return
	}

	if prefs := reg.Preferences; prefs != nil {
		if prefs.GDBPath != "" && !cmd.Flags().Changed("gdb-path") {
			gdbPath = prefs.GDBPath
		}
		if prefs.DefaultProfile != "" && profileName == "" {
			profileName = prefs.DefaultProfile
		}
	}

	if probeAlias == "" {
		return
	}
	probe := resolveProbeAlias(reg, probeAlias)
	if probe == nil {
		return
	}
	if !cmd.Flags().Changed("openocd-host") {
		openocdHost = probe.Host
	}
	if !cmd.Flags().Changed("openocd-port") {
		openocdPort = probe.Port
	}
	if symbolFile == "" {
		symbolFile = probe.SymbolFile
	}
	if probe.Profile != "" && profileName == "" {
		profileName = probe.Profile
	}
}

// resolveProbeAlias looks the alias up in the registry, falling back to a
// quick mDNS scan when it is unknown and auto-discovery is enabled.
func resolveProbeAlias(reg *config.Registry, alias string) *config.Probe {
	if p := reg.GetProbe(alias); p != nil {
		return p
	}
	if reg.Preferences == nil || !reg.Preferences.AutoDiscover {
		return nil
	}

	found, err := discovery.QuickScan()
	if err != nil {
		return nil
	}
	for _, f := range found {
		if probeAliasFor(f) == alias ||
			strings.Contains(strings.ToLower(f.Name), strings.ToLower(alias)) {
			reg.UpdateProbeLastSeen(alias, f.IP, f.Port)
			_ = config.SaveGlobal()
			return reg.GetProbe(alias)
		}
	}
	return nil
}

// sessionLogger initializes logging from the environment (silent unless
// RINGSCOPE_LOG_LEVEL is set) and returns the shared logger.
func sessionLogger() *zap.Logger {
	if err := logging.InitializeFromEnv(); err != nil {
		_ = err // GetLogger falls back to a nop logger
	}
	return logging.GetLogger()
}

// loadProfile resolves the target profile from --profile-file or the
// embedded catalog.
func loadProfile() (*profile.Profile, error) {
	var catalog *profile.Catalog
	var err error
	if profileFile != "" {
		catalog, err = profile.LoadFile(profileFile)
	} else {
		catalog, err = profile.Load()
	}
	if err != nil {
		return nil, err
	}

	if profileName == "" {
		if len(catalog.Profiles) == 1 {
			return catalog.Profiles[0], nil
		}
		return nil, fmt.Errorf("no profile selected (available: %s)",
			strings.Join(catalog.Names(), ", "))
	}

	p, ok := catalog.Get(profileName)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)",
			profileName, strings.Join(catalog.Names(), ", "))
	}
	return p, nil
}

// driverConfig builds the GDB driver configuration from the common flags.
func driverConfig() (gdb.Config, error) {
	timeout, err := time.ParseDuration(gdbTimeout)
	if err != nil {
		return gdb.Config{}, fmt.Errorf("invalid timeout value: %w", err)
	}
	return gdb.Config{
		GDBPath:        gdbPath,
		OpenOCDHost:    openocdHost,
		OpenOCDPort:    openocdPort,
		CommandTimeout: timeout,
	}, nil
}

func probeEndpoint() string {
	return fmt.Sprintf("%s:%d", openocdHost, openocdPort)
}

// attachStepPrinter renders attach progress as styled step lines. Only
// terminal states print; in-progress notifications would duplicate the line.
func attachStepPrinter() func(gdb.AttachStep) {
	return func(step gdb.AttachStep) {
		var status ui.StepStatus
		switch step.Status {
		case "success":
			status = ui.StepComplete
		case "failed":
			status = ui.StepFailed
		default:
			return
		}
		ui.PrintStep(ui.Step{Name: step.Name, Status: status, Message: step.Message})
	}
}

// confirmReset prompts before a --reset run. Non-interactive invocations
// (pipes, CI) skip the prompt; they asked for the reset explicitly.
func confirmReset() bool {
	if !resetHalt {
		return true
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	return ui.ResetConfirmation()
}

// dumpCmd implements the 'dump' command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Decode a firmware trace ring buffer",
	Long: `Read a firmware trace ring buffer from target memory and decode it.

The profile supplies the ring's base address and geometry, the layout
candidates to probe (head offset varies across firmware builds), and the
discriminant-to-variant table. Every slot is decoded; unknown discriminants
render as Unknown(<n>) and unreadable slots show their read error inline.
The most recently written slot is marked.

By default the read goes through arm-none-eabi-gdb. With --direct, ringscope
speaks the GDB remote serial protocol straight to the stub's TCP port, so no
local GDB install is needed.`,
	Example: `  # Decode the SPDM responder trace ring
  ringscope dump --profile spdm-responder

  # No local GDB: raw remote serial protocol to the stub
  ringscope dump --profile spdm-responder --direct

  # Against a remote probe
  ringscope dump --profile spdm-responder --openocd-host 192.168.4.16

  # Custom firmware profile from disk
  ringscope dump --profile-file my-firmware.yaml --profile my-app`,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&profileName, "profile", "", "Firmware profile name")
	dumpCmd.Flags().StringVar(&profileFile, "profile-file", "", "Load profiles from a YAML file instead of the built-in catalog")
	dumpCmd.Flags().StringVar(&symbolFile, "symbol-file", "", "ELF image with symbols (optional for dump)")
	dumpCmd.Flags().BoolVar(&dumpDirect, "direct", false, "Speak the remote serial protocol directly (no GDB binary)")
	dumpCmd.Flags().BoolVar(&resetHalt, "reset", false, "Reset and halt the target before reading")
}

func runDump(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true
	applyRegistry(cmd)

	prof, err := loadProfile()
	if err != nil {
		ui.PrintFailure("Trace dump failed", err, []string{
			"Select a built-in profile with --profile <name>",
			"Or load one from disk with --profile-file",
		})
		return err
	}
	if prof.Trace == nil {
		err := fmt.Errorf("profile %q describes no trace ring", prof.Name)
		ui.PrintFailure("Trace dump failed", err, []string{
			"Pick a profile with a trace section",
			"Profile docs: " + urls.ContributingProfiles,
		})
		return err
	}

	table, err := prof.Trace.VariantTable()
	if err != nil {
		ui.PrintFailure("Trace dump failed", err, []string{
			"Payload kinds must be u8, u32, or enum",
			"Profile docs: " + urls.ContributingProfiles,
		})
		return err
	}
	candidates := prof.Trace.LayoutCandidates()

	method := "GDB memory examine"
	if dumpDirect {
		method = "Remote serial protocol (direct)"
	}

	ui.PrintCommandHeader(
		"Trace Dump",
		"ringscope dump",
		map[string]string{
			"Probe":   probeEndpoint(),
			"Profile": prof.Name,
			"Ring": fmt.Sprintf("0x%x (%d x %d bytes)",
				prof.Trace.Base, prof.Trace.EntryCount, prof.Trace.EntryStride),
			"Method": method,
		},
	)

	logger := sessionLogger()
	ctx := context.Background()

	var reader target.MemoryReader
	if dumpDirect {
		client, err := rsp.Dial(ctx, probeEndpoint(), logger)
		if err != nil {
			ui.PrintFailure("Trace dump failed", err, []string{
				"Ensure the GDB stub is listening on " + probeEndpoint(),
				"Try: ringscope check",
				"Docs: " + urls.ConnectingAProbe,
			})
			return err
		}
		defer client.Close()
		reader = client
	} else {
		cfg, err := driverConfig()
		if err != nil {
			ui.PrintFailure("Trace dump failed", err, []string{
				"Provide a Go duration for --timeout (e.g., 30s, 2m)",
			})
			return err
		}
		if !confirmReset() {
			return nil // user cancelled
		}
		driver := gdb.NewDriver(cfg, logger)
		if err := driver.Start(ctx, gdb.AttachSpec{
			SymbolFile: symbolFile,
			Reset:      resetHalt,
			OnProgress: attachStepPrinter(),
		}); err != nil {
			if verbose {
				ui.PrintGDBOutput(driver.Transcript())
			}
			ui.PrintFailure("Trace dump failed", err, []string{
				"Verify OpenOCD is running and connected",
				"Try: ringscope check",
				"Run with --verbose for full GDB output",
			})
			return err
		}
		defer driver.Close()
		reader = driver
	}

	ui.PrintPleaseWait("Reading trace ring", "one read per slot, this may take a few seconds")

	report, err := trace.Decode(reader, candidates, table)
	if err != nil {
		ui.PrintFailure("Trace dump failed", err, []string{
			"Check the profile's layout candidates",
			"Docs: " + urls.ReadingTraceBuffers,
		})
		return err
	}

	if driver, ok := reader.(*gdb.Driver); ok && verbose {
		ui.PrintGDBOutput(driver.Transcript())
	}

	ui.PrintStyledLine(ui.RenderTraceReport(report, ui.GetTerminalWidth()))

	if n := unreadableSlots(report); n > 0 {
		ui.PrintWarning("Some slots were unreadable", map[string]string{
			"Slots": fmt.Sprintf("%d of %d", n, len(report.Records)),
			"Hint":  "The target may have been running during the read; try --reset",
		})
	}

	return nil
}

func unreadableSlots(report trace.Report) int {
	n := 0
	for _, rec := range report.Records {
		if rec.Err != "" {
			n++
		}
	}
	return n
}

// monitorCmd implements the 'monitor' command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run an on-target test session to a verdict",
	Long: `Drive the firmware's test suite and report a pass/fail verdict.

The profile supplies the expected test entry functions, panic breakpoints,
the exported pass/fail counter names, and the round/timeout policy. The
session resumes the target in a loop, classifies every stop, tallies test
entry hits, and completes a round when every expected test has been hit. At
each round boundary the exported counters are polled; a nonzero failed
counter fails the session immediately.

Verdicts: Succeeded (exit 0), Failed, TimedOut, TargetLost, Interrupted
(all exit 1). A panic stop captures a backtrace before the verdict.

--watch opens a full-screen live view; --serve exposes the running session
over HTTP and WebSocket for remote observers (see ringscope-server for the
standalone variant).`,
	Example: `  # Run the HMAC digest test session
  ringscope monitor --profile digest-test --symbol-file build/hubris.elf

  # Watch it live
  ringscope monitor --profile digest-test --symbol-file build/hubris.elf --watch

  # Expose the session feed for remote observers
  ringscope monitor --profile digest-test --serve :8474

  # Single long round
  ringscope monitor --profile digest-test --session-timeout 5m`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&profileName, "profile", "", "Firmware profile name")
	monitorCmd.Flags().StringVar(&profileFile, "profile-file", "", "Load profiles from a YAML file instead of the built-in catalog")
	monitorCmd.Flags().StringVar(&symbolFile, "symbol-file", "", "ELF image with symbols (required to set breakpoints by name)")
	monitorCmd.Flags().BoolVar(&resetHalt, "reset", false, "Reset and halt the target before the first resume")
	monitorCmd.Flags().BoolVar(&monitorWatch, "watch", false, "Show a full-screen live session view")
	monitorCmd.Flags().StringVar(&serveAddr, "serve", "", "Serve the session feed on this address (e.g., :8474)")
	monitorCmd.Flags().StringVar(&sessionTimeout, "session-timeout", "", "Override the profile's session timeout (e.g., 90s, 5m)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true
	applyRegistry(cmd)

	prof, err := loadProfile()
	if err != nil {
		ui.PrintFailure("Test session failed", err, []string{
			"Select a built-in profile with --profile <name>",
			"Or load one from disk with --profile-file",
		})
		return err
	}
	if prof.Session == nil {
		err := fmt.Errorf("profile %q describes no test session", prof.Name)
		ui.PrintFailure("Test session failed", err, []string{
			"Pick a profile with a session section",
			"Profile docs: " + urls.ContributingProfiles,
		})
		return err
	}

	opts, err := prof.Session.MonitorOptions()
	if err != nil {
		ui.PrintFailure("Test session failed", err, []string{
			"Check the profile's timeout field (Go duration, e.g., 60s)",
		})
		return err
	}
	if sessionTimeout != "" {
		d, err := time.ParseDuration(sessionTimeout)
		if err != nil {
			ui.PrintFailure("Invalid arguments", err, []string{
				"Provide a Go duration for --session-timeout (e.g., 90s, 5m)",
			})
			return err
		}
		opts.Timeout = d
	}

	ui.PrintCommandHeader(
		"Test Session",
		"ringscope monitor",
		map[string]string{
			"Probe":   probeEndpoint(),
			"Profile": prof.Name,
			"Tests":   strings.Join(opts.Expected, ", "),
			"Rounds":  fmt.Sprintf("%d", opts.MaxRounds),
			"Timeout": opts.Timeout.String(),
		},
	)

	logger := sessionLogger()
	cfg, err := driverConfig()
	if err != nil {
		ui.PrintFailure("Test session failed", err, []string{
			"Provide a Go duration for --timeout (e.g., 30s, 2m)",
		})
		return err
	}

	if !confirmReset() {
		return nil // user cancelled
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := gdb.NewDriver(cfg, logger)
	if err := driver.Start(ctx, gdb.AttachSpec{
		SymbolFile:  symbolFile,
		Breakpoints: prof.Session.Breakpoints(),
		Reset:       resetHalt,
		OnProgress:  attachStepPrinter(),
	}); err != nil {
		if verbose {
			ui.PrintGDBOutput(driver.Transcript())
		}
		ui.PrintFailure("Test session failed", err, []string{
			"Breakpoints need symbols; pass the firmware ELF with --symbol-file",
			"Try: ringscope check",
			"Docs: " + urls.MonitoringTestRuns,
		})
		return err
	}
	defer driver.Close()

	events := make(chan session.Event, 64)
	opts.Events = events

	mon, err := session.New(opts, logger)
	if err != nil {
		ui.PrintFailure("Test session failed", err, nil)
		return err
	}

	var srv *server.Server
	if serveAddr != "" {
		srvCfg, err := parseServeAddr(serveAddr)
		if err != nil {
			ui.PrintFailure("Invalid arguments", err, []string{
				"Provide --serve as host:port or :port (e.g., :8474)",
			})
			return err
		}
		srv = server.New(srvCfg, logger)
		srv.SetSession(prof.Name, probeEndpoint())
		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Warn("feed server stopped", zap.Error(err))
			}
		}()
	}

	// Fan events out to the feed server and the live view. The monitor's
	// sends never block, and neither may we.
	var uiCh chan session.Event
	if monitorWatch {
		uiCh = make(chan session.Event, 64)
	}
	fanDone := make(chan struct{})
	go func() {
		defer close(fanDone)
		for ev := range events {
			if srv != nil {
				srv.Publish(ev)
			}
			if uiCh != nil {
				select {
				case uiCh <- ev:
				default:
				}
			}
		}
		if uiCh != nil {
			close(uiCh)
		}
	}()

	var outcome session.Outcome
	if monitorWatch {
		runDone := make(chan struct{})
		go func() {
			outcome = mon.Run(ctx, driver)
			close(events)
			close(runDone)
		}()

		model := ui.NewLiveModel(prof.Name, probeEndpoint(), opts.Expected, opts.MaxRounds, uiCh)
		final, uiErr := ui.RunLive(model)
		if uiErr != nil {
			logger.Warn("live view failed", zap.Error(uiErr))
		}
		if final.Interrupted() {
			cancel()
		}
		<-runDone
	} else {
		ui.PrintPleaseWait("Monitoring test session", "up to "+opts.Timeout.String())
		outcome = mon.Run(ctx, driver)
		close(events)
	}
	<-fanDone

	if srv != nil {
		srv.SetOutcome(outcome)
	}

	if verbose {
		ui.PrintGDBOutput(driver.Transcript())
	}

	ui.PrintStyledLine(ui.RenderSessionSummary(outcome, ui.GetTerminalWidth()))

	if !outcome.Success() {
		return fmt.Errorf("session %s: %s",
			strings.ToLower(outcome.Verdict.String()), outcome.Reason)
	}
	return nil
}

// parseServeAddr splits a host:port feed address into a server config.
func parseServeAddr(addr string) (server.Config, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid serve address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return server.Config{}, fmt.Errorf("invalid serve port %q", portStr)
	}
	return server.Config{Host: host, Port: port}, nil
}

// discoverCmd implements the 'discover' command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find networked debug probes via mDNS",
	Long: `Scan the local network for debug probes announcing a GDB stub.

Probes announcing _gdbserver._tcp or _jlink._tcp are listed with their
endpoint and transport. Use --save to record them in the probe registry so
later commands can address them by alias with --probe.

Note that plain OpenOCD does not announce itself over mDNS; networked
J-Link adapters and mDNS-wrapped bench setups do.`,
	Example: `  # Scan with the default timeout
  ringscope discover

  # Longer scan, saving results to the registry
  ringscope discover --scan-timeout 30 --save`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Record discovered probes in the registry")
	discoverCmd.Flags().StringVar(&discoverWait, "wait", "", "Block until a probe matching this name appears")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true

	reg, regErr := config.GetGlobalRegistry()

	timeout := time.Duration(scanTimeout) * time.Second
	if !cmd.Flags().Changed("scan-timeout") && regErr == nil &&
		reg.Preferences != nil && reg.Preferences.DiscoverTimeout > 0 {
		timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
	}

	ui.PrintCommandHeader(
		"Probe Discovery",
		"ringscope discover",
		map[string]string{
			"Services": discovery.ServiceTypeGDBServer + ", " + discovery.ServiceTypeJLink,
			"Timeout":  timeout.String(),
		},
	)

	var probes []*discovery.Probe
	var err error
	if discoverWait != "" {
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		ui.PrintPleaseWait("Waiting for probe "+discoverWait, "up to "+timeout.String())
		var p *discovery.Probe
		p, err = scanner.WaitForProbe(context.Background(), discoverWait)
		if p != nil {
			probes = append(probes, p)
		}
	} else {
		ui.PrintPleaseWait("Scanning for debug probes", timeout.String())
		probes, err = discovery.ScanForProbes(timeout)
	}
	if err != nil {
		ui.PrintFailure("Probe discovery failed", err, []string{
			"mDNS needs multicast; check firewall and VPN settings",
			"The probe must be on the same network segment",
			"Docs: " + urls.ConnectingAProbe,
		})
		return err
	}

	if len(probes) == 0 {
		ui.PrintWarning("No probes found", map[string]string{
			"Hint": "Plain OpenOCD does not announce itself over mDNS",
			"Next": "Point --openocd-host/--openocd-port at the stub directly",
		})
		return nil
	}

	for _, p := range probes {
		ui.PrintStyledLine("  " + p.String())
	}

	if discoverSave {
		if regErr != nil {
			ui.PrintFailure("Could not save probes", regErr, []string{
				"Check permissions on the config directory",
			})
			return regErr
		}
		// Scans can run long; re-read the file so a concurrent edit
		// (another scan, a manual change) is not clobbered.
		if fresh, err := config.ReloadRegistry(); err == nil {
			reg = fresh
		}
		for _, p := range probes {
			reg.UpdateProbeLastSeen(probeAliasFor(p), p.IP, p.Port)
		}
		if err := config.SaveGlobal(); err != nil {
			ui.PrintFailure("Could not save probes", err, []string{
				"Check permissions on the config directory",
			})
			return err
		}
		ui.PrintSuccess("Probes saved", map[string]string{
			"Count": fmt.Sprintf("%d", len(probes)),
			"Usage": "ringscope dump --probe <alias>",
		})
	}

	return nil
}

// probeAliasFor derives a registry alias from a discovered probe's instance
// name (lowercased, spaces collapsed to dashes).
func probeAliasFor(p *discovery.Probe) string {
	alias := strings.ToLower(p.Name)
	alias = strings.Join(strings.Fields(alias), "-")
	if alias == "" {
		alias = p.IP
	}
	return alias
}

// checkCmd implements the 'check' command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify GDB and probe connectivity",
	Long: `Verify that the prerequisites for target operations are met.

This command checks:
  1. arm-none-eabi-gdb binary is installed and executable
  2. The GDB stub (OpenOCD/J-Link) accepts connections

The stub check is informational: 'dump --direct' works without a local GDB,
and a probe can be brought up after the binary check passes.`,
	Example: `  # Verify default setup
  ringscope check

  # Verify a remote probe with a custom toolchain
  ringscope check --openocd-host 192.168.4.16 --gdb-path /opt/arm/bin/arm-none-eabi-gdb`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true
	applyRegistry(cmd)

	ui.PrintCommandHeader(
		"Setup Check",
		"ringscope check",
		map[string]string{
			"GDB Path": gdbPath,
			"Probe":    probeEndpoint(),
		},
	)

	ctx := context.Background()
	result, err := gdb.ValidatePrerequisites(ctx, gdbPath, openocdHost, openocdPort)
	if err != nil {
		ui.PrintFailure("Setup check failed", err, nil)
		return err
	}

	ui.PrintStyledLine(gdb.FormatPrerequisiteReport(result))

	if !result.AllAvailable {
		ui.PrintFailure("Setup check failed",
			fmt.Errorf("required prerequisites are missing"), []string{
				"Install the ARM toolchain: apt install gcc-arm-none-eabi",
				"Or point --gdb-path at an existing binary",
				"Docs: " + urls.GettingStarted,
				"Troubleshooting: " + urls.TroubleshootingGuide,
			})
		return fmt.Errorf("setup check failed")
	}

	ui.PrintSuccess("Setup check complete", map[string]string{
		"GDB":    gdbPath + " (found)",
		"Probe":  probeEndpoint(),
		"Status": "Ready",
	})
	return nil
}
