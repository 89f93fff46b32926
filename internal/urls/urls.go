package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://ringscope.github.io/ringscope/

// ConnectingAProbe covers OpenOCD and J-Link setup, SWD/JTAG wiring,
// and verifying the GDB stub port is reachable.
const ConnectingAProbe = "https://ringscope.github.io/ringscope/guides/connecting-a-probe/"

// ReadingTraceBuffers is the guide for dumping and interpreting
// firmware trace ring buffers, including layout discovery.
const ReadingTraceBuffers = "https://ringscope.github.io/ringscope/guides/reading-trace-buffers/"

// MonitoringTestRuns explains how to drive on-target test sessions,
// interpret verdicts, and capture panic backtraces.
const MonitoringTestRuns = "https://ringscope.github.io/ringscope/guides/monitoring-test-runs/"

// TroubleshootingGuide provides solutions to common issues
// encountered when working with probes, GDB, and OpenOCD.
const TroubleshootingGuide = "https://ringscope.github.io/ringscope/guides/troubleshooting/"

// ContributingProfiles explains how to contribute trace layouts and
// variant tables for new firmware images to the profile catalog.
const ContributingProfiles = "https://ringscope.github.io/ringscope/contributing/profiles/"

// GettingStarted is the quick start guide for new users.
const GettingStarted = "https://ringscope.github.io/ringscope/getting-started/overview/"
