// Package discovery provides mDNS-based discovery of networked debug probes.
//
// This package implements multicast DNS (mDNS) service discovery to locate
// debug probes whose GDB stubs are reachable over the network. Two service
// types are scanned: "_gdbserver._tcp" (OpenOCD and generic gdbserver
// wrappers) and "_jlink._tcp" (SEGGER J-Link remote servers).
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries for each known service type
//  2. Listens for service advertisements from probes
//  3. Collects endpoint information (hostname, IP, GDB stub port)
//  4. Returns a list of discovered probes after the timeout period
//
// # Usage Example
//
//	// Discover probes with 10-second timeout
//	probes, err := discovery.ScanForProbes(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, probe := range probes {
//	    fmt.Printf("Found: %s at %s\n", probe.Name, probe.Endpoint())
//	}
//
// # Network Requirements
//
// mDNS uses UDP multicast on 224.0.0.251:5353; discovery only works on the
// local link, and firewalls that block multicast will hide probes. A probe
// that doesn't advertise itself can always be addressed directly by
// host:port.
package discovery
