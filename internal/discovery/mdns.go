package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceTypeGDBServer is the mDNS service type advertised by networked
	// GDB stubs (OpenOCD with mDNS enabled, gdbserver wrappers)
	ServiceTypeGDBServer = "_gdbserver._tcp"

	// ServiceTypeJLink is the mDNS service type advertised by SEGGER
	// J-Link remote servers
	ServiceTypeJLink = "_jlink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for probe discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultGDBPort is the default OpenOCD GDB stub port
	DefaultGDBPort = 3333
)

// serviceTypes lists the service types scanned, in order.
var serviceTypes = []string{ServiceTypeGDBServer, ServiceTypeJLink}

// Scanner handles mDNS probe discovery
type Scanner struct {
	// Timeout is the maximum time to wait per service type
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForProbes discovers all debug probes on the local network
// Returns a list of discovered probes or an error
func (s *Scanner) ScanForProbes() ([]*Probe, error) {
	return s.ScanForProbesWithContext(context.Background())
}

// ScanForProbesWithContext discovers probes with a custom context.
// Each known service type is browsed in turn; a browse failure on one type
// does not abort the others.
func (s *Scanner) ScanForProbesWithContext(ctx context.Context) ([]*Probe, error) {
	probes := make([]*Probe, 0)
	var lastErr error

	for _, serviceType := range serviceTypes {
		found, err := s.browseService(ctx, serviceType)
		if err != nil {
			lastErr = err
			continue
		}
		probes = append(probes, found...)
	}

	if len(probes) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return probes, nil
}

// browseService browses one mDNS service type until the timeout elapses.
func (s *Scanner) browseService(ctx context.Context, serviceType string) ([]*Probe, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	probes := make([]*Probe, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(done)
		for entry := range entries {
			probe := s.parseServiceEntry(serviceType, entry)
			if probe != nil {
				probes = append(probes, probe)
			}
		}
	}()

	if err := resolver.Browse(ctx, serviceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for %s services: %w", serviceType, err)
	}

	// Wait for the browse to finish and the collector to drain.
	<-ctx.Done()
	<-done

	return probes, nil
}

// WaitForProbe waits for a probe whose instance name or hostname contains
// the given needle. Returns the probe or an error if not found within timeout.
func (s *Scanner) WaitForProbe(ctx context.Context, needle string) (*Probe, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	probeChan := make(chan *Probe, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	for _, serviceType := range serviceTypes {
		entries := make(chan *zeroconf.ServiceEntry)

		go func(st string, ch chan *zeroconf.ServiceEntry) {
			for entry := range ch {
				probe := s.parseServiceEntry(st, entry)
				if probe == nil {
					continue
				}
				if strings.Contains(probe.Name, needle) || strings.Contains(probe.Hostname, needle) {
					select {
					case probeChan <- probe:
						cancel()
					default:
					}
					return
				}
			}
		}(serviceType, entries)

		if err := resolver.Browse(ctx, serviceType, ServiceDomain, entries); err != nil {
			return nil, fmt.Errorf("failed to browse for %s services: %w", serviceType, err)
		}
	}

	select {
	case probe := <-probeChan:
		return probe, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("probe matching %q not found within timeout", needle)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Probe
// Returns nil if the entry carries no usable address
func (s *Scanner) parseServiceEntry(serviceType string, entry *zeroconf.ServiceEntry) *Probe {
	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultGDBPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Probe{
		Name:         entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Transport:    transportForService(serviceType, entry.Instance),
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// transportForService maps a service type (and instance name) to a
// transport identifier.
func transportForService(serviceType, instance string) string {
	switch serviceType {
	case ServiceTypeJLink:
		return "jlink"
	default:
		lower := strings.ToLower(instance)
		if strings.Contains(lower, "open on-chip") || strings.Contains(lower, "openocd") {
			return "openocd"
		}
		return "gdbserver"
	}
}

// ScanForProbes is a convenience function to scan for probes with a custom timeout
func ScanForProbes(timeout time.Duration) ([]*Probe, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForProbes()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Probe, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForProbes()
}
