package discovery

import (
	"fmt"
	"time"
)

// Probe represents a discovered debug probe on the network
type Probe struct {
	// Name is the mDNS instance name (e.g., "Open On-Chip Debugger")
	Name string

	// Hostname is the mDNS hostname (e.g., "jtag-bench.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.16")
	IP string

	// Port is the GDB stub port (typically 3333 for OpenOCD, 2331 for J-Link)
	Port int

	// Transport identifies the probe software ("openocd", "jlink", or "gdbserver")
	Transport string

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the probe was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the probe
func (p *Probe) String() string {
	return fmt.Sprintf("%s probe %s (%s) at %s:%d", p.Transport, p.Name, p.Hostname, p.IP, p.Port)
}

// Endpoint returns the host:port address of the probe's GDB stub
func (p *Probe) Endpoint() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Probe) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
