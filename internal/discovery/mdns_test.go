package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name          string
		serviceType   string
		entry         *zeroconf.ServiceEntry
		wantNil       bool
		wantTransport string
		wantIP        string
		wantPort      int
	}{
		{
			name:        "openocd probe with IPv4",
			serviceType: ServiceTypeGDBServer,
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Open On-Chip Debugger"},
				HostName:      "jtag-bench.local.",
				Port:          3333,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"board=ast1060-evb"},
			},
			wantTransport: "openocd",
			wantIP:        "192.168.4.16",
			wantPort:      3333,
		},
		{
			name:        "jlink probe",
			serviceType: ServiceTypeJLink,
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "J-Link Remote Server"},
				HostName:      "jlink-desk.local",
				Port:          2331,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantTransport: "jlink",
			wantIP:        "10.0.0.5",
			wantPort:      2331,
		},
		{
			name:        "generic stub defaults port",
			serviceType: ServiceTypeGDBServer,
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "remote-stub"},
				HostName:      "stub.local",
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantTransport: "gdbserver",
			wantIP:        "192.168.1.100",
			wantPort:      DefaultGDBPort,
		},
		{
			name:        "IPv6 fallback",
			serviceType: ServiceTypeGDBServer,
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "openocd"},
				HostName:      "v6only.local",
				Port:          3333,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantTransport: "openocd",
			wantIP:        "fe80::1",
			wantPort:      3333,
		},
		{
			name:        "no address is dropped",
			serviceType: ServiceTypeGDBServer,
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "ghost"},
				HostName:      "ghost.local",
				Port:          3333,
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := scanner.parseServiceEntry(tt.serviceType, tt.entry)
			if tt.wantNil {
				if probe != nil {
					t.Fatalf("expected nil, got %+v", probe)
				}
				return
			}
			if probe == nil {
				t.Fatal("expected a probe, got nil")
			}
			if probe.Transport != tt.wantTransport {
				t.Errorf("Transport = %q, want %q", probe.Transport, tt.wantTransport)
			}
			if probe.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", probe.IP, tt.wantIP)
			}
			if probe.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", probe.Port, tt.wantPort)
			}
			if probe.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "openocd"},
		HostName:      "bench.local",
		Port:          3333,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.10")},
		Text:          []string{"board=ast1060-evb", "flagonly"},
	}

	probe := scanner.parseServiceEntry(ServiceTypeGDBServer, entry)
	if probe == nil {
		t.Fatal("expected a probe")
	}
	if got := probe.GetMetadata("board"); got != "ast1060-evb" {
		t.Errorf("board = %q, want ast1060-evb", got)
	}
	if got := probe.GetMetadata("flagonly"); got != "" {
		t.Errorf("flagonly = %q, want empty", got)
	}
	if got := probe.GetMetadata("missing"); got != "" {
		t.Errorf("missing = %q, want empty", got)
	}
}

func TestTransportForService(t *testing.T) {
	tests := []struct {
		serviceType string
		instance    string
		want        string
	}{
		{ServiceTypeJLink, "anything", "jlink"},
		{ServiceTypeGDBServer, "Open On-Chip Debugger", "openocd"},
		{ServiceTypeGDBServer, "openocd-0.12", "openocd"},
		{ServiceTypeGDBServer, "qemu", "gdbserver"},
	}
	for _, tt := range tests {
		if got := transportForService(tt.serviceType, tt.instance); got != tt.want {
			t.Errorf("transportForService(%q, %q) = %q, want %q",
				tt.serviceType, tt.instance, got, tt.want)
		}
	}
}

func TestProbe_Endpoint(t *testing.T) {
	probe := &Probe{IP: "192.168.1.50", Port: 3333}
	if got := probe.Endpoint(); got != "192.168.1.50:3333" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
	if DefaultScanTimeout != 10*time.Second {
		t.Errorf("DefaultScanTimeout = %v", DefaultScanTimeout)
	}
}
