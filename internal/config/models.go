package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for debug probes and application preferences.
type Registry struct {
	Version     int               `yaml:"version"`
	Probes      map[string]*Probe `yaml:"probes,omitempty"` // Keyed by probe alias
	Preferences *Preferences      `yaml:"preferences,omitempty"`
}

// Probe represents user-defined metadata for a single debug probe endpoint.
// This is keyed by a user-chosen alias in the Registry.
type Probe struct {
	Host       string    `yaml:"host"`                  // Probe GDB stub host
	Port       int       `yaml:"port"`                  // Probe GDB stub port
	Transport  string    `yaml:"transport,omitempty"`   // "openocd" or "jlink"
	SymbolFile string    `yaml:"symbol_file,omitempty"` // Default ELF with symbols for this probe
	Profile    string    `yaml:"profile,omitempty"`     // Default target profile for this probe
	LastSeen   time.Time `yaml:"last_seen,omitempty"`   // Last discovery/connection time
	Notes      string    `yaml:"notes,omitempty"`       // Free-form notes (board revision, wiring)
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	GDBPath         string `yaml:"gdb_path,omitempty"`        // Cross-GDB binary to use
	DefaultProfile  string `yaml:"default_profile,omitempty"` // Profile used when none is given
	AutoDiscover    bool   `yaml:"auto_discover"`             // Enable automatic mDNS discovery on startup
	DiscoverTimeout int    `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Probes:  make(map[string]*Probe),
		Preferences: &Preferences{
			GDBPath:         "arm-none-eabi-gdb",
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetProbe retrieves probe metadata by alias.
// Returns nil if the alias doesn't exist in the registry.
func (r *Registry) GetProbe(alias string) *Probe {
	return r.Probes[alias]
}

// EnsureProbe ensures a probe entry exists in the registry.
// If the alias doesn't exist, creates a new entry with default values.
// Returns the probe entry (existing or newly created).
func (r *Registry) EnsureProbe(alias string) *Probe {
	if r.Probes == nil {
		r.Probes = make(map[string]*Probe)
	}

	if probe, exists := r.Probes[alias]; exists {
		return probe
	}

	probe := &Probe{
		Host:      "localhost",
		Port:      3333,
		Transport: "openocd",
	}
	r.Probes[alias] = probe
	return probe
}

// UpdateProbeLastSeen updates the last seen timestamp and endpoint for a probe.
func (r *Registry) UpdateProbeLastSeen(alias, host string, port int) {
	probe := r.EnsureProbe(alias)
	probe.LastSeen = time.Now()
	probe.Host = host
	probe.Port = port
}

// SetProbeSymbolFile records the default symbol file for a probe.
func (r *Registry) SetProbeSymbolFile(alias, symbolFile string) {
	probe := r.EnsureProbe(alias)
	probe.SymbolFile = symbolFile
}

// SetProbeProfile records the default target profile for a probe.
func (r *Registry) SetProbeProfile(alias, profileName string) {
	probe := r.EnsureProbe(alias)
	probe.Profile = profileName
}

// TransportDefinitions maps transport identifiers to human-readable names.
// This is used for display and validation purposes.
var TransportDefinitions = map[string]string{
	"openocd": "OpenOCD",
	"jlink":   "SEGGER J-Link",
	"other":   "Other GDB stub",
}
