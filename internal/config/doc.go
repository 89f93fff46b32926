// Package config provides user configuration management for ringscope.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for debug probes (aliases, endpoints, default symbol files) and
// application preferences. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/ringscope/config.yaml or $HOME/.config/ringscope/config.yaml
//   - macOS: $HOME/.config/ringscope/config.yaml
//   - Windows: %LOCALAPPDATA%\ringscope\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update probe metadata
//	probe := registry.EnsureProbe("bench-ast1060")
//	probe.Host = "192.168.1.50"
//	probe.SymbolFile = "/build/app.elf"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
