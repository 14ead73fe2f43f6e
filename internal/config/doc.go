// Package config provides the configuration system for quill.
//
// The config package manages loading, merging, validating, and watching
// all composer settings including history depth, link scheme and mention
// host allow-lists, and custom suggestion patterns.
//
// # Layers
//
// Settings are resolved in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← Highest priority (QUILL_*)
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← quill.toml / quill.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing settings file is not an error; the defaults stand alone.
// The merged result is validated before use, so a bad file or environment
// value surfaces at load time rather than mid-edit.
//
// # Basic Usage
//
// Load settings from a path:
//
//	cfg, err := config.Load("quill.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MaxHistoryEntries)
//
// Watch the file for changes:
//
//	w, err := config.NewWatcher("quill.toml", func(s config.Settings) {
//	    // apply the reloaded settings
//	})
//	defer w.Close()
//
// # Configuration Files
//
// TOML is the primary format; files ending in .yaml or .yml are decoded
// as YAML with the same fields:
//
//	# quill.toml
//	maxHistoryEntries = 100
//	linkSchemes = ["https", "http", "mailto", "matrix"]
//	mentionHosts = ["matrix.to"]
//
//	[[patterns]]
//	name = "issue"
//	regex = '^[A-Z]+-\d+$'
//
// # Error Handling
//
// The package defines two error types:
//
//   - ErrValidationFailed: a merged setting value is out of range
//   - ParseError: the settings file could not be decoded
package config
