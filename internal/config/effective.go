package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig. A file that lists
// windows replaces the default window set; the default shortcut is only kept
// while the default windows are.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Backend != nil {
		cfg.Backend = *raw.Backend
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.Windows != nil {
		cfg.Windows = raw.Windows
		cfg.Shortcuts = nil
	}
	if raw.Shortcuts != nil {
		cfg.Shortcuts = raw.Shortcuts
	}
	if raw.Tray != nil {
		tray := *raw.Tray
		cfg.Tray = &tray
	}
	if raw.IPC != nil {
		if raw.IPC.Enabled != nil {
			cfg.IPC.Enabled = *raw.IPC.Enabled
		}
		if raw.IPC.Socket != nil {
			cfg.IPC.Socket = *raw.IPC.Socket
		}
	}
	return cfg, nil
}
