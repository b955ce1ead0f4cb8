package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawIPC struct {
	Enabled *bool   `yaml:"enabled"`
	Socket  *string `yaml:"socket"`
}

// RawConfig is one YAML file before defaults are applied. Nil fields were
// not set by the file.
type RawConfig struct {
	Include    IncludeList      `yaml:"include"`
	LogLevel   *string          `yaml:"log_level"`
	Backend    *string          `yaml:"backend"`
	Display    *string          `yaml:"display"`
	XAuthority *string          `yaml:"xauthority"`
	Windows    []WindowConfig   `yaml:"windows"`
	Shortcuts  []ShortcutConfig `yaml:"shortcuts"`
	Tray       *TrayConfig      `yaml:"tray"`
	IPC        *RawIPC          `yaml:"ipc"`
}

// merge overlays o on r. Windows are merged by label and shortcuts by
// accelerator string; o wins on conflicts.
func (r RawConfig) merge(o RawConfig) RawConfig {
	out := r
	out.Include = nil
	if o.LogLevel != nil {
		out.LogLevel = o.LogLevel
	}
	if o.Backend != nil {
		out.Backend = o.Backend
	}
	if o.Display != nil {
		out.Display = o.Display
	}
	if o.XAuthority != nil {
		out.XAuthority = o.XAuthority
	}
	if o.Tray != nil {
		out.Tray = o.Tray
	}
	if o.IPC != nil {
		ipc := RawIPC{}
		if r.IPC != nil {
			ipc = *r.IPC
		}
		if o.IPC.Enabled != nil {
			ipc.Enabled = o.IPC.Enabled
		}
		if o.IPC.Socket != nil {
			ipc.Socket = o.IPC.Socket
		}
		out.IPC = &ipc
	}

	out.Windows = append([]WindowConfig(nil), r.Windows...)
	for _, w := range o.Windows {
		replaced := false
		for i := range out.Windows {
			if out.Windows[i].Label == w.Label {
				out.Windows[i] = w
				replaced = true
				break
			}
		}
		if !replaced {
			out.Windows = append(out.Windows, w)
		}
	}

	out.Shortcuts = append([]ShortcutConfig(nil), r.Shortcuts...)
	for _, s := range o.Shortcuts {
		replaced := false
		for i := range out.Shortcuts {
			if out.Shortcuts[i].Accelerator == s.Accelerator {
				out.Shortcuts[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			out.Shortcuts = append(out.Shortcuts, s)
		}
	}
	return out
}
