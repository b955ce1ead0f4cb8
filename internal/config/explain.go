package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path and the file
// position that last set it. Sequence elements are addressed by index;
// windows also accept their label:
//
//	log_level
//	ipc.socket
//	windows.0.title
//	windows.main.url
//	shortcuts.1.action
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	path = canonicalWindowPath(res.Config, path)

	var doc yaml.Node
	if err := doc.Encode(res.Config); err != nil {
		return nil, Source{}, fmt.Errorf("failed to encode config: %w", err)
	}
	node, err := walkPath(&doc, path)
	if err != nil {
		return nil, Source{}, err
	}
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// canonicalWindowPath rewrites windows.<label> to windows.<index>.
func canonicalWindowPath(cfg *Config, path string) string {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) < 2 || parts[0] != "windows" {
		return path
	}
	if _, err := strconv.Atoi(parts[1]); err == nil {
		return path
	}
	for i, w := range cfg.Windows {
		if w.Label == parts[1] {
			parts[1] = strconv.Itoa(i)
			return strings.Join(parts, ".")
		}
	}
	return path
}

func walkPath(node *yaml.Node, path string) (*yaml.Node, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, part := range strings.Split(path, ".") {
		switch node.Kind {
		case yaml.MappingNode:
			var next *yaml.Node
			for i := 0; i+1 < len(node.Content); i += 2 {
				if node.Content[i].Value == part {
					next = node.Content[i+1]
					break
				}
			}
			if next == nil {
				return nil, fmt.Errorf("unknown path %q", path)
			}
			node = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node.Content) {
				return nil, fmt.Errorf("unknown path %q", path)
			}
			node = node.Content[idx]
		default:
			return nil, fmt.Errorf("unknown path %q", path)
		}
	}
	return node, nil
}
