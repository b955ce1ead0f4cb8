package platform

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"strings"
)

// Modifiers is a set of modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// AcceleratorID identifies an accelerator in native shortcut events.
type AcceleratorID uint16

// Accelerator is a parsed keyboard shortcut such as "CmdOrCtrl+Shift+K".
type Accelerator struct {
	Mods Modifiers
	// Key is the canonical key name: an upper-case letter, a digit, or a
	// named key such as "F5" or "Space".
	Key string
}

// x11 keysym names by canonical key name.
var namedKeys = map[string]string{
	"SPACE":     "Space",
	"ENTER":     "Enter",
	"RETURN":    "Enter",
	"TAB":       "Tab",
	"ESCAPE":    "Escape",
	"ESC":       "Escape",
	"BACKSPACE": "Backspace",
	"DELETE":    "Delete",
	"INSERT":    "Insert",
	"HOME":      "Home",
	"END":       "End",
	"PAGEUP":    "PageUp",
	"PAGEDOWN":  "PageDown",
	"UP":        "Up",
	"DOWN":      "Down",
	"LEFT":      "Left",
	"RIGHT":     "Right",
	"PLUS":      "Plus",
	"MINUS":     "Minus",
	"COMMA":     "Comma",
	"PERIOD":    "Period",
}

var x11Keysyms = map[string]string{
	"Space":     "space",
	"Enter":     "Return",
	"Tab":       "Tab",
	"Escape":    "Escape",
	"Backspace": "BackSpace",
	"Delete":    "Delete",
	"Insert":    "Insert",
	"Home":      "Home",
	"End":       "End",
	"PageUp":    "Prior",
	"PageDown":  "Next",
	"Up":        "Up",
	"Down":      "Down",
	"Left":      "Left",
	"Right":     "Right",
	"Plus":      "plus",
	"Minus":     "minus",
	"Comma":     "comma",
	"Period":    "period",
}

// ParseAccelerator parses strings like "Ctrl+Alt+Delete" or "CmdOrCtrl+K".
// Modifier and key names are case-insensitive.
func ParseAccelerator(s string) (Accelerator, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return Accelerator{}, fmt.Errorf("empty accelerator")
	}

	var accel Accelerator
	for i, raw := range parts {
		token := strings.ToUpper(strings.TrimSpace(raw))
		if token == "" {
			return Accelerator{}, fmt.Errorf("invalid accelerator %q: empty component", s)
		}
		last := i == len(parts)-1
		if !last {
			mod, ok := parseModifier(token)
			if !ok {
				return Accelerator{}, fmt.Errorf("invalid accelerator %q: unknown modifier %q", s, raw)
			}
			if accel.Mods&mod != 0 {
				return Accelerator{}, fmt.Errorf("invalid accelerator %q: duplicate modifier %q", s, raw)
			}
			accel.Mods |= mod
			continue
		}
		key, ok := parseKey(token)
		if !ok {
			return Accelerator{}, fmt.Errorf("invalid accelerator %q: unknown key %q", s, raw)
		}
		accel.Key = key
	}
	return accel, nil
}

func parseModifier(token string) (Modifiers, bool) {
	switch token {
	case "SHIFT":
		return ModShift, true
	case "CTRL", "CONTROL":
		return ModControl, true
	case "ALT", "OPTION":
		return ModAlt, true
	case "SUPER", "META", "CMD", "COMMAND":
		return ModSuper, true
	case "CMDORCTRL", "COMMANDORCONTROL", "CMDORCONTROL", "COMMANDORCTRL":
		if runtime.GOOS == "darwin" {
			return ModSuper, true
		}
		return ModControl, true
	}
	return 0, false
}

func parseKey(token string) (string, bool) {
	if len(token) == 1 {
		c := token[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return token, true
		}
		return "", false
	}
	if name, ok := namedKeys[token]; ok {
		return name, true
	}
	if strings.HasPrefix(token, "F") {
		n, err := strconv.Atoi(token[1:])
		if err == nil && n >= 1 && n <= 24 {
			return "F" + strconv.Itoa(n), true
		}
	}
	return "", false
}

// String returns the canonical form, for example "Ctrl+Shift+K".
func (a Accelerator) String() string {
	var b strings.Builder
	for _, m := range []struct {
		mod  Modifiers
		name string
	}{
		{ModControl, "Ctrl"},
		{ModAlt, "Alt"},
		{ModShift, "Shift"},
		{ModSuper, "Super"},
	} {
		if a.Mods&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(a.Key)
	return b.String()
}

// ID hashes the canonical form into the identifier carried by shortcut events.
func (a Accelerator) ID() AcceleratorID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(a.String()))
	sum := h.Sum32()
	return AcceleratorID(sum ^ sum>>16)
}

// X11 returns the accelerator in xgbutil keybind notation, e.g. "control-shift-k".
func (a Accelerator) X11() string {
	var mods []string
	if a.Mods&ModShift != 0 {
		mods = append(mods, "shift")
	}
	if a.Mods&ModControl != 0 {
		mods = append(mods, "control")
	}
	if a.Mods&ModAlt != 0 {
		mods = append(mods, "mod1")
	}
	if a.Mods&ModSuper != 0 {
		mods = append(mods, "mod4")
	}
	key := a.Key
	if sym, ok := x11Keysyms[key]; ok {
		key = sym
	} else if len(key) == 1 {
		key = strings.ToLower(key)
	}
	return strings.Join(append(mods, key), "-")
}
