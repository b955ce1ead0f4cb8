package platform

import "math"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Position is a window position in either physical or logical pixels.
type Position interface {
	ToPhysical(scaleFactor float64) PhysicalPosition
}

// Size is a window size in either physical or logical pixels.
type Size interface {
	ToPhysical(scaleFactor float64) PhysicalSize
}

// PhysicalPosition is measured in device pixels.
type PhysicalPosition struct {
	X int
	Y int
}

func (p PhysicalPosition) ToPhysical(float64) PhysicalPosition { return p }

// ToLogical converts p to logical pixels.
func (p PhysicalPosition) ToLogical(scaleFactor float64) LogicalPosition {
	scaleFactor = validScale(scaleFactor)
	return LogicalPosition{X: float64(p.X) / scaleFactor, Y: float64(p.Y) / scaleFactor}
}

// LogicalPosition is measured in scale-independent pixels.
type LogicalPosition struct {
	X float64
	Y float64
}

func (p LogicalPosition) ToPhysical(scaleFactor float64) PhysicalPosition {
	scaleFactor = validScale(scaleFactor)
	return PhysicalPosition{
		X: int(math.Round(p.X * scaleFactor)),
		Y: int(math.Round(p.Y * scaleFactor)),
	}
}

// PhysicalSize is measured in device pixels.
type PhysicalSize struct {
	Width  uint32
	Height uint32
}

func (s PhysicalSize) ToPhysical(float64) PhysicalSize { return s }

// ToLogical converts s to logical pixels.
func (s PhysicalSize) ToLogical(scaleFactor float64) LogicalSize {
	scaleFactor = validScale(scaleFactor)
	return LogicalSize{Width: float64(s.Width) / scaleFactor, Height: float64(s.Height) / scaleFactor}
}

// LogicalSize is measured in scale-independent pixels.
type LogicalSize struct {
	Width  float64
	Height float64
}

func (s LogicalSize) ToPhysical(scaleFactor float64) PhysicalSize {
	scaleFactor = validScale(scaleFactor)
	return PhysicalSize{
		Width:  uint32(math.Max(0, math.Round(s.Width*scaleFactor))),
		Height: uint32(math.Max(0, math.Round(s.Height*scaleFactor))),
	}
}

func validScale(scaleFactor float64) float64 {
	if scaleFactor <= 0 || math.IsNaN(scaleFactor) || math.IsInf(scaleFactor, 0) {
		return 1
	}
	return scaleFactor
}

// Monitor describes a physical display.
type Monitor struct {
	Name        string
	Position    PhysicalPosition
	Size        PhysicalSize
	ScaleFactor float64
}

// Bounds returns the monitor area in screen coordinates.
func (m Monitor) Bounds() Rect {
	return Rect{
		X:      m.Position.X,
		Y:      m.Position.Y,
		Width:  int(m.Size.Width),
		Height: int(m.Size.Height),
	}
}

// MonitorAt returns the monitor containing the point, if any.
func MonitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, m := range monitors {
		if m.Bounds().Contains(x, y) {
			return m, true
		}
	}
	return Monitor{}, false
}

// Theme is the window color scheme.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// UserAttentionType selects how urgently a window asks for attention.
type UserAttentionType int

const (
	AttentionCritical UserAttentionType = iota
	AttentionInformational
)

// CursorIcon names a pointer shape.
type CursorIcon string

const (
	CursorDefault    CursorIcon = "default"
	CursorPointer    CursorIcon = "pointer"
	CursorText       CursorIcon = "text"
	CursorWait       CursorIcon = "wait"
	CursorCrosshair  CursorIcon = "crosshair"
	CursorMove       CursorIcon = "move"
	CursorNotAllowed CursorIcon = "not-allowed"
	CursorEResize    CursorIcon = "e-resize"
	CursorNResize    CursorIcon = "n-resize"
)
