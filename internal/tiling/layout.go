// Package tiling computes window arrangements inside a screen area.
package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/deskrun/internal/platform"
)

// Mode selects how windows are placed.
type Mode string

const (
	ModeGrid    Mode = "grid"
	ModeColumns Mode = "columns"
	ModeRows    Mode = "rows"
	ModeMaster  Mode = "master"
)

// Modes lists the supported modes in a stable order.
var Modes = []Mode{ModeGrid, ModeColumns, ModeRows, ModeMaster}

// Layout describes an arrangement.
type Layout struct {
	Mode Mode
	// Gap is the space in pixels around and between windows.
	Gap int
	// MasterPercent is the share of the width given to the first window
	// in master mode. Zero means 60.
	MasterPercent int
}

// ParseMode accepts a mode name; empty means grid.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeGrid, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q (want one of grid, columns, rows, master)", s)
}

// Grid returns the rows and columns for n windows: the smallest square-ish
// grid with columns first.
func Grid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// Positions places n windows inside area. A partial last grid row is
// stretched across the full width.
func Positions(n int, area platform.Rect, layout Layout) ([]platform.Rect, error) {
	if n <= 0 {
		return nil, nil
	}
	if layout.Gap < 0 {
		return nil, fmt.Errorf("gap must be >= 0")
	}

	var rows, cols int
	stretchLastRow := false
	switch layout.Mode {
	case ModeGrid, "":
		rows, cols = Grid(n)
		stretchLastRow = true
	case ModeColumns:
		rows, cols = 1, n
	case ModeRows:
		rows, cols = n, 1
	case ModeMaster:
		return masterStack(n, area, layout)
	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}

	gap := layout.Gap
	slotWidth := (area.Width - (cols+1)*gap) / cols
	slotHeight := (area.Height - (rows+1)*gap) / rows
	if slotWidth <= 0 || slotHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d",
			area.Width, area.Height, rows, cols, gap,
		)
	}

	lastRow := rows - 1
	inLastRow := n - lastRow*cols
	lastRowWidth := slotWidth
	if stretchLastRow && inLastRow < cols {
		lastRowWidth = (area.Width - (inLastRow+1)*gap) / inLastRow
	}

	out := make([]platform.Rect, n)
	for i := range out {
		row, col := i/cols, i%cols
		width := slotWidth
		if row == lastRow {
			width = lastRowWidth
		}
		out[i] = platform.Rect{
			X:      area.X + gap + col*(width+gap),
			Y:      area.Y + gap + row*(slotHeight+gap),
			Width:  width,
			Height: slotHeight,
		}
	}
	return out, nil
}

// masterStack gives the first window the left share of the area and stacks
// the rest in a column on the right.
func masterStack(n int, area platform.Rect, layout Layout) ([]platform.Rect, error) {
	percent := layout.MasterPercent
	if percent == 0 {
		percent = 60
	}
	if percent < 10 || percent > 90 {
		return nil, fmt.Errorf("master percent must be between 10 and 90")
	}
	gap := layout.Gap
	height := area.Height - 2*gap

	if n == 1 {
		return []platform.Rect{{
			X:      area.X + gap,
			Y:      area.Y + gap,
			Width:  area.Width - 2*gap,
			Height: height,
		}}, nil
	}

	masterWidth := area.Width*percent/100 - gap
	stackX := area.X + masterWidth + 2*gap
	stackWidth := area.Width - masterWidth - 3*gap
	stackCount := n - 1
	cellHeight := (height - (stackCount-1)*gap) / stackCount

	if masterWidth <= 0 || stackWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master layout: area=%dx%d windows=%d gap=%d",
			area.Width, area.Height, n, gap,
		)
	}

	out := make([]platform.Rect, n)
	out[0] = platform.Rect{X: area.X + gap, Y: area.Y + gap, Width: masterWidth, Height: height}
	for i := 0; i < stackCount; i++ {
		out[i+1] = platform.Rect{
			X:      stackX,
			Y:      area.Y + gap + i*(cellHeight+gap),
			Width:  stackWidth,
			Height: cellHeight,
		}
	}
	return out, nil
}
