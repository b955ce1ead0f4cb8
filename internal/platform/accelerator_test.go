package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccelerator(t *testing.T) {
	cmdOrCtrl := ModControl
	if runtime.GOOS == "darwin" {
		cmdOrCtrl = ModSuper
	}

	tests := []struct {
		in   string
		want Accelerator
	}{
		{"Ctrl+Shift+K", Accelerator{Mods: ModControl | ModShift, Key: "K"}},
		{"ctrl+alt+delete", Accelerator{Mods: ModControl | ModAlt, Key: "Delete"}},
		{"CmdOrCtrl+Q", Accelerator{Mods: cmdOrCtrl, Key: "Q"}},
		{"Super+F12", Accelerator{Mods: ModSuper, Key: "F12"}},
		{" Alt + space ", Accelerator{Mods: ModAlt, Key: "Space"}},
		{"5", Accelerator{Key: "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccelerator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAcceleratorRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "Ctrl+", "Hyper+K", "Ctrl+Ctrl+K", "Ctrl+F25", "Shift+%"} {
		_, err := ParseAccelerator(in)
		assert.Error(t, err, in)
	}
}

func TestAcceleratorCanonicalFormsShareID(t *testing.T) {
	a, err := ParseAccelerator("shift+ctrl+k")
	require.NoError(t, err)
	b, err := ParseAccelerator("Control+Shift+K")
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Shift+K", a.String())
	assert.Equal(t, a.ID(), b.ID())

	c, err := ParseAccelerator("Control+Shift+J")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestAcceleratorX11(t *testing.T) {
	a, err := ParseAccelerator("Ctrl+Alt+PageUp")
	require.NoError(t, err)
	assert.Equal(t, "control-mod1-Prior", a.X11())

	b, err := ParseAccelerator("Super+Shift+T")
	require.NoError(t, err)
	assert.Equal(t, "shift-mod4-t", b.X11())
}
