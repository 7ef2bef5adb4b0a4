package alert

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/simlaunch/internal/simulator/simtest"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	yes := func() bool { return true }
	no := func() bool { return false }

	a, err := New(ModeNever, &buf, yes)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, a)

	a, err = New(ModeAuto, &buf, yes)
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, a)

	a, err = New(ModeAuto, &buf, no)
	require.NoError(t, err)
	assert.IsType(t, &AppleScript{}, a)

	a, err = New(ModeAlways, &buf, yes)
	require.NoError(t, err)
	assert.IsType(t, &AppleScript{}, a)

	_, err = New("loud", &buf, yes)
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Terminal{W: &buf}).Alert(context.Background(), "Installation failed", "No simulator matching \"iPhone 99\" was found."))

	out := buf.String()
	assert.Contains(t, out, "Installation failed")
	assert.Contains(t, out, "iPhone 99")
}

func TestAppleScript(t *testing.T) {
	t.Run("passes title and message as arguments", func(t *testing.T) {
		stub := simtest.New(t)
		a := &AppleScript{OsascriptPath: stub.Dir + "/osascript"}

		require.NoError(t, a.Alert(context.Background(), "Installation failed", "bad bundle"))

		calls := stub.CallsWithPrefix("osascript")
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0], "display alert")
		assert.Contains(t, calls[0], "Installation failed bad bundle")
	})

	t.Run("reports osascript failures", func(t *testing.T) {
		stub := simtest.New(t)
		stub.FailOsascript("no window server")
		a := &AppleScript{OsascriptPath: stub.Dir + "/osascript"}

		err := a.Alert(context.Background(), "t", "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no window server")
	})
}
