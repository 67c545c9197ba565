package run

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/motormenu/hardware/input"
	"github.com/temoto/motormenu/internal/motor"
	"github.com/temoto/motormenu/internal/state"
)

func TestStart(t *testing.T) {
	t.Parallel()

	ctx, g := state.NewTestContext(t, `menu {
tick_ms = 1
update_ms = 1
motor "0" { power = "ON" }
}`)
	task, err := Start(ctx)
	require.NoError(t, err)
	dev := state.MockDisplay(ctx)
	assert.Equal(t, "Motor 0: ON, 0, L   ", dev.Line(1))

	for _, k := range []input.Key{input.KeyEnter, input.KeyEnter, input.KeyNext, input.KeyEnter, input.KeyNext, input.KeyEnter} {
		before := task.Renders()
		g.Hardware.Input.Emit(input.Event{Source: "test", Key: k})
		require.Eventually(t, func() bool { return task.Renders() > before }, time.Second, time.Millisecond)
	}
	require.NoError(t, Shutdown(ctx))
	assert.Equal(t, motor.Snapshot{{Power: true, Speed: 1}, {}}, task.Snapshot())
	assert.Equal(t, "Select Variable:    ", dev.Line(1))
	assert.Equal(t, "> Speed             ", dev.Line(2))
}

func TestStartInvalidMotor(t *testing.T) {
	t.Parallel()

	ctx, _ := state.NewTestContext(t, "")
	g := state.GetGlobal(ctx)
	g.Config.Menu.XXX_Motors = []state.MotorConfig{{Name: "5"}}
	_, err := Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu.motor")
}
