package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPoolReusesReleasedSlots(t *testing.T) {
	type owner struct{ name string }
	pool := NewIDPool[owner]()

	a := pool.Acquire(&owner{"a"})
	b := pool.Acquire(&owner{"b"})
	assert.Equal(t, uint32(1), a)
	assert.Equal(t, uint32(2), b)

	require.NoError(t, pool.Release(a))
	_, ok := pool.Get(a)
	assert.False(t, ok)

	c := pool.Acquire(&owner{"c"})
	assert.Equal(t, a, c)
	o, ok := pool.Get(c)
	require.True(t, ok)
	assert.Equal(t, "c", o.name)
	assert.Equal(t, 2, pool.Len())

	assert.Error(t, pool.Release(0))
	assert.Error(t, pool.Release(42))
}

func TestEventFireStopsWhenHandled(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	calls := 0
	first := EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		calls++
		return true
	})
	EventRegister(EVENT_CODE_RESIZED, func(ctx EventContext) bool {
		calls++
		return false
	})

	assert.True(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, 1, calls)

	assert.True(t, EventUnregister(EVENT_CODE_RESIZED, first))
	assert.False(t, EventUnregister(EVENT_CODE_RESIZED, first))
	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, 2, calls)
}

func TestInputTracksMouseAndKeys(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()
	require.NoError(t, InputInitialize())
	defer InputShutdown()

	var moved *MouseEvent
	EventRegister(EVENT_CODE_MOUSE_MOVED, func(ctx EventContext) bool {
		moved = ctx.Data.(*MouseEvent)
		return true
	})

	require.NoError(t, InputProcessMouseMove(400, 300))
	x, y := InputGetMousePosition()
	assert.Equal(t, float32(400), x)
	assert.Equal(t, float32(300), y)
	require.NotNil(t, moved)
	assert.Equal(t, float32(400), moved.PosX)

	require.NoError(t, InputProcessKey(KEY_SPACE, true))
	assert.True(t, InputIsKeyDown(KEY_SPACE))
	assert.False(t, InputWasKeyDown(KEY_SPACE))
	require.NoError(t, InputUpdate(0))
	assert.True(t, InputWasKeyDown(KEY_SPACE))
	require.NoError(t, InputProcessKey(KEY_SPACE, false))
	assert.True(t, InputIsKeyUp(KEY_SPACE))
}

func TestFrameMetricsAverage(t *testing.T) {
	fm := NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		fm.Update(0.016)
	}
	assert.InDelta(t, 16.0, fm.FrameTime(), 0.001)

	for i := 0; i < 70; i++ {
		fm.Update(0.016)
	}
	assert.Greater(t, fm.FPS(), 50.0)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLogLevel(" WARNING "))
	assert.Equal(t, ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}

func TestClockTicks(t *testing.T) {
	now := time.Unix(100, 0)
	c := newClockAt(func() time.Time { return now })

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(250 * time.Millisecond)
	assert.InDelta(t, 0.25, c.Tick(), 1e-9)
	now = now.Add(500 * time.Millisecond)
	assert.InDelta(t, 0.5, c.Tick(), 1e-9)
	assert.InDelta(t, 0.75, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	assert.Zero(t, c.Tick())
	assert.InDelta(t, 0.75, c.Elapsed(), 1e-9)
}
