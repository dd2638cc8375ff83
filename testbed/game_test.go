package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine"
)

func TestTestbedRunsHeadless(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	config.Application.Backend = engine.BackendSoftware
	config.Application.StartWidth = 160
	config.Application.StartHeight = 90
	config.Application.FrameLimit = 3
	config.Assets.Dir = ""

	tg := NewTestGame(config)
	e, err := engine.New(tg.Game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	assert.Equal(t, []string{layerBackground, layerWorld, layerLight}, tg.Layers.Names())
	assert.Len(t, tg.Layers.Renderers(), 3)
	assert.Equal(t, uint64(3), e.GetFrameNumber())
	require.NoError(t, e.Shutdown())
}
