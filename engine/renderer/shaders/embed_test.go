package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func TestEveryBuiltinIsEmbedded(t *testing.T) {
	require.Len(t, Names(), 16)
	for _, name := range Names() {
		src, err := Builtin(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, src.Name)
		assert.Contains(t, src.Vertex, "#version 330 core")
		assert.Contains(t, src.Fragment, "#version 330 core")
		assert.Contains(t, src.Vertex, UniformViewProjection)
	}
}

func TestBuiltinLayouts(t *testing.T) {
	src, err := Builtin("sprite")
	require.NoError(t, err)
	assert.Equal(t, metadata.LayoutSprite, src.Layout)

	src, err = Builtin("bloom_combine")
	require.NoError(t, err)
	assert.Equal(t, metadata.LayoutVertex, src.Layout)

	_, err = Builtin("nope")
	assert.Error(t, err)
}

func TestDetectLayout(t *testing.T) {
	assert.Equal(t, metadata.LayoutSprite, DetectLayout("custom", DefaultVertexStage(metadata.LayoutSprite)))
	assert.Equal(t, metadata.LayoutVertex, DetectLayout("custom", DefaultVertexStage(metadata.LayoutVertex)))
	assert.Equal(t, metadata.LayoutSprite, DetectLayout("text", ""))
}
