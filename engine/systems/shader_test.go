package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
)

const declarations = `
uniform float u_gain = 2.5;
uniform vec3 u_tint = vec3(0.5);
uniform vec4 u_rect = vec4(1, 2, 3, 4);
uniform int u_count;
  uniform bool u_on = true;
uniform mat3 u_skipped;
uniform sampler2D u_source;
uniform sampler2D u_bloom;
uniform float u_gain = 9.0;
// uniform float u_commented;
`

func TestParseUniformDeclarations(t *testing.T) {
	uniforms, samplers := ParseUniformDeclarations(declarations)

	names := make([]string, len(uniforms))
	for i, u := range uniforms {
		names[i] = u.Name
	}
	assert.Equal(t, []string{"u_gain", "u_tint", "u_rect", "u_count", "u_on"}, names)
	assert.Equal(t, float32(2.5), uniforms[0].Value.Float())
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), uniforms[1].Value.Vec3())
	assert.Equal(t, math.NewVec4(1, 2, 3, 4), uniforms[2].Value.Vec4())
	assert.Equal(t, metadata.UniformTypeInt, uniforms[3].Value.Type)
	assert.Equal(t, int32(0), uniforms[3].Value.Int())
	assert.True(t, uniforms[4].Value.Bool())

	require.Len(t, samplers, 2)
	assert.Equal(t, metadata.SamplerDeclaration{Name: "u_source", Slot: 0}, samplers[0])
	assert.Equal(t, metadata.SamplerDeclaration{Name: "u_bloom", Slot: 1}, samplers[1])
}

func TestShaderLoadBuiltin(t *testing.T) {
	ss := NewShaderSystem(&ShaderSystemConfig{}, newSoftBackend(t))

	id, err := ss.Load("bloom_combine")
	require.NoError(t, err)
	again, err := ss.Load("bloom_combine")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	sh, ok := ss.Get(id)
	require.True(t, ok)
	assert.Equal(t, metadata.LayoutVertex, sh.Layout)
	// reserved uniforms are uploaded by the flush, not stored
	assert.Equal(t, []string{"u_intensity"}, sh.UniformNames())
	assert.Equal(t, []string{"u_source", "u_bloom"}, sh.SamplerNames())
	assert.Equal(t, int32(1), sh.Textures["u_bloom"].Slot)
	assert.Equal(t, float32(1), sh.Uniforms["u_intensity"].Float())
}

func TestShaderLoadUnknown(t *testing.T) {
	ss := NewShaderSystem(&ShaderSystemConfig{SearchPath: t.TempDir()}, newSoftBackend(t))

	_, err := ss.Load("missing")
	require.ErrorIs(t, err, core.ErrShaderNotFound)

	_, ok := ss.CheckShader("missing")
	assert.False(t, ok)
	_, ok = ss.GetByName("missing")
	assert.False(t, ok)
}

func TestShaderFailureIsRemembered(t *testing.T) {
	dir := t.TempDir()
	soft.RegisterKernel("late", func(*soft.Context, soft.Fragment) math.Vec4 { return math.NewVec4One() })
	ss := NewShaderSystem(&ShaderSystemConfig{SearchPath: dir}, newSoftBackend(t))

	for i := 0; i < 3; i++ {
		_, ok := ss.CheckShader("late")
		assert.False(t, ok)
	}

	// the search path is not read again until a refresh
	writeShaderFile(t, dir, "late.frag", "uniform float u_gain = 1.0;\n", time.Now())
	_, ok := ss.CheckShader("late")
	assert.False(t, ok)
	_, err := ss.Load("late")
	assert.ErrorIs(t, err, core.ErrShaderNotFound)

	assert.Equal(t, 0, ss.RefreshModified())
	id, ok := ss.CheckShader("late")
	require.True(t, ok)
	sh, _ := ss.Get(id)
	assert.Equal(t, float32(1), sh.Uniforms["u_gain"].Float())
}

func TestShaderSetUniform(t *testing.T) {
	ss := NewShaderSystem(&ShaderSystemConfig{}, newSoftBackend(t))
	_, err := ss.Load("bloom_combine")
	require.NoError(t, err)

	require.NoError(t, ss.SetUniform("bloom_combine", "u_intensity", metadata.UniformFloat(3)))
	sh, _ := ss.GetByName("bloom_combine")
	assert.Equal(t, float32(3), sh.Uniforms["u_intensity"].Float())

	assert.ErrorIs(t, ss.SetUniform("bloom_combine", "u_missing", metadata.UniformFloat(1)), core.ErrUniformNotFound)
	assert.Error(t, ss.SetUniform("bloom_combine", "u_intensity", metadata.UniformInt(1)))
	assert.ErrorIs(t, ss.SetUniform("nope", "u_intensity", metadata.UniformFloat(1)), core.ErrShaderNotFound)
	assert.Equal(t, float32(3), sh.Uniforms["u_intensity"].Float())
}

func TestShaderSetTexture(t *testing.T) {
	ss := NewShaderSystem(&ShaderSystemConfig{}, newSoftBackend(t))
	_, err := ss.Load("bloom_combine")
	require.NoError(t, err)

	require.NoError(t, ss.SetTexture("bloom_combine", "u_bloom", 7))
	sh, _ := ss.GetByName("bloom_combine")
	assert.Equal(t, metadata.TextureSlot{Slot: 1, Handle: 7}, sh.Textures["u_bloom"])
	assert.ErrorIs(t, ss.SetTexture("bloom_combine", "u_nothing", 7), core.ErrUniformNotFound)
}

func TestShaderDiskSourceReload(t *testing.T) {
	dir := t.TempDir()
	start := time.Now().Add(-time.Hour)
	writeShaderFile(t, dir, "basic.frag", "uniform float u_gain = 2.0;\nuniform sampler2D u_mask;\n", start)

	ss := NewShaderSystem(&ShaderSystemConfig{SearchPath: dir}, newSoftBackend(t))
	id, err := ss.Load("basic")
	require.NoError(t, err)
	sh, _ := ss.Get(id)
	assert.NotEmpty(t, sh.FragmentPath)
	assert.Equal(t, metadata.LayoutVertex, sh.Layout)
	require.NoError(t, ss.SetUniform("basic", "u_gain", metadata.UniformFloat(5)))
	require.NoError(t, ss.SetTexture("basic", "u_mask", 3))
	program := sh.Program

	assert.Equal(t, 0, ss.RefreshModified())

	writeShaderFile(t, dir, "basic.frag",
		"uniform float u_gain = 1.0;\nuniform vec4 u_tint = vec4(1.0);\nuniform sampler2D u_mask;\n", start.Add(time.Minute))
	assert.Equal(t, 1, ss.RefreshModified())

	sh, ok := ss.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, sh.ID)
	assert.NotEqual(t, program, sh.Program)
	assert.Equal(t, float32(5), sh.Uniforms["u_gain"].Float())
	assert.Equal(t, math.NewVec4One(), sh.Uniforms["u_tint"].Vec4())
	assert.Equal(t, metadata.TextureHandle(3), sh.Textures["u_mask"].Handle)
	assert.Equal(t, []string{"u_gain", "u_tint"}, sh.UniformNames())

	assert.Equal(t, 0, ss.RefreshModified())
}
