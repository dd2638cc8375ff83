package systems

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/soft"
)

func newSoftBackend(t *testing.T) *soft.SoftRenderer {
	t.Helper()
	b := soft.New()
	require.NoError(t, b.Initialize(&metadata.RendererBackendConfig{Width: 16, Height: 16}))
	return b
}

func newTestManager(t *testing.T, config RendererConfig) (*SystemManager, *soft.SoftRenderer) {
	t.Helper()
	b := newSoftBackend(t)
	sm, err := NewSystemManager(b, config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm, b
}

func newOffscreen(t *testing.T, sm *SystemManager, w, h uint32) *Renderer {
	t.Helper()
	r, _, err := sm.NewOffscreenRenderer(w, h, metadata.NearestTextureOptions())
	require.NoError(t, err)
	return r
}

// pixelAt reads one pixel of the renderer target, y counted from the bottom.
func pixelAt(t *testing.T, r *Renderer, x, y uint32) [4]uint8 {
	t.Helper()
	pixels, err := r.GetTarget().(interface{ ReadPixels() ([]uint8, error) }).ReadPixels()
	require.NoError(t, err)
	w, _ := r.GetTarget().GetSize()
	i := (y*w + x) * 4
	return [4]uint8{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
}

func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	f()
	return nil
}

func writeShaderFile(t *testing.T, dir, file, source string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func quadVertices(rect math.Rect, colour math.Vec4) []metadata.Vertex {
	return colouredQuad(math.GeometryRectangleCorners(rect.Center(), rect.Size(), 0), colour)
}

var (
	red   = math.NewVec4(1, 0, 0, 1)
	green = math.NewVec4(0, 1, 0, 1)
	black = math.NewVec4(0, 0, 0, 1)
)
