package metadata

import "fmt"

/** @brief The graphics backend driving the renderers. */
type BackendType int

const (
	/** @brief OpenGL 3.3 core through go-gl. */
	BackendTypeOpenGL BackendType = iota
	/** @brief CPU rasterizer, used headless and by tests. */
	BackendTypeSoftware
)

func ParseBackendType(s string) (BackendType, error) {
	switch s {
	case "", "opengl", "gl":
		return BackendTypeOpenGL, nil
	case "software", "soft":
		return BackendTypeSoftware, nil
	}
	return BackendTypeOpenGL, fmt.Errorf("unknown renderer backend `%s`", s)
}

func (b BackendType) String() string {
	if b == BackendTypeSoftware {
		return "software"
	}
	return "opengl"
}

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Initial surface width in pixels. */
	Width uint32
	/** @brief Initial surface height in pixels. */
	Height uint32
	/** @brief Wait for vertical sync on present. */
	VSync bool
}

/**
 * @brief Counters accumulated by a backend between ResetStats calls.
 */
type RendererStats struct {
	DrawCalls     int
	Vertices      int
	Instances     int
	BufferUploads int
	ShaderBinds   int
	TextureBinds  int
	TargetBinds   int
	Clears        int
	/** @brief Live batches, filled in by the renderer façade. */
	Batches int
}

func (s *RendererStats) Add(other RendererStats) {
	s.DrawCalls += other.DrawCalls
	s.Vertices += other.Vertices
	s.Instances += other.Instances
	s.BufferUploads += other.BufferUploads
	s.ShaderBinds += other.ShaderBinds
	s.TextureBinds += other.TextureBinds
	s.TargetBinds += other.TargetBinds
	s.Clears += other.Clears
	s.Batches += other.Batches
}

// Sub returns the counters accumulated since an earlier snapshot.
func (s RendererStats) Sub(earlier RendererStats) RendererStats {
	return RendererStats{
		DrawCalls:     s.DrawCalls - earlier.DrawCalls,
		Vertices:      s.Vertices - earlier.Vertices,
		Instances:     s.Instances - earlier.Instances,
		BufferUploads: s.BufferUploads - earlier.BufferUploads,
		ShaderBinds:   s.ShaderBinds - earlier.ShaderBinds,
		TextureBinds:  s.TextureBinds - earlier.TextureBinds,
		TargetBinds:   s.TargetBinds - earlier.TargetBinds,
		Clears:        s.Clears - earlier.Clears,
		Batches:       s.Batches - earlier.Batches,
	}
}

func (s RendererStats) String() string {
	return fmt.Sprintf("draws=%d vertices=%d instances=%d uploads=%d batches=%d", s.DrawCalls, s.Vertices, s.Instances, s.BufferUploads, s.Batches)
}
