package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/systems"
)

const (
	BackendOpenGL   = "opengl"
	BackendSoftware = "software"
)

type WindowSection struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"y"`
	// Window starting width.
	StartWidth uint32 `toml:"width"`
	// Window starting height.
	StartHeight uint32 `toml:"height"`
	// Either "opengl" or "software". The software backend runs without a window.
	Backend string `toml:"backend"`
	VSync   bool   `toml:"vsync"`
	// Stop after this many frames. Zero runs until the window closes.
	FrameLimit uint64 `toml:"frame_limit"`
	// Software backend only: the last frame is written to this PNG on shutdown.
	Capture string `toml:"capture"`
}

type LogSection struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type RendererSection struct {
	ShaderDir            string `toml:"shader_dir"`
	MaxInstancesPerBatch uint32 `toml:"max_instances_per_batch"`
	MaxVerticesPerBatch  uint32 `toml:"max_vertices_per_batch"`
	DebugTextBounds      bool   `toml:"debug_text_bounds"`
}

type AssetsSection struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type ApplicationConfig struct {
	Application WindowSection   `toml:"application"`
	Log         LogSection      `toml:"log"`
	Renderer    RendererSection `toml:"renderer"`
	Assets      AssetsSection   `toml:"assets"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Application: WindowSection{
			Name:        "Anima 2D",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
			Backend:     BackendOpenGL,
			VSync:       true,
		},
		Log: LogSection{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Renderer: RendererSection{
			MaxInstancesPerBatch: systems.DefaultMaxInstancesPerBatch,
			MaxVerticesPerBatch:  systems.DefaultMaxVerticesPerBatch,
		},
		Assets: AssetsSection{
			Dir:   "assets",
			Watch: true,
		},
	}
}

/**
 * @brief Reads a TOML configuration file on top of the defaults. Keys missing
 * from the file keep their default value.
 */
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	switch c.Application.Backend {
	case BackendOpenGL, BackendSoftware:
	default:
		return fmt.Errorf("backend `%s`: %w", c.Application.Backend, core.ErrUnknownBackend)
	}
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		return fmt.Errorf("window %dx%d: %w", c.Application.StartWidth, c.Application.StartHeight, core.ErrInvalidSize)
	}
	return nil
}

func (c *ApplicationConfig) LoggerConfig() core.LoggerConfig {
	return core.LoggerConfig{
		Level:      core.ParseLogLevel(c.Log.Level),
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

func (c *ApplicationConfig) RendererConfig() systems.RendererConfig {
	return systems.RendererConfig{
		MaxInstancesPerBatch: c.Renderer.MaxInstancesPerBatch,
		MaxVerticesPerBatch:  c.Renderer.MaxVerticesPerBatch,
		ShaderSearchPath:     c.Renderer.ShaderDir,
		DebugTextBounds:      c.Renderer.DebugTextBounds,
	}
}
