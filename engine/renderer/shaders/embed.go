package shaders

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

//go:embed *.vert *.frag
var files embed.FS

/** @brief Reserved uniforms uploaded by every flush. */
const (
	UniformViewProjection = "u_view_projection"
	UniformTime           = "u_time"
	UniformResolution     = "u_resolution"
)

/** @brief Standard vertex stage per layout. */
const (
	VertexStageFile = "vertex.vert"
	SpriteStageFile = "sprite.vert"
)

type builtin struct {
	vertex   string
	fragment string
	layout   metadata.LayoutID
}

var builtins = map[string]builtin{
	"basic":            {VertexStageFile, "basic.frag", metadata.LayoutVertex},
	"textured":         {VertexStageFile, "textured.frag", metadata.LayoutVertex},
	"sprite":           {SpriteStageFile, "sprite.frag", metadata.LayoutSprite},
	"text":             {SpriteStageFile, "text.frag", metadata.LayoutSprite},
	"copy":             {VertexStageFile, "copy.frag", metadata.LayoutVertex},
	"brightness":       {VertexStageFile, "brightness.frag", metadata.LayoutVertex},
	"gauss_vertical":   {VertexStageFile, "gauss_vertical.frag", metadata.LayoutVertex},
	"gauss_horizontal": {VertexStageFile, "gauss_horizontal.frag", metadata.LayoutVertex},
	"bloom_combine":    {VertexStageFile, "bloom_combine.frag", metadata.LayoutVertex},
	"edge_detect":      {VertexStageFile, "edge_detect.frag", metadata.LayoutVertex},
	"edge_combine":     {VertexStageFile, "edge_combine.frag", metadata.LayoutVertex},
	"light_combine":    {VertexStageFile, "light_combine.frag", metadata.LayoutVertex},
	"downsample":       {VertexStageFile, "downsample.frag", metadata.LayoutVertex},
	"upsample":         {VertexStageFile, "upsample.frag", metadata.LayoutVertex},
	"bloom_mix":        {VertexStageFile, "bloom_mix.frag", metadata.LayoutVertex},
	"bloom_final":      {VertexStageFile, "bloom_final.frag", metadata.LayoutVertex},
}

// Names returns the builtin shader names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Builtin returns the embedded sources of a builtin shader.
func Builtin(name string) (*metadata.ShaderSource, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("builtin shader `%s`: not embedded", name)
	}
	vs, err := files.ReadFile(b.vertex)
	if err != nil {
		return nil, err
	}
	fs, err := files.ReadFile(b.fragment)
	if err != nil {
		return nil, err
	}
	return &metadata.ShaderSource{
		Name:     name,
		Layout:   b.layout,
		Vertex:   string(vs),
		Fragment: string(fs),
	}, nil
}

// DefaultVertexStage returns the embedded vertex stage used by a layout.
func DefaultVertexStage(layout metadata.LayoutID) string {
	file := VertexStageFile
	if layout == metadata.LayoutSprite {
		file = SpriteStageFile
	}
	data, err := files.ReadFile(file)
	if err != nil {
		// embedded at build time
		panic(err)
	}
	return string(data)
}

// DetectLayout guesses the layout of a user vertex stage. Sources reading the
// instance attributes are sprite shaders, everything else is a vertex shader.
func DetectLayout(name, vertexSource string) metadata.LayoutID {
	if b, ok := builtins[name]; ok {
		return b.layout
	}
	if strings.Contains(vertexSource, "i_position") {
		return metadata.LayoutSprite
	}
	return metadata.LayoutVertex
}
