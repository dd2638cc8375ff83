package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

type glProgram struct {
	name      string
	locations map[string]int32
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", core.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// linkProgram compiles both stages and links them. A failed link releases
// every intermediate object.
func linkProgram(source *metadata.ShaderSource) (uint32, error) {
	vertexShader, err := compileShader(gl.VERTEX_SHADER, source.Vertex)
	if err != nil {
		return 0, fmt.Errorf("shader `%s` vertex stage: %w", source.Name, err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, source.Fragment)
	if err != nil {
		return 0, fmt.Errorf("shader `%s` fragment stage: %w", source.Name, err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("shader `%s` link: %w: %s", source.Name, core.ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

// location caches uniform locations, -1 for names the program does not use.
func (p *glProgram) location(handle uint32, name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(handle, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func uploadUniform(loc int32, value metadata.UniformValue) {
	switch value.Type {
	case metadata.UniformTypeFloat:
		gl.Uniform1f(loc, value.F[0])
	case metadata.UniformTypeInt, metadata.UniformTypeBool:
		gl.Uniform1i(loc, value.I)
	case metadata.UniformTypeVec2:
		gl.Uniform2f(loc, value.F[0], value.F[1])
	case metadata.UniformTypeVec3:
		gl.Uniform3f(loc, value.F[0], value.F[1], value.F[2])
	case metadata.UniformTypeVec4:
		gl.Uniform4f(loc, value.F[0], value.F[1], value.F[2], value.F[3])
	}
}
