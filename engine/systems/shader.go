package systems

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
	"github.com/spaghettifunk/anima2d/engine/renderer/shaders"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief Directory searched for <name>.vert and <name>.frag before the embedded builtins. Empty disables it. */
	SearchPath string
}

/**
 * @brief A linked program plus the uniform storage uploaded on every flush.
 */
type Shader struct {
	/** @brief Stable id, unchanged by reloads. */
	ID     metadata.ShaderID
	Name   string
	Layout metadata.LayoutID
	/** @brief Backend program, replaced on reload. */
	Program metadata.ProgramHandle
	/** @brief Source files, empty for embedded shaders. */
	VertexPath   string
	FragmentPath string
	ModTime      time.Time
	/** @brief Declared uniform values by name. */
	Uniforms map[string]metadata.UniformValue
	/** @brief Declared samplers by name. A non zero handle overrides the batch texture in that slot. */
	Textures map[string]metadata.TextureSlot

	uniformOrder []string
	samplerOrder []string
}

// UniformNames returns the declared uniform names in declaration order.
func (s *Shader) UniformNames() []string {
	return s.uniformOrder
}

// SamplerNames returns the declared samplers in slot order.
func (s *Shader) SamplerNames() []string {
	return s.samplerOrder
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]metadata.ShaderID
	// A collection of created shaders.
	shaders *core.IDPool[Shader]
	// names that failed to load, not retried until the next refresh
	failed  map[string]error
	backend renderer.Backend
}

func NewShaderSystem(config *ShaderSystemConfig, backend renderer.Backend) *ShaderSystem {
	return &ShaderSystem{
		Config:  config,
		Lookup:  make(map[string]metadata.ShaderID),
		shaders: core.NewIDPool[Shader](),
		failed:  make(map[string]error),
		backend: backend,
	}
}

/**
 * @brief Shuts down the shader system, releasing every program.
 */
func (shaderSystem *ShaderSystem) Shutdown() {
	shaderSystem.shaders.Each(func(id uint32, sh *Shader) {
		shaderSystem.backend.ShaderDestroy(sh.Program)
		_ = shaderSystem.shaders.Release(id)
	})
	shaderSystem.Lookup = make(map[string]metadata.ShaderID)
	clear(shaderSystem.failed)
}

var uniformDeclaration = regexp.MustCompile(`^\s*uniform\s+(\w+)\s+(\w+)\s*(?:=\s*([^;]+?))?\s*;`)

/**
 * @brief Scans shader source for `uniform <type> <name>[ = <literal>];` lines.
 * sampler2D declarations are returned separately in declaration order, and
 * types outside {float, int, bool, vec2, vec3, vec4} are skipped.
 *
 * @param source One or more shader stages.
 * @return The value uniforms and the samplers.
 */
func ParseUniformDeclarations(source string) ([]metadata.UniformDeclaration, []metadata.SamplerDeclaration) {
	var uniforms []metadata.UniformDeclaration
	var samplers []metadata.SamplerDeclaration
	seen := make(map[string]bool)

	for _, line := range strings.Split(source, "\n") {
		m := uniformDeclaration.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		typeName, name, literal := m[1], m[2], strings.TrimSpace(m[3])
		if seen[name] {
			continue
		}
		if typeName == "sampler2D" {
			seen[name] = true
			samplers = append(samplers, metadata.SamplerDeclaration{Name: name, Slot: int32(len(samplers))})
			continue
		}
		t, ok := metadata.UniformTypeFromString(typeName)
		if !ok {
			continue
		}
		seen[name] = true
		value := metadata.UniformValue{Type: t}
		if literal != "" {
			if v, err := parseLiteral(t, literal); err == nil {
				value = v
			} else {
				core.LogWarn("uniform `%s`: %s", name, err)
			}
		}
		uniforms = append(uniforms, metadata.UniformDeclaration{Name: name, Value: value})
	}
	return uniforms, samplers
}

func parseLiteral(t metadata.UniformType, literal string) (metadata.UniformValue, error) {
	switch t {
	case metadata.UniformTypeBool:
		b, err := strconv.ParseBool(literal)
		if err != nil {
			return metadata.UniformValue{}, err
		}
		return metadata.UniformBool(b), nil
	case metadata.UniformTypeInt:
		i, err := strconv.ParseInt(literal, 10, 32)
		if err != nil {
			return metadata.UniformValue{}, err
		}
		return metadata.UniformInt(int32(i)), nil
	case metadata.UniformTypeFloat:
		f, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return metadata.UniformValue{}, err
		}
		return metadata.UniformFloat(float32(f)), nil
	}

	// vecN(a, b, ...) or vecN(a)
	n := int(t-metadata.UniformTypeVec2) + 2
	open := strings.IndexByte(literal, '(')
	if open < 0 || !strings.HasSuffix(literal, ")") {
		return metadata.UniformValue{}, fmt.Errorf("malformed %s literal `%s`", t, literal)
	}
	parts := strings.Split(literal[open+1:len(literal)-1], ",")
	if len(parts) != 1 && len(parts) != n {
		return metadata.UniformValue{}, fmt.Errorf("%s literal `%s` has %d components", t, literal, len(parts))
	}
	value := metadata.UniformValue{Type: t}
	for i := 0; i < n; i++ {
		p := parts[0]
		if len(parts) == n {
			p = parts[i]
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return metadata.UniformValue{}, err
		}
		value.F[i] = float32(f)
	}
	return value, nil
}

func isReserved(name string) bool {
	return name == shaders.UniformViewProjection || name == shaders.UniformTime || name == shaders.UniformResolution
}

// readSource resolves a shader from the search path, falling back to the builtins.
func (shaderSystem *ShaderSystem) readSource(name string) (*metadata.ShaderSource, error) {
	if dir := shaderSystem.Config.SearchPath; dir != "" {
		src, err := readDiskSource(dir, name)
		if err == nil {
			return src, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if shaders.IsBuiltin(name) {
		return shaders.Builtin(name)
	}
	return nil, fmt.Errorf("shader `%s`: %w", name, core.ErrShaderNotFound)
}

func readDiskSource(dir, name string) (*metadata.ShaderSource, error) {
	fragPath := filepath.Join(dir, name+".frag")
	fragInfo, err := os.Stat(fragPath)
	if err != nil {
		return nil, err
	}
	frag, err := os.ReadFile(fragPath)
	if err != nil {
		return nil, err
	}
	src := &metadata.ShaderSource{
		Name:         name,
		Fragment:     string(frag),
		FragmentPath: fragPath,
		ModTime:      fragInfo.ModTime(),
	}

	vertPath := filepath.Join(dir, name+".vert")
	if vertInfo, err := os.Stat(vertPath); err == nil {
		vert, err := os.ReadFile(vertPath)
		if err != nil {
			return nil, err
		}
		src.Vertex = string(vert)
		src.VertexPath = vertPath
		src.Layout = shaders.DetectLayout(name, src.Vertex)
		if vertInfo.ModTime().After(src.ModTime) {
			src.ModTime = vertInfo.ModTime()
		}
	} else {
		src.Layout = shaders.DetectLayout(name, "")
		src.Vertex = shaders.DefaultVertexStage(src.Layout)
	}
	return src, nil
}

// build parses a source and links it. The shader is not registered.
func (shaderSystem *ShaderSystem) build(src *metadata.ShaderSource) (*Shader, error) {
	uniforms, samplers := ParseUniformDeclarations(src.Vertex + "\n" + src.Fragment)

	sh := &Shader{
		Name:         src.Name,
		Layout:       src.Layout,
		VertexPath:   src.VertexPath,
		FragmentPath: src.FragmentPath,
		ModTime:      src.ModTime,
		Uniforms:     make(map[string]metadata.UniformValue, len(uniforms)),
		Textures:     make(map[string]metadata.TextureSlot, len(samplers)),
	}
	for _, u := range uniforms {
		if isReserved(u.Name) {
			continue
		}
		sh.Uniforms[u.Name] = u.Value
		sh.uniformOrder = append(sh.uniformOrder, u.Name)
	}
	src.Samplers = src.Samplers[:0]
	for _, s := range samplers {
		sh.Textures[s.Name] = metadata.TextureSlot{Slot: s.Slot}
		sh.samplerOrder = append(sh.samplerOrder, s.Name)
		src.Samplers = append(src.Samplers, s.Name)
	}

	program, err := shaderSystem.backend.ShaderCreate(src)
	if err != nil {
		return nil, err
	}
	sh.Program = program
	return sh, nil
}

/**
 * @brief Loads, links and registers a shader by name. Disk sources win over
 * the embedded builtins. A failure is remembered and returned again without
 * touching the disk until RefreshModified runs.
 *
 * @param name The shader name.
 * @return The stable shader id.
 */
func (shaderSystem *ShaderSystem) Load(name string) (metadata.ShaderID, error) {
	if id, ok := shaderSystem.Lookup[name]; ok {
		return id, nil
	}
	if err, ok := shaderSystem.failed[name]; ok {
		return metadata.InvalidShaderID, err
	}
	src, err := shaderSystem.readSource(name)
	if err != nil {
		shaderSystem.failed[name] = err
		return metadata.InvalidShaderID, err
	}
	sh, err := shaderSystem.build(src)
	if err != nil {
		err = fmt.Errorf("shader `%s`: %w", name, err)
		shaderSystem.failed[name] = err
		return metadata.InvalidShaderID, err
	}
	sh.ID = metadata.ShaderID(shaderSystem.shaders.Acquire(sh))
	shaderSystem.Lookup[name] = sh.ID
	core.LogDebug("shader `%s` loaded (id %d, layout %s)", name, sh.ID, sh.Layout)
	return sh.ID, nil
}

/**
 * @brief Returns the id of a shader, loading it lazily. A shader that cannot
 * be loaded is logged once and reported as false so the caller skips the draw.
 */
func (shaderSystem *ShaderSystem) CheckShader(name string) (metadata.ShaderID, bool) {
	_, known := shaderSystem.failed[name]
	id, err := shaderSystem.Load(name)
	if err != nil {
		if !known {
			core.LogError("%s", err)
		}
		return metadata.InvalidShaderID, false
	}
	return id, true
}

/**
 * @brief Returns a pointer to a shader with the given identifier.
 */
func (shaderSystem *ShaderSystem) Get(id metadata.ShaderID) (*Shader, bool) {
	return shaderSystem.shaders.Get(uint32(id))
}

/**
 * @brief Returns a pointer to a shader with the given name.
 *
 * @param shaderName The name to search for. Case sensitive.
 */
func (shaderSystem *ShaderSystem) GetByName(shaderName string) (*Shader, bool) {
	id, ok := shaderSystem.Lookup[shaderName]
	if !ok {
		return nil, false
	}
	return shaderSystem.Get(id)
}

/**
 * @brief Sets the stored value of a declared uniform. It is uploaded by the next flush.
 *
 * @param shaderName The shader name.
 * @param uniformName The name of the uniform to be set.
 * @param value The value to be set, it must match the declared type.
 */
func (shaderSystem *ShaderSystem) SetUniform(shaderName, uniformName string, value metadata.UniformValue) error {
	sh, ok := shaderSystem.GetByName(shaderName)
	if !ok {
		return fmt.Errorf("shader `%s`: %w", shaderName, core.ErrShaderNotFound)
	}
	current, ok := sh.Uniforms[uniformName]
	if !ok {
		core.LogWarn("shader `%s` has no uniform named `%s`", shaderName, uniformName)
		return fmt.Errorf("shader `%s` uniform `%s`: %w", shaderName, uniformName, core.ErrUniformNotFound)
	}
	if current.Type != value.Type {
		return fmt.Errorf("shader `%s` uniform `%s` is %s, got %s", shaderName, uniformName, current.Type, value.Type)
	}
	sh.Uniforms[uniformName] = value
	return nil
}

// SetTexture pins a texture to a sampler. A zero handle returns the slot to the batch textures.
func (shaderSystem *ShaderSystem) SetTexture(shaderName, samplerName string, texture metadata.TextureHandle) error {
	sh, ok := shaderSystem.GetByName(shaderName)
	if !ok {
		return fmt.Errorf("shader `%s`: %w", shaderName, core.ErrShaderNotFound)
	}
	slot, ok := sh.Textures[samplerName]
	if !ok {
		core.LogWarn("shader `%s` has no sampler named `%s`", shaderName, samplerName)
		return fmt.Errorf("shader `%s` sampler `%s`: %w", shaderName, samplerName, core.ErrUniformNotFound)
	}
	slot.Handle = texture
	sh.Textures[samplerName] = slot
	return nil
}

/**
 * @brief Makes the shader current and uploads the frame uniforms followed by
 * the stored uniform values.
 */
func (shaderSystem *ShaderSystem) apply(sh *Shader, viewProjection math.Mat4, frame metadata.FrameContext, resolution math.Vec2) {
	b := shaderSystem.backend
	b.ShaderUse(sh.Program)
	b.SetUniformMat4(sh.Program, shaders.UniformViewProjection, viewProjection)
	b.SetUniform(sh.Program, shaders.UniformTime, metadata.UniformFloat(frame.Time))
	b.SetUniform(sh.Program, shaders.UniformResolution, metadata.UniformVec2(resolution))
	for _, name := range sh.uniformOrder {
		b.SetUniform(sh.Program, name, sh.Uniforms[name])
	}
}

// bindPinned binds the textures attached through SetTexture over the batch textures.
func (shaderSystem *ShaderSystem) bindPinned(sh *Shader) {
	for _, name := range sh.samplerOrder {
		if slot := sh.Textures[name]; slot.Handle != 0 {
			shaderSystem.backend.TextureBind(slot.Handle, uint32(slot.Slot))
		}
	}
}

/**
 * @brief Recompiles every shader whose source files changed on disk. Values of
 * uniforms surviving the edit by name and type are kept. A failed recompile
 * keeps the previous program. Names that failed to load are tried again on
 * their next use.
 *
 * @return The number of shaders reloaded.
 */
func (shaderSystem *ShaderSystem) RefreshModified() int {
	clear(shaderSystem.failed)
	reloaded := 0
	shaderSystem.shaders.Each(func(id uint32, sh *Shader) {
		if sh.FragmentPath == "" {
			return
		}
		src, err := readDiskSource(filepath.Dir(sh.FragmentPath), sh.Name)
		if err != nil {
			core.LogWarn("shader `%s` reload: %s", sh.Name, err)
			return
		}
		if !src.ModTime.After(sh.ModTime) {
			return
		}
		next, err := shaderSystem.build(src)
		if err != nil {
			core.LogError("shader `%s` reload failed, keeping previous program: %s", sh.Name, err)
			// do not retry until the files change again
			sh.ModTime = src.ModTime
			return
		}
		for name, value := range next.Uniforms {
			if old, ok := sh.Uniforms[name]; ok && old.Type == value.Type {
				next.Uniforms[name] = old
			}
		}
		for name, slot := range next.Textures {
			if old, ok := sh.Textures[name]; ok {
				slot.Handle = old.Handle
				next.Textures[name] = slot
			}
		}
		shaderSystem.backend.ShaderDestroy(sh.Program)

		next.ID = sh.ID
		*sh = *next
		reloaded++
		core.LogInfo("shader `%s` reloaded", sh.Name)
	})
	return reloaded
}
