package core

import (
	"errors"
)

var (
	ErrShaderNotFound        = errors.New("shader not found")
	ErrShaderCompile         = errors.New("shader compilation failed")
	ErrUniformNotFound       = errors.New("uniform not declared by shader")
	ErrCapacityExceeded      = errors.New("batch capacity exceeded")
	ErrFramebufferIncomplete = errors.New("framebuffer incomplete")
	ErrInvalidSize           = errors.New("invalid size")
	ErrLayerNotFound         = errors.New("layer not found")
	ErrLayerExists           = errors.New("layer already exists")
	ErrDepthOccupied         = errors.New("depth already occupied")
	ErrNoKernel              = errors.New("no software kernel registered")
	ErrTextureNotFound       = errors.New("texture not found")
	ErrUnknownBackend        = errors.New("unknown renderer backend")
	ErrUnknown               = errors.New("unknown")
)
