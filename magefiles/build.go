//go:build mage

package main

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// Downloads the modules and builds the testbed binary into bin/.
func (Build) Engine() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", "bin/anima2d", ".")
}

// Validates the embedded GLSL sources with glslangValidator, when it is installed.
func (Build) Shaders() error {
	if _, err := exec.LookPath("glslangValidator"); err != nil {
		fmt.Println("glslangValidator not found, skipping shader validation")
		return nil
	}
	sources, err := filepath.Glob("engine/renderer/shaders/*.*")
	if err != nil {
		return err
	}
	for _, src := range sources {
		if ext := filepath.Ext(src); ext != ".vert" && ext != ".frag" {
			continue
		}
		if err := sh.Run("glslangValidator", src); err != nil {
			return err
		}
	}
	return nil
}
