//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Runs the testbed with anima.toml.
func (Run) Testbed() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run testbed...")
	return sh.RunV("go", "run", ".", "-config", "anima.toml")
}

// Runs the testbed on the software backend for a few frames and captures the last one.
func (Run) Headless() error {
	return sh.RunV("go", "run", ".", "-config", "headless.toml")
}
