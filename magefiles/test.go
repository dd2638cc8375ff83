//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Runs the tests that only need the software backend.
func (Test) Soft() error {
	return sh.RunV("go", "test",
		"./engine/math/...", "./engine/containers/...", "./engine/core/...",
		"./engine/renderer/soft/...", "./engine/systems/...", "./engine/effects/...",
		"./engine/layers/...", "./engine/particles/...",
	)
}
