//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles both executables into ./bin
func Build() error {
	mg.Deps(BuildProcessor)
	mg.Deps(BuildMeasureAlgos)
	fmt.Println("Compilation finished")
	return nil
}

func BuildProcessor() error {
	fmt.Println("Building processor executable...")
	return goBuild("./bin/processor", "./processor")
}

func BuildMeasureAlgos() error {
	fmt.Println("Building measureAlgos executable...")
	return goBuild("./bin/measureAlgos", "./measureAlgos")
}

// Test runs the unit tests of all packages with the race detector
func Test() error {
	fmt.Println("Running tests...")
	cmd := exec.Command("go", "test", "-race", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func goBuild(output string, pkg string) error {
	cmd := exec.Command("go", "build", "-o", output, pkg)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
