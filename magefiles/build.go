//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for slotview using Mage.
//
// Usage:
//
//	mage build          Compile the slotview binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Write coverage.out and print a per-function summary
//	mage lint           Run golangci-lint
//	mage check          Lint, then run all tests
//	mage clean          Remove build artifacts
//	mage install        Install slotview to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "slotview"
	binaryDir  = "bin"
	cmdDir     = "./cmd/slotview"
	versionVar = "github.com/mesh-intelligence/slotview/pkg/slotview.Version"
)

// ldflags stamps the version from SLOTVIEW_VERSION when set.
func ldflags() []string {
	v := os.Getenv("SLOTVIEW_VERSION")
	if v == "" {
		return nil
	}
	return []string{"-ldflags", "-X " + versionVar + "=" + v}
}

// Build compiles the slotview binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := append([]string{"build", "-v"}, ldflags()...)
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	_ = os.Remove(coverProfile)
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
