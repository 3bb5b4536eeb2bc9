//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// pkgStats counts the Go sources of one package directory.
type pkgStats struct {
	dir       string
	prodLines int
	testLines int
	tests     int
	fixtures  int
}

// Stats prints a per-package table of Go lines, test functions and
// testdata fixtures.
func Stats() error {
	byDir := map[string]*pkgStats{}
	get := func(dir string) *pkgStats {
		s, ok := byDir[dir]
		if !ok {
			s = &pkgStats{dir: dir}
			byDir[dir] = s
		}
		return s
	}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case "vendor", ".git", binaryDir, "_examples", "magefiles":
				return filepath.SkipDir
			}
			return nil
		}
		if dir, ok := fixtureOwner(path); ok {
			get(dir).fixtures++
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		lines, tests, err := scanGoFile(path)
		if err != nil {
			return nil
		}
		s := get(filepath.Dir(path))
		if strings.HasSuffix(path, "_test.go") {
			s.testLines += lines
			s.tests += tests
		} else {
			s.prodLines += lines
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Package", "Lines", "Test lines", "Tests", "Fixtures"})
	var total pkgStats
	for _, dir := range dirs {
		s := byDir[dir]
		t.AppendRow(table.Row{s.dir, s.prodLines, s.testLines, s.tests, s.fixtures})
		total.prodLines += s.prodLines
		total.testLines += s.testLines
		total.tests += s.tests
		total.fixtures += s.fixtures
	}
	t.AppendFooter(table.Row{"total", total.prodLines, total.testLines, total.tests, total.fixtures})
	t.Render()
	return nil
}

// fixtureOwner returns the package directory of a file under testdata/.
func fixtureOwner(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p == "testdata" {
			return filepath.FromSlash(strings.Join(parts[:i], "/")), true
		}
	}
	return "", false
}

// scanGoFile returns the line count of a Go file and the number of
// top-level Test functions it declares.
func scanGoFile(path string) (lines, tests int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
		if strings.HasPrefix(sc.Text(), "func Test") {
			tests++
		}
	}
	return lines, tests, sc.Err()
}
