package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under a temp dir, keyed by relative path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestCollect_GathersMatchingFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.go":        "package main\n",
		"lib/util.py":    "def util():\n    pass\n",
		"notes.xyz":      "ignored extension\n",
		"assets/app.css": "body {}\n",
	})

	c := New(Config{SearchDir: dir})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Statistics.TotalFiles)
	assert.ElementsMatch(t, []string{"main.go", "lib/util.py", "assets/app.css"}, result.Files)
	assert.NotContains(t, result.Contents, "notes.xyz")
}

func TestCollect_DocumentFormat(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"hello.go": "package hello\n",
	})

	c := New(Config{SearchDir: dir})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Contents, "--- FILE: hello.go ---")
	assert.Contains(t, result.Contents, "LANGUAGE: go")
	assert.Contains(t, result.Contents, "BEGIN_CODE\npackage hello\n")
	assert.Contains(t, result.Contents, "END_CODE")
}

func TestCollect_DefaultExcludesPruneDependencyDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"app.js":                    "console.log('app')\n",
		"node_modules/dep/index.js": "module.exports = {}\n",
		".git/hooks/pre-commit.sh":  "#!/bin/sh\n",
		"build/out.js":              "built\n",
	})

	c := New(Config{SearchDir: dir, UseDefaultExcludes: true})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"app.js"}, result.Files)
}

func TestCollect_CustomExcludesAreSubstrings(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"app.go":           "package app\n",
		"generated/gen.go": "package generated\n",
	})

	c := New(Config{SearchDir: dir, ExcludePatterns: []string{"generated"}})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"app.go"}, result.Files)
}

func TestCollect_CustomExtensions(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"config.toml": "[section]\n",
		"main.go":     "package main\n",
	})

	// Extensions accepted with or without the leading dot
	c := New(Config{SearchDir: dir, Extensions: []string{"toml"}})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"config.toml"}, result.Files)
}

func TestCollect_NoMatchesIsAnError(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"picture.xyz": "not code\n",
	})

	c := New(Config{SearchDir: dir})
	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matching")
}

func TestCollect_Statistics(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go": "package a\n\nfunc A() {}\n",
		"b.go": "package b\n",
		"c.py": "print('c')\n",
	})

	c := New(Config{SearchDir: dir})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	stats := result.Statistics
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 2, stats.LanguageDistribution["go"])
	assert.Equal(t, 1, stats.LanguageDistribution["py"])
	assert.Positive(t, stats.FileSizes["go"])
	assert.Positive(t, stats.TotalLines)
}

func TestCollect_DeterministicFileOrder(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"z.go": "package z\n",
		"a.go": "package a\n",
		"m.go": "package m\n",
	})

	c := New(Config{SearchDir: dir, Concurrency: 8})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, result.Files,
		"concurrent reads must not reorder the document")

	aIdx := strings.Index(result.Contents, "--- FILE: a.go ---")
	zIdx := strings.Index(result.Contents, "--- FILE: z.go ---")
	assert.Less(t, aIdx, zIdx)
}

func TestRender_TextSections(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.go": "package main\n",
	})

	c := New(Config{SearchDir: dir})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	doc, err := result.Render(FormatText)
	require.NoError(t, err)

	for _, section := range []string{"METADATA", "FILE LIST", "STATISTICS", "CODE CONTENTS"} {
		assert.Contains(t, doc, section)
	}
	assert.Contains(t, doc, "Total Files: 1")
	assert.Contains(t, doc, "  - main.go")
}

func TestRender_JSONRoundTrips(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.go": "package main\n",
	})

	c := New(Config{SearchDir: dir})
	result, err := c.Collect(context.Background())
	require.NoError(t, err)

	doc, err := result.Render(FormatJSON)
	require.NoError(t, err)

	assert.Contains(t, doc, `"metadata"`)
	assert.Contains(t, doc, `"statistics"`)
	assert.Contains(t, doc, `"contents"`)
}
