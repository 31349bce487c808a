// Package collector walks a directory tree, reads every source file that
// matches the configured extensions, and assembles them into a single
// annotated document ready for upload.
package collector

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions is the extension set used when none are configured.
var DefaultExtensions = []string{
	".py", ".sh", ".yml", ".yaml", ".js", ".jsx", ".java",
	".cpp", ".c", ".h", ".hpp", ".cs", ".html", ".css",
	".tsx", ".ts", ".go", ".rb", ".php", ".scala", ".rs", ".swift",
}

const defaultConcurrency = 4

// Config controls which files a Collector gathers and how.
type Config struct {
	SearchDir          string
	Extensions         []string
	ExcludePatterns    []string
	UseDefaultExcludes bool
	Concurrency        int
}

// Metadata describes a collection run.
type Metadata struct {
	CollectionDate   string     `json:"collection_date"`
	CollectionTime   string     `json:"collection_time"`
	SourceDirectory  string     `json:"source_directory"`
	ExcludedPatterns []string   `json:"excluded_patterns"`
	FileExtensions   []string   `json:"file_extensions"`
	SystemInfo       SystemInfo `json:"system_info"`
}

type SystemInfo struct {
	Platform string `json:"platform"`
	Cores    int    `json:"cores"`
	Memory   string `json:"memory"`
}

// Statistics aggregates what a collection run gathered.
type Statistics struct {
	TotalFiles           int              `json:"total_files"`
	TotalLines           int              `json:"total_lines"`
	FileSizes            map[string]int64 `json:"file_sizes"`
	LanguageDistribution map[string]int   `json:"language_distribution"`
}

// Result is a completed collection: the run's metadata and statistics plus
// the assembled file contents.
type Result struct {
	Metadata   Metadata   `json:"metadata"`
	Statistics Statistics `json:"statistics"`
	Contents   string     `json:"contents"`
	Files      []string   `json:"-"`
}

type processedFile struct {
	relPath   string
	content   string
	lines     int
	size      int64
	extension string
}

type Collector struct {
	config Config

	extensions map[string]struct{}
	excludes   []string
}

func New(cfg Config) *Collector {
	if cfg.SearchDir == "" {
		cfg.SearchDir = "."
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	var excludes []string
	if cfg.UseDefaultExcludes {
		excludes = append(excludes, DefaultExcludePatterns()...)
	}
	excludes = append(excludes, cfg.ExcludePatterns...)

	return &Collector{
		config:     cfg,
		extensions: extensions,
		excludes:   excludes,
	}
}

// Collect walks the search directory and assembles every matching file into
// one document. Unreadable files are logged and skipped; an empty match set
// is an error.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	paths, err := c.findFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.config.SearchDir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matching criteria under %s", c.config.SearchDir)
	}

	processed, err := c.readFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Metadata:   c.buildMetadata(),
		Statistics: buildStatistics(processed),
		Contents:   formatContents(processed),
	}
	for _, f := range processed {
		result.Files = append(result.Files, f.relPath)
	}
	return result, nil
}

func (c *Collector) findFiles() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(c.config.SearchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if _, prune := directoryPatterns[d.Name()]; prune && path != c.config.SearchDir {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := c.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(c.config.SearchDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if c.isExcluded(rel) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func (c *Collector) isExcluded(relPath string) bool {
	for _, pattern := range c.excludes {
		if strings.Contains(relPath, pattern) {
			return true
		}
	}
	return false
}

// readFiles reads the matched files with bounded concurrency, preserving the
// sorted walk order in the result.
func (c *Collector) readFiles(ctx context.Context, paths []string) ([]processedFile, error) {
	results := make([]*processedFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pf, err := c.processFile(path)
			if err != nil {
				slog.Warn("Skipping unreadable file", "path", path, "error", err)
				return nil
			}
			results[i] = pf
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collection aborted: %w", err)
	}

	processed := make([]processedFile, 0, len(results))
	for _, pf := range results {
		if pf != nil {
			processed = append(processed, *pf)
		}
	}
	return processed, nil
}

func (c *Collector) processFile(path string) (*processedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(c.config.SearchDir, path)
	if err != nil {
		return nil, err
	}

	return &processedFile{
		relPath:   filepath.ToSlash(rel),
		content:   string(content),
		lines:     strings.Count(string(content), "\n") + 1,
		size:      int64(len(content)),
		extension: strings.TrimPrefix(filepath.Ext(path), "."),
	}, nil
}

func (c *Collector) buildMetadata() Metadata {
	now := nowUTC()
	absDir, err := filepath.Abs(c.config.SearchDir)
	if err != nil {
		absDir = c.config.SearchDir
	}

	return Metadata{
		CollectionDate:   now.Format("2006-01-02"),
		CollectionTime:   now.Format("15:04:05") + " UTC",
		SourceDirectory:  absDir,
		ExcludedPatterns: c.excludes,
		FileExtensions:   c.config.Extensions,
		SystemInfo:       collectSystemInfo(),
	}
}

func collectSystemInfo() SystemInfo {
	info := SystemInfo{
		Platform: runtime.GOOS,
		Cores:    runtime.NumCPU(),
		Memory:   "unknown",
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.Memory = fmt.Sprintf("%dGB", vm.Total/(1024*1024*1024))
	}
	return info
}

func buildStatistics(files []processedFile) Statistics {
	stats := Statistics{
		TotalFiles:           len(files),
		FileSizes:            make(map[string]int64),
		LanguageDistribution: make(map[string]int),
	}
	for _, f := range files {
		stats.TotalLines += f.lines
		stats.FileSizes[f.extension] += f.size
		stats.LanguageDistribution[f.extension]++
	}
	return stats
}
