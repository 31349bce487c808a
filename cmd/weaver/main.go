// Command weaver collects source files from a directory tree into a single
// annotated document and uploads it to the text service in 1MB chunks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spencerjirehcebrian/weaver/internal/collector"
	"github.com/spencerjirehcebrian/weaver/internal/uploader"
)

const defaultAPIEndpoint = "http://weaver-api.spencerjireh.com/api/text"

type options struct {
	searchDir   string
	outputFile  string
	extensions  string
	excludes    string
	noDefaults  bool
	quiet       bool
	concurrency int
	skipUpload  bool
	apiEndpoint string
	format      string
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.searchDir, "d", ".", "search directory")
	flag.StringVar(&opts.outputFile, "o", "", "output filename (omit to skip writing a file)")
	flag.StringVar(&opts.extensions, "e", "", "file extensions to include (comma-separated)")
	flag.StringVar(&opts.excludes, "x", "", "additional patterns to exclude (comma-separated)")
	flag.BoolVar(&opts.noDefaults, "a", false, "disable default exclusions")
	flag.BoolVar(&opts.quiet, "q", false, "quiet mode, suppress progress messages")
	flag.IntVar(&opts.concurrency, "c", 4, "number of concurrent file reads")
	flag.BoolVar(&opts.skipUpload, "skip-upload", false, "skip uploading to the server")
	flag.StringVar(&opts.apiEndpoint, "api-endpoint", defaultAPIEndpoint, "ingestion endpoint URL")
	flag.StringVar(&opts.format, "format", "text", "output format (text or json)")
	flag.Parse()

	return opts
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run() error {
	opts := parseFlags()

	level := slog.LevelInfo
	if opts.quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	format := collector.Format(opts.format)
	if format != collector.FormatText && format != collector.FormatJSON {
		return fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := collector.New(collector.Config{
		SearchDir:          opts.searchDir,
		Extensions:         splitList(opts.extensions),
		ExcludePatterns:    splitList(opts.excludes),
		UseDefaultExcludes: !opts.noDefaults,
		Concurrency:        opts.concurrency,
	})

	slog.Info("Collecting files", "dir", opts.searchDir)
	result, err := c.Collect(ctx)
	if err != nil {
		return err
	}

	document, err := result.Render(format)
	if err != nil {
		return err
	}

	if opts.outputFile != "" {
		if err := os.WriteFile(opts.outputFile, []byte(document), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.outputFile, err)
		}
		slog.Info("Output written", "file", opts.outputFile)
	}

	if !opts.skipUpload {
		slog.Info("Uploading collection", "endpoint", opts.apiEndpoint)
		sent, err := uploader.New(opts.apiEndpoint).Upload(ctx, document)
		if err != nil {
			return err
		}
		slog.Info("Upload complete", "chunks", sent)
	}

	if !opts.quiet {
		fmt.Printf("\nCollection complete:\n- Total files: %d\n- Total lines: %d\n",
			result.Statistics.TotalFiles, result.Statistics.TotalLines)
		if opts.outputFile != "" {
			fmt.Printf("- Output saved to: %s\n", opts.outputFile)
		}
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
