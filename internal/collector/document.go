package collector

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format selects the rendering of a collection result.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const sectionRule = "================================================================"

func nowUTC() time.Time { return time.Now().UTC() }

// formatContents renders each file as a delimited section so the document can
// be split back into files downstream.
func formatContents(files []processedFile) string {
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- FILE: %s ---\n", f.relPath)
		fmt.Fprintf(&b, "LANGUAGE: %s\n", f.extension)
		b.WriteString("BEGIN_CODE\n")
		b.WriteString(f.content)
		b.WriteString("\nEND_CODE\n")
	}
	return b.String()
}

// Render produces the full document in the requested format: the metadata,
// file list, and statistics header followed by the collected contents.
func (r *Result) Render(format Format) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal collection result: %w", err)
		}
		return string(data), nil
	}

	var b strings.Builder

	b.WriteString(sectionRule + "\n")
	b.WriteString("METADATA\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Collection Date: %s\n", r.Metadata.CollectionDate)
	fmt.Fprintf(&b, "Collection Time: %s\n", r.Metadata.CollectionTime)
	fmt.Fprintf(&b, "Source Directory: %s\n", r.Metadata.SourceDirectory)

	b.WriteString("\nFile Extensions:\n")
	for _, ext := range r.Metadata.FileExtensions {
		fmt.Fprintf(&b, "  - %s\n", ext)
	}

	b.WriteString("\nSystem Information:\n")
	fmt.Fprintf(&b, "  Platform: %s\n", r.Metadata.SystemInfo.Platform)
	fmt.Fprintf(&b, "  CPU Cores: %d\n", r.Metadata.SystemInfo.Cores)
	fmt.Fprintf(&b, "  Memory: %s\n", r.Metadata.SystemInfo.Memory)

	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString("FILE LIST\n")
	b.WriteString(sectionRule + "\n")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "  - %s\n", f)
	}

	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString("STATISTICS\n")
	b.WriteString(sectionRule + "\n")
	fmt.Fprintf(&b, "Total Files: %d\n", r.Statistics.TotalFiles)
	fmt.Fprintf(&b, "Total Lines: %d\n", r.Statistics.TotalLines)

	b.WriteString("\nFile Sizes by Extension:\n")
	for _, ext := range sortedKeys(r.Statistics.FileSizes) {
		fmt.Fprintf(&b, "  %s: %d bytes\n", ext, r.Statistics.FileSizes[ext])
	}

	b.WriteString("\nLanguage Distribution:\n")
	for _, ext := range sortedKeys(r.Statistics.LanguageDistribution) {
		fmt.Fprintf(&b, "  %s: %d files\n", ext, r.Statistics.LanguageDistribution[ext])
	}

	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString("CODE CONTENTS\n")
	b.WriteString(sectionRule + "\n")
	b.WriteString(r.Contents)

	return b.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
