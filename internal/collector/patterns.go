package collector

// Default exclusion patterns, grouped by what they filter out. A path is
// excluded when any pattern is a substring of its slash-separated relative
// path; directory patterns additionally prune whole subtrees during the walk.

var versionControlPatterns = []string{
	".git", ".svn", ".hg",
	"package-lock.json",
	".gitignore",
	".gitattributes",
	".gitmodules",
}

var dependencyPatterns = []string{
	"node_modules",
	"vendor",
	"build",
	"dist",
	"target",
	".next",
	"venv",
	".venv",
	"virtualenv",
	"poetry.lock",
	"yarn.lock",
}

var cachePatterns = []string{
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
	".tox",
	".eggs",
}

var testPatterns = []string{
	"_test.go",
	".test.js",
	"_spec.rb",
	"_test.py",
	"tests/",
	"__tests__/",
}

var idePatterns = []string{
	".idea",
	".vscode",
	".vs",
	".project",
	".classpath",
	".settings",
}

var logPatterns = []string{
	".log",
	"logs/",
	"tmp/",
	"temp/",
}

var mediaPatterns = []string{
	".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".bmp",
	".mp4", ".mov", ".avi", ".mkv",
	".mp3", ".wav", ".ogg", ".flac", ".webm",
}

var documentationPatterns = []string{
	"docs/",
	"documentation/",
	".md",
	".rst",
	"LICENSE",
	"README",
	"CHANGELOG",
	"CONTRIBUTING",
}

// directoryPatterns prune entire subtrees by exact directory name.
var directoryPatterns = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"venv":         {},
	".venv":        {},
	".git":         {},
	".svn":         {},
	".hg":          {},
	"__pycache__":  {},
	"build":        {},
	"dist":         {},
	"target":       {},
	".next":        {},
	".idea":        {},
	".vscode":      {},
}

// DefaultExcludePatterns is the combined default exclusion set.
func DefaultExcludePatterns() []string {
	groups := [][]string{
		versionControlPatterns,
		dependencyPatterns,
		cachePatterns,
		testPatterns,
		idePatterns,
		logPatterns,
		mediaPatterns,
		documentationPatterns,
	}

	var patterns []string
	for _, g := range groups {
		patterns = append(patterns, g...)
	}
	return patterns
}
