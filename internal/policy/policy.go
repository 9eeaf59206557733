// Package policy resolves technology presets into the effective extension
// allow-list and directory deny-set for one invocation.
package policy

import (
	"sort"

	"github.com/temirov/dirclip/internal/types"
)

// technologyExtensions maps each known preset to the file suffixes it enables.
// Entries may be extensions (".py") or literal file names ("package.json").
var technologyExtensions = map[string][]string{
	"web":             {".html", ".php", ".js", ".jsx", ".css", ".scss", ".sass"},
	"react":           {".js", ".jsx", ".ts", ".tsx", ".css", ".scss", ".env", "package.json", ".babelrc", ".prettierrc"},
	"python":          {".py"},
	"java":            {".java"},
	"csharp":          {".cs"},
	"ruby":            {".rb"},
	"go":              {".go"},
	"cpp":             {".cpp", ".hpp", ".h"},
	"bash":            {".sh"},
	"typescript":      {".ts", ".tsx"},
	"rust":            {".rs", ".toml", ".rlib", ".cargo"},
	"vb":              {".vb"},
	"structured-data": {".yml", ".yaml", ".json"},
	"sql":             {".sql", ".psql", ".pgsql", ".ddl", ".dml"},
}

// technologyExcludes maps presets to directory names excluded in addition to
// the baseline set.
var technologyExcludes = map[string][]string{
	"web":    {"public", "static"},
	"react":  {"public", "build"},
	"python": {"dist"},
	"java":   {"build", ".gradle"},
	"csharp": {".vs"},
	"ruby":   {"tmp"},
	"go":     {"vendor"},
	"rust":   {"target"},
	"sql":    {"migrations", "migration", "seeds", "seed", "database", "db", "sql", "ddl", "dml"},
}

// baselineExcludes lists directory names never descended into regardless of
// preset selection: version control, caches, build outputs, editor metadata.
var baselineExcludes = []string{
	".git", ".svn", ".hg", ".bzr",
	"__pycache__", "venv", ".venv", "env", ".egg-info",
	"node_modules", "bower_components", "dist", "build", ".cache",
	"target", "bin", "obj", "pkg",
	"log", "logs", "tmp", "coverage", ".nyc_output",
	".idea", ".vscode", ".DS_Store", "vendor", ".bundle",
}

// PresetNames returns the known technology preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(technologyExtensions))
	for name := range technologyExtensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKnownPreset reports whether name is a recognized technology preset.
func IsKnownPreset(name string) bool {
	_, known := technologyExtensions[name]
	return known
}

// enabledPresetNames returns the enabled preset names in sorted order so the
// resolved union is deterministic for a given preset map.
func enabledPresetNames(presets map[string]bool) []string {
	names := make([]string, 0, len(presets))
	for name, enabled := range presets {
		if enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveExtensions computes the effective extension filter from an optional
// preset map and a fallback single extension. Unknown preset names contribute
// nothing; an empty union falls back to defaultExtension, and the ".*"
// sentinel selects all extensions.
func ResolveExtensions(defaultExtension string, presets map[string]bool) types.ExtensionFilter {
	var selected []string
	for _, presetName := range enabledPresetNames(presets) {
		selected = append(selected, technologyExtensions[presetName]...)
	}
	if len(selected) > 0 {
		return types.NewExtensionFilter(selected)
	}
	if defaultExtension == "" || defaultExtension == types.AllExtensionsSentinel {
		return types.AllExtensions()
	}
	return types.NewExtensionFilter([]string{defaultExtension})
}

// ResolveExcludes computes the directory deny-set: the fixed baseline plus
// every enabled preset's technology-specific additions. Unknown preset names
// contribute nothing.
func ResolveExcludes(presets map[string]bool) types.DirectoryExcludeSet {
	excludeSet := types.NewDirectoryExcludeSet(baselineExcludes...)
	for _, presetName := range enabledPresetNames(presets) {
		for _, directoryName := range technologyExcludes[presetName] {
			excludeSet.Add(directoryName)
		}
	}
	return excludeSet
}
