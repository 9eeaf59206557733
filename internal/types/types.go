// Package types defines every cross-package data structure used by the dirclip CLI.
package types

import (
	"strconv"
	"strings"
)

const (
	CommandCopy = "copy"
	CommandTree = "tree"

	// AllExtensionsSentinel selects every file regardless of suffix.
	AllExtensionsSentinel = ".*"

	// RootLabel labels records collected from the scan root itself.
	RootLabel = "./"
)

// ExtensionFilter is the resolved extension allow-list for one invocation.
// Either All is true, or Suffixes holds a non-empty ordered set of
// extension/literal-filename suffixes. Immutable for the run.
type ExtensionFilter struct {
	All      bool
	Suffixes []string
}

// AllExtensions returns the filter that accepts every file name.
func AllExtensions() ExtensionFilter {
	return ExtensionFilter{All: true}
}

// NewExtensionFilter returns a filter accepting names ending in any of the
// provided suffixes.
func NewExtensionFilter(suffixes []string) ExtensionFilter {
	return ExtensionFilter{Suffixes: suffixes}
}

// Allows reports whether fileName passes the filter. The match is a suffix
// test, which covers both extensions such as ".py" and literal file names
// such as "package.json".
func (filter ExtensionFilter) Allows(fileName string) bool {
	if filter.All {
		return true
	}
	for _, suffix := range filter.Suffixes {
		if strings.HasSuffix(fileName, suffix) {
			return true
		}
	}
	return false
}

// DirectoryExcludeSet holds bare directory names (not paths) that are never
// descended into. Immutable for the run.
type DirectoryExcludeSet map[string]struct{}

// NewDirectoryExcludeSet builds an exclude set from the provided names.
func NewDirectoryExcludeSet(names ...string) DirectoryExcludeSet {
	excludeSet := make(DirectoryExcludeSet, len(names))
	for _, name := range names {
		excludeSet[name] = struct{}{}
	}
	return excludeSet
}

// Contains reports whether directoryName is excluded.
func (excludeSet DirectoryExcludeSet) Contains(directoryName string) bool {
	_, present := excludeSet[directoryName]
	return present
}

// Add inserts directoryName into the set.
func (excludeSet DirectoryExcludeSet) Add(directoryName string) {
	excludeSet[directoryName] = struct{}{}
}

// DirectoryListing is one element of the filtered walk sequence: a visited
// directory together with the file names it directly contains.
type DirectoryListing struct {
	// Path is the absolute path of the directory.
	Path string
	// Label is the record prefix for files in this directory: "./" for the
	// scan root, "./<relative>/" for descendants.
	Label string
	// FileNames lists the directory's direct file entries in listing order.
	FileNames []string
}

// FileRecord is one file's labeled contribution to the payload. It is
// serialized immediately after creation and not retained.
type FileRecord struct {
	Label     string
	FileName  string
	LineCount int
	Content   string
}

// Render serializes the record in the payload format:
// "{label}{fileName} ({lineCount} lines)\n{content}\n\n".
func (record FileRecord) Render() string {
	var builder strings.Builder
	builder.WriteString(record.Label)
	builder.WriteString(record.FileName)
	builder.WriteString(" (")
	builder.WriteString(strconv.Itoa(record.LineCount))
	builder.WriteString(" lines)\n")
	builder.WriteString(record.Content)
	builder.WriteString("\n\n")
	return builder.String()
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
