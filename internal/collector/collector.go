// Package collector reads eligible files from a single directory and shapes
// them into labeled payload records.
package collector

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/dirclip/internal/types"
	"github.com/temirov/dirclip/internal/utils"
)

const (
	errorListDirectoryFormat = "cannot list directory %s: %w"
	warningFileReadFormat    = "could not read %s: %v"
	warningBinarySkipFormat  = "skipping %s: content is not text"
	progressFileReadFormat   = "read %s (%d lines)"
)

// WarnFunc receives one diagnostic message per skipped file.
type WarnFunc func(message string)

// ProgressFunc receives one informational message per collected file.
type ProgressFunc func(message string)

// Collector gathers file records from directories yielded by the walker.
type Collector struct {
	filter   types.ExtensionFilter
	selfName string
	warn     WarnFunc
	progress ProgressFunc
}

// New constructs a Collector. selfName is the exact file name the running
// tool must never include in its own output; warn and progress may be nil.
func New(filter types.ExtensionFilter, selfName string, warn WarnFunc, progress ProgressFunc) *Collector {
	if warn == nil {
		warn = func(string) {}
	}
	if progress == nil {
		progress = func(string) {}
	}
	return &Collector{filter: filter, selfName: selfName, warn: warn, progress: progress}
}

// Collect iterates the direct file entries of directory and returns a record
// for each entry that passes the name and extension filters and reads as
// text. Recursion across directories is the caller's responsibility. A file
// that cannot be read or decoded is reported and skipped; only a failure to
// list the directory itself is an error.
func (collector *Collector) Collect(directory string, rootLabel string) ([]types.FileRecord, error) {
	entries, readError := os.ReadDir(directory)
	if readError != nil {
		return nil, fmt.Errorf(errorListDirectoryFormat, directory, readError)
	}

	var records []types.FileRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		record, ok := collector.collectEntry(directory, rootLabel, entry.Name())
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// CollectListing is Collect driven by a walker listing, reusing the file
// names the walker already observed so both passes see one snapshot.
func (collector *Collector) CollectListing(listing types.DirectoryListing) []types.FileRecord {
	var records []types.FileRecord
	for _, fileName := range listing.FileNames {
		record, ok := collector.collectEntry(listing.Path, listing.Label, fileName)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records
}

// collectEntry applies the self-name and extension filters, reads the file as
// text, and builds its record. The boolean result reports whether the entry
// contributed a record.
func (collector *Collector) collectEntry(directory string, rootLabel string, fileName string) (types.FileRecord, bool) {
	if fileName == collector.selfName {
		return types.FileRecord{}, false
	}
	if !collector.filter.Allows(fileName) {
		return types.FileRecord{}, false
	}

	fullPath := filepath.Join(directory, fileName)
	fileBytes, fileReadError := os.ReadFile(fullPath)
	if fileReadError != nil {
		collector.warn(fmt.Sprintf(warningFileReadFormat, fullPath, fileReadError))
		return types.FileRecord{}, false
	}
	if utils.IsBinary(fileBytes) {
		collector.warn(fmt.Sprintf(warningBinarySkipFormat, fullPath))
		return types.FileRecord{}, false
	}

	content := string(fileBytes)
	lineCount := utils.CountLines(content)
	collector.progress(fmt.Sprintf(progressFileReadFormat, fullPath, lineCount))
	return types.FileRecord{
		Label:     rootLabel,
		FileName:  fileName,
		LineCount: lineCount,
		Content:   content,
	}, true
}
