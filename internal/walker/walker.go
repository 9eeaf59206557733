// Package walker traverses a filesystem subtree while honoring a directory
// deny-set, yielding a deterministic pre-order walk sequence and an indented
// ASCII tree rendering.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/dirclip/internal/types"
	"github.com/temirov/dirclip/internal/utils"
)

const (
	verticalContinuationMarker = "│   "
	midListMarker              = "├── "
	terminalMarker             = "└── "
	directorySuffix            = "/"

	errorRootInaccessibleFormat = "cannot access root %s: %w"
	errorRootNotDirectoryFormat = "root %s is not a directory"
	warningSkipDirectoryFormat  = "could not read directory %s: %v"
)

// WarnFunc receives one diagnostic message per recovered traversal problem.
type WarnFunc func(message string)

// StreamOptions configures a streaming walk.
type StreamOptions struct {
	Root     string
	Excludes types.DirectoryExcludeSet
	Warn     WarnFunc
}

// visitedDirectory is one directory reached during traversal, before it is
// shaped into a DirectoryListing or a group of tree lines.
type visitedDirectory struct {
	path      string
	depth     int
	label     string
	baseName  string
	fileNames []string
}

type traversal struct {
	root     string
	excludes types.DirectoryExcludeSet
	warn     WarnFunc
	visit    func(visitedDirectory) error
}

// Walk returns the filtered pre-order walk sequence for root: each visited
// directory paired with its direct file names. Subdirectories whose bare name
// appears in excludes are pruned before descent. A root that cannot be read
// is an error; unreadable descendants are reported through warn and skipped.
func Walk(root string, excludes types.DirectoryExcludeSet, warn WarnFunc) ([]types.DirectoryListing, error) {
	var listings []types.DirectoryListing
	collectListing := func(directory visitedDirectory) error {
		listings = append(listings, types.DirectoryListing{
			Path:      directory.path,
			Label:     directory.label,
			FileNames: directory.fileNames,
		})
		return nil
	}
	if walkError := runTraversal(root, excludes, warn, collectListing); walkError != nil {
		return nil, walkError
	}
	return listings, nil
}

// StreamDirectories performs the same walk as Walk but delivers each
// DirectoryListing over out, stopping early when ctx is canceled. The channel
// is not closed by this function.
func StreamDirectories(ctx context.Context, options StreamOptions, out chan<- types.DirectoryListing) error {
	if out == nil {
		return fmt.Errorf("walker: listing channel is nil")
	}
	sendListing := func(directory visitedDirectory) error {
		listing := types.DirectoryListing{
			Path:      directory.path,
			Label:     directory.label,
			FileNames: directory.fileNames,
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- listing:
			return nil
		}
	}
	return runTraversal(options.Root, options.Excludes, options.Warn, sendListing)
}

// RenderTree renders the filtered subtree as an indented ASCII tree. Each
// directory line is "<indent><name>/"; file lines beneath it reuse the
// directory's indent with a branch marker, the last file using the terminal
// marker. Depth derives from the root-relative path's separator count.
func RenderTree(root string, excludes types.DirectoryExcludeSet, warn WarnFunc) (string, error) {
	var lines []string
	appendTreeLines := func(directory visitedDirectory) error {
		indent := ""
		if directory.depth > 0 {
			indent = strings.Repeat(verticalContinuationMarker, directory.depth-1) + midListMarker
		}
		lines = append(lines, indent+directory.baseName+directorySuffix)
		for fileIndex, fileName := range directory.fileNames {
			connector := midListMarker
			if fileIndex == len(directory.fileNames)-1 {
				connector = terminalMarker
			}
			lines = append(lines, indent+connector+fileName)
		}
		return nil
	}
	if walkError := runTraversal(root, excludes, warn, appendTreeLines); walkError != nil {
		return "", walkError
	}
	return strings.Join(lines, "\n"), nil
}

// runTraversal validates the root and drives the recursive descent.
func runTraversal(root string, excludes types.DirectoryExcludeSet, warn WarnFunc, visit func(visitedDirectory) error) error {
	if warn == nil {
		warn = func(string) {}
	}
	absoluteRoot, absolutePathError := filepath.Abs(root)
	if absolutePathError != nil {
		return fmt.Errorf(errorRootInaccessibleFormat, root, absolutePathError)
	}
	cleanedRoot := filepath.Clean(absoluteRoot)
	rootInformation, rootStatError := os.Stat(cleanedRoot)
	if rootStatError != nil {
		return fmt.Errorf(errorRootInaccessibleFormat, root, rootStatError)
	}
	if !rootInformation.IsDir() {
		return fmt.Errorf(errorRootNotDirectoryFormat, cleanedRoot)
	}
	state := traversal{root: cleanedRoot, excludes: excludes, warn: warn, visit: visit}
	return state.descend(cleanedRoot, true)
}

// descend visits path and recurses into its allowed subdirectories. The
// allowed child set is computed before recursing, so the traversal never
// mutates its own input. A failure to read the root directory itself is an
// error; deeper failures are reported and the branch is skipped.
func (state *traversal) descend(path string, isRoot bool) error {
	entries, readError := os.ReadDir(path)
	if readError != nil {
		if isRoot {
			return fmt.Errorf(errorRootInaccessibleFormat, path, readError)
		}
		state.warn(fmt.Sprintf(warningSkipDirectoryFormat, path, readError))
		return nil
	}

	var fileNames []string
	var subdirectoryNames []string
	for _, entry := range entries {
		if entry.IsDir() {
			if !state.excludes.Contains(entry.Name()) {
				subdirectoryNames = append(subdirectoryNames, entry.Name())
			}
			continue
		}
		fileNames = append(fileNames, entry.Name())
	}

	if visitError := state.visit(state.describe(path, fileNames)); visitError != nil {
		return visitError
	}

	for _, subdirectoryName := range subdirectoryNames {
		childPath := filepath.Join(path, subdirectoryName)
		if descendError := state.descend(childPath, false); descendError != nil {
			// Filesystem problems below the root are recovered in place, so
			// an error here comes from the visitor and aborts the walk.
			return descendError
		}
	}
	return nil
}

// describe computes the depth, label and base name for a visited directory.
func (state *traversal) describe(path string, fileNames []string) visitedDirectory {
	relativePath := utils.RelativePathOrSelf(path, state.root)
	depth := 0
	label := types.RootLabel
	if relativePath != "." {
		depth = strings.Count(relativePath, "/") + 1
		label = types.RootLabel + relativePath + directorySuffix
	}
	baseName := filepath.Base(path)
	if baseName == "." || baseName == string(filepath.Separator) {
		baseName = path
	}
	return visitedDirectory{
		path:      path,
		depth:     depth,
		label:     label,
		baseName:  baseName,
		fileNames: fileNames,
	}
}
