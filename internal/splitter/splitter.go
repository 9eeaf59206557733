// Package splitter partitions a large text payload into sequential chunks
// that respect a maximum token ceiling while never breaking a line.
package splitter

import (
	"strings"

	"github.com/temirov/dirclip/internal/tokenizer"
)

// Split partitions text on line boundaries into ordered chunks whose
// estimated token counts stay at or under maxTokens. Packing is greedy: the
// accumulating chunk is closed when it already has content and the next line
// would push it past the ceiling. A single line that alone exceeds the
// ceiling still becomes its own chunk; lines are never split mid-way.
// Concatenating the returned chunks in order reproduces text exactly.
func Split(text string, maxTokens int, counter tokenizer.Counter) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	var chunkBuilder strings.Builder
	chunkTokens := 0

	for _, line := range splitLinesKeepingTerminators(text) {
		lineTokens := counter.CountString(line)
		if chunkBuilder.Len() > 0 && chunkTokens+lineTokens > maxTokens {
			chunks = append(chunks, chunkBuilder.String())
			chunkBuilder.Reset()
			chunkTokens = 0
		}
		chunkBuilder.WriteString(line)
		chunkTokens += lineTokens
	}

	if chunkBuilder.Len() > 0 {
		chunks = append(chunks, chunkBuilder.String())
	}
	return chunks
}

// splitLinesKeepingTerminators yields the lines of text with each trailing
// newline retained, so rejoining the lines is lossless.
func splitLinesKeepingTerminators(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
