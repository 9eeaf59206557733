// Package tokenizer estimates token counts for text payloads. A precise
// tiktoken-backed counter is preferred; when no encoding is available the
// package degrades once, for the process lifetime, to a character-ratio
// approximation.
package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is the fixed target model chunk ceilings are tuned for.
	DefaultModel = "gpt-4o-mini"

	// heuristicTokensPerCharacter approximates tokens when tiktoken is
	// unavailable: floor(characterCount * ratio).
	heuristicTokensPerCharacter = 0.25

	heuristicCounterName = "heuristic"
)

// Counter converts a text span to a nonnegative approximate token count.
type Counter interface {
	Name() string
	CountString(input string) int
}

// NewCounter returns the Counter for the requested model. The strategy is
// chosen exactly once: callers hold the returned Counter for the run instead
// of re-probing tiktoken availability per call.
func NewCounter(model string) Counter {
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = DefaultModel
	}
	encoding, encodingError := tiktoken.EncodingForModel(strings.ToLower(trimmedModel))
	if encodingError != nil || encoding == nil {
		return heuristicCounter{}
	}
	return encodingCounter{encoding: encoding, name: strings.ToLower(trimmedModel)}
}

// encodingCounter counts tokens with a tiktoken encoding bound to one model.
type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) int {
	return len(counter.encoding.Encode(input, nil, nil))
}

// heuristicCounter estimates tokens from the character count alone.
type heuristicCounter struct{}

func (heuristicCounter) Name() string {
	return heuristicCounterName
}

func (heuristicCounter) CountString(input string) int {
	return int(float64(utf8.RuneCountInString(input)) * heuristicTokensPerCharacter)
}

var _ Counter = encodingCounter{}
var _ Counter = heuristicCounter{}
