// Package delivery hands payload chunks to the transfer sink one at a time,
// pausing for user acknowledgment between chunks.
package delivery

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/dirclip/internal/services/clipboard"
	"github.com/temirov/dirclip/internal/tokenizer"
	"github.com/temirov/dirclip/internal/utils"
)

const (
	cancellationToken = "q"

	splitHeaderFormat     = "\n%d lines ≈ %d tokens → %d chunk(s) (≤ %d tokens).\n"
	chunkReportFormat     = "[%d/%d] Copied %d lines (≈%d tokens)"
	nextChunkPromptSuffix = " – press <Enter> for next (q to quit)"
	promptTerminator      = ": "
	deliveryCanceledLine  = "Delivery canceled; remaining chunks were not copied."
	allChunksCopiedLine   = "✓ All chunks copied."
	wholeCopiedFormat     = "✓ Copied %d lines (≈%d tokens).\n"

	errorSinkCopyFormat = "copying to clipboard: %w"
)

// Loop transfers chunks sequentially to a sink. It is single-threaded and
// synchronous; the acknowledgment read between chunks is the only suspension
// point.
type Loop struct {
	sink    clipboard.Copier
	counter tokenizer.Counter
	input   *bufio.Reader
	output  io.Writer
}

// NewLoop constructs a delivery loop reading acknowledgments from input and
// reporting progress on output.
func NewLoop(sink clipboard.Copier, counter tokenizer.Counter, input io.Reader, output io.Writer) *Loop {
	return &Loop{
		sink:    sink,
		counter: counter,
		input:   bufio.NewReader(input),
		output:  output,
	}
}

// DeliverChunks copies each chunk to the sink in order, reporting its size
// and waiting for an acknowledgment line before the next transfer. An
// acknowledgment starting with the cancellation token stops delivery; the
// remaining chunks are never sent. A sink failure aborts immediately.
func (loop *Loop) DeliverChunks(chunks []string, totalLines int, totalTokens int, maxTokens int) error {
	totalChunks := len(chunks)
	fmt.Fprintf(loop.output, splitHeaderFormat, totalLines, totalTokens, totalChunks, maxTokens)

	for chunkIndex, chunk := range chunks {
		if copyError := loop.sink.Copy(chunk); copyError != nil {
			return fmt.Errorf(errorSinkCopyFormat, copyError)
		}

		chunkLines := utils.CountLines(chunk)
		chunkTokens := loop.counter.CountString(chunk)
		prompt := fmt.Sprintf(chunkReportFormat, chunkIndex+1, totalChunks, chunkLines, chunkTokens)
		if chunkIndex < totalChunks-1 {
			prompt += nextChunkPromptSuffix
		}
		fmt.Fprint(loop.output, prompt+promptTerminator)

		acknowledgment, readError := loop.input.ReadString('\n')
		if readError != nil && acknowledgment == "" && readError != io.EOF {
			return readError
		}
		if isCancellation(acknowledgment) {
			fmt.Fprintln(loop.output, deliveryCanceledLine)
			return nil
		}
	}

	fmt.Fprintln(loop.output, allChunksCopiedLine)
	return nil
}

// DeliverWhole transfers the entire payload in a single non-interactive copy.
func (loop *Loop) DeliverWhole(payload string) error {
	if copyError := loop.sink.Copy(payload); copyError != nil {
		return fmt.Errorf(errorSinkCopyFormat, copyError)
	}
	fmt.Fprintf(loop.output, wholeCopiedFormat, utils.CountLines(payload), loop.counter.CountString(payload))
	return nil
}

// isCancellation reports whether an acknowledgment line requests early
// termination: only the first character's case-insensitive match counts.
func isCancellation(acknowledgment string) bool {
	trimmed := strings.TrimSpace(acknowledgment)
	return strings.HasPrefix(strings.ToLower(trimmed), cancellationToken)
}
