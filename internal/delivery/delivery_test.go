package delivery_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/temirov/dirclip/internal/delivery"
)

// recordingSink captures every delivered payload, optionally failing after a
// configured number of copies.
type recordingSink struct {
	copies    []string
	failAfter int
	failure   error
}

func (sink *recordingSink) Copy(text string) error {
	if sink.failure != nil && len(sink.copies) >= sink.failAfter {
		return sink.failure
	}
	sink.copies = append(sink.copies, text)
	return nil
}

// characterCounter counts one token per character.
type characterCounter struct{}

func (characterCounter) Name() string { return "character" }

func (characterCounter) CountString(input string) int { return len(input) }

func TestDeliverChunksTransfersAllWithAcknowledgments(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	var output bytes.Buffer
	loop := delivery.NewLoop(sink, characterCounter{}, strings.NewReader("\n\n\n"), &output)

	chunks := []string{"first\n", "second\n", "third\n"}
	if deliverError := loop.DeliverChunks(chunks, 3, 19, 10); deliverError != nil {
		t.Fatalf("DeliverChunks failed: %v", deliverError)
	}

	if len(sink.copies) != len(chunks) {
		t.Fatalf("expected %d copies, got %d", len(chunks), len(sink.copies))
	}
	for chunkIndex, chunk := range chunks {
		if sink.copies[chunkIndex] != chunk {
			t.Fatalf("copy %d mismatch: %q", chunkIndex, sink.copies[chunkIndex])
		}
	}
	if !strings.Contains(output.String(), "All chunks copied") {
		t.Fatalf("expected completion report, got: %s", output.String())
	}
	if !strings.Contains(output.String(), "[1/3]") || !strings.Contains(output.String(), "[3/3]") {
		t.Fatalf("expected per-chunk progress, got: %s", output.String())
	}
}

func TestDeliverChunksStopsOnCancellation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		acknowledgment string
	}{
		{name: "lowercase q", acknowledgment: "q\n"},
		{name: "uppercase Q", acknowledgment: "Q\n"},
		{name: "quit word", acknowledgment: "quit\n"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			sink := &recordingSink{}
			var output bytes.Buffer
			loop := delivery.NewLoop(sink, characterCounter{}, strings.NewReader(testCase.acknowledgment), &output)

			chunks := []string{"first\n", "second\n", "third\n"}
			if deliverError := loop.DeliverChunks(chunks, 3, 19, 10); deliverError != nil {
				t.Fatalf("DeliverChunks failed: %v", deliverError)
			}

			if len(sink.copies) != 1 {
				t.Fatalf("expected delivery to stop after the current chunk, got %d copies", len(sink.copies))
			}
			if strings.Contains(output.String(), "All chunks copied") {
				t.Fatalf("did not expect completion report after cancellation")
			}
		})
	}
}

func TestDeliverChunksPropagatesSinkFailure(t *testing.T) {
	t.Parallel()

	sinkFailure := errors.New("clipboard unavailable")
	sink := &recordingSink{failAfter: 1, failure: sinkFailure}
	var output bytes.Buffer
	loop := delivery.NewLoop(sink, characterCounter{}, strings.NewReader("\n\n"), &output)

	deliverError := loop.DeliverChunks([]string{"first\n", "second\n"}, 2, 13, 10)
	if deliverError == nil {
		t.Fatalf("expected sink failure to propagate")
	}
	if !errors.Is(deliverError, sinkFailure) {
		t.Fatalf("expected wrapped sink failure, got %v", deliverError)
	}
	if len(sink.copies) != 1 {
		t.Fatalf("expected delivery to abort after the failed transfer")
	}
}

func TestDeliverWhole(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	var output bytes.Buffer
	loop := delivery.NewLoop(sink, characterCounter{}, strings.NewReader(""), &output)

	payload := "tree\nand\ncontent\n"
	if deliverError := loop.DeliverWhole(payload); deliverError != nil {
		t.Fatalf("DeliverWhole failed: %v", deliverError)
	}
	if len(sink.copies) != 1 || sink.copies[0] != payload {
		t.Fatalf("payload not transferred verbatim: %v", sink.copies)
	}
	if !strings.Contains(output.String(), "Copied 4 lines") {
		t.Fatalf("expected summary line, got: %s", output.String())
	}
}

func TestDeliverWholePropagatesSinkFailure(t *testing.T) {
	t.Parallel()

	sinkFailure := errors.New("clipboard unavailable")
	sink := &recordingSink{failure: sinkFailure}
	var output bytes.Buffer
	loop := delivery.NewLoop(sink, characterCounter{}, strings.NewReader(""), &output)

	if deliverError := loop.DeliverWhole("payload"); !errors.Is(deliverError, sinkFailure) {
		t.Fatalf("expected wrapped sink failure, got %v", deliverError)
	}
}
