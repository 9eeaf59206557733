// Package clipboard provides access to the system clipboard, the single-slot
// transfer sink payload chunks are delivered to.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier copies textual data to the transfer sink. Sink contents follow
// last-writer-wins semantics: each call overwrites the previous delivery.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard-backed Copier.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)
