package viewmodel

import "github.com/aretw0/wanderlist/pkg/core"

// Service is what a Factory needs from the notes layer.
type Service interface {
	Source
	Notes
}

var _ Service = (*core.Service)(nil)

// Factory builds view-models from an explicit service handle.
type Factory struct {
	service Service
	opts    []Option
}

// NewFactory creates a Factory. opts apply to every view-model it builds.
func NewFactory(service Service, opts ...Option) *Factory {
	return &Factory{service: service, opts: opts}
}

// NoteList returns a new list view-model.
func (f *Factory) NoteList(opts ...Option) *NoteList {
	return NewNoteList(f.service, f.merge(opts)...)
}

// NoteEditor returns a new detail view-model.
func (f *Factory) NoteEditor(opts ...Option) *NoteEditor {
	return NewNoteEditor(f.service, f.merge(opts)...)
}

func (f *Factory) merge(opts []Option) []Option {
	return append(append([]Option{}, f.opts...), opts...)
}
