package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/wanderlist/pkg/core"
)

// Notes is the set of point operations the editor delegates to.
// *core.Service implements it.
type Notes interface {
	GetNote(ctx context.Context, id int64) (core.Note, bool, error)
	InsertNote(ctx context.Context, d core.Draft) (int64, error)
	UpdateNote(ctx context.Context, id int64, d core.Draft) error
	DeleteNote(ctx context.Context, id int64) error
}

// LoadResult is the outcome of NoteEditor.Load.
type LoadResult struct {
	Note  core.Note
	Found bool
	Err   error
}

// Result is the outcome of a write. ID is set by Insert.
type Result struct {
	ID  int64
	Err error
}

// NoteEditor is the detail view-model backing the edit form.
//
// Every operation runs on its own goroutine and delivers exactly one value on
// the returned channel. Writes are detached from the caller's cancellation:
// once dispatched they complete even if the screen that issued them goes away.
type NoteEditor struct {
	notes Notes
	opts  options
	wg    sync.WaitGroup
}

// NewNoteEditor creates an editor over notes.
func NewNoteEditor(notes Notes, opts ...Option) *NoteEditor {
	return &NoteEditor{notes: notes, opts: newOptions(opts)}
}

// Load fetches the note once to populate the form. An unknown id yields
// Found == false and no error.
func (e *NoteEditor) Load(ctx context.Context, id int64) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	e.dispatch(ctx, func(ctx context.Context) {
		note, found, err := e.notes.GetNote(ctx, id)
		if err != nil {
			err = fmt.Errorf("load note %d: %w", id, err)
			e.opts.notify(err)
		}
		out <- LoadResult{Note: note, Found: found, Err: err}
	})
	return out
}

// Insert stores a new note and reports its id.
func (e *NoteEditor) Insert(ctx context.Context, tujuan, kendaraan, catatan string) <-chan Result {
	d := core.Draft{Tujuan: tujuan, Kendaraan: kendaraan, Catatan: catatan}
	return e.write(ctx, "insert note", func(ctx context.Context) (int64, error) {
		return e.notes.InsertNote(ctx, d)
	})
}

// Update replaces the fields of note id. Updating a note that no longer exists
// is not an error.
func (e *NoteEditor) Update(ctx context.Context, id int64, tujuan, kendaraan, catatan string) <-chan Result {
	d := core.Draft{Tujuan: tujuan, Kendaraan: kendaraan, Catatan: catatan}
	return e.write(ctx, fmt.Sprintf("update note %d", id), func(ctx context.Context) (int64, error) {
		return id, e.notes.UpdateNote(ctx, id, d)
	})
}

// Delete removes note id if present.
func (e *NoteEditor) Delete(ctx context.Context, id int64) <-chan Result {
	return e.write(ctx, fmt.Sprintf("delete note %d", id), func(ctx context.Context) (int64, error) {
		return id, e.notes.DeleteNote(ctx, id)
	})
}

// Wait blocks until every dispatched operation has finished.
func (e *NoteEditor) Wait() {
	e.wg.Wait()
}

func (e *NoteEditor) write(ctx context.Context, op string, fn func(context.Context) (int64, error)) <-chan Result {
	out := make(chan Result, 1)
	e.dispatch(context.WithoutCancel(ctx), func(ctx context.Context) {
		id, err := fn(ctx)
		if err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			e.opts.notify(err)
		}
		out <- Result{ID: id, Err: err}
	})
	return out
}

// dispatch runs fn with ctx on a tracked goroutine. The goroutine itself is
// never cancelled so the result is always delivered.
func (e *NoteEditor) dispatch(ctx context.Context, fn func(context.Context)) {
	e.wg.Add(1)
	lifecycle.Go(context.WithoutCancel(ctx), func(context.Context) error {
		defer e.wg.Done()
		fn(ctx)
		return nil
	}, lifecycle.WithErrorHandler(e.opts.notify))
}
