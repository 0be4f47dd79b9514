// Package wanderlist is the composition root of the Wanderlist data layer.
//
// Wanderlist records travel plans: a destination (tujuan), a transport mode
// (kendaraan) and free text notes (catatan). This package wires the domain
// service in pkg/core to a storage adapter and exposes the layout preference
// and the presentation adapters a rendering layer binds to.
//
// Adapters:
//
//   - sqlite (default): gorm over a single wanderlist.db file.
//   - fs: a human-editable notes.yaml table, watched for external edits.
//   - memory: volatile, for tests and previews.
//
// Usage:
//
//	app, err := wanderlist.Open("./trips", wanderlist.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	id, err := app.Notes.InsertNote(ctx, wanderlist.Draft{
//		Tujuan: "Bali", Kendaraan: "Kapal", Catatan: "Pantai Kuta",
//	})
//
//	// Live, ordered view of every note.
//	list := app.ViewModels().NoteList()
//	for notes := range list.Subscribe(ctx) {
//		render(notes)
//	}
package wanderlist
