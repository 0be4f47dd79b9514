package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wanderlist/internal/platform"
	"github.com/aretw0/wanderlist/pkg/adapters/memory"
	"github.com/aretw0/wanderlist/pkg/core"
	"github.com/aretw0/wanderlist/pkg/viewmodel"
)

// notesOnly hides the preference methods of the memory repository.
type notesOnly struct {
	core.Repository
}

func nextSnapshot(t *testing.T, ch <-chan []core.Note, want int) []core.Note {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case notes, ok := <-ch:
			require.True(t, ok, "stream closed")
			if len(notes) == want {
				return notes
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d notes", want)
			return nil
		}
	}
}

func TestOpen_EndToEnd(t *testing.T) {
	for _, adapter := range []string{platform.AdapterSQLite, platform.AdapterFS} {
		t.Run(adapter, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			dir := t.TempDir()

			app, err := platform.Open(dir, platform.WithAdapter(adapter))
			require.NoError(t, err)

			list := app.ViewModels(viewmodel.WithGracePeriod(0)).NoteList()
			snapshots := list.Subscribe(ctx)

			for _, d := range []core.Draft{
				{Tujuan: "Bali", Kendaraan: "Kapal", Catatan: "Kuta"},
				{Tujuan: "Aceh", Kendaraan: "Pesawat", Catatan: "Masjid Raya"},
				{Tujuan: "Jakarta", Kendaraan: "Kereta", Catatan: "Monas"},
			} {
				_, err := app.Notes.InsertNote(ctx, d)
				require.NoError(t, err)
			}

			got := nextSnapshot(t, snapshots, 3)
			assert.Equal(t, []string{"Aceh", "Bali", "Jakarta"}, []string{got[0].Tujuan, got[1].Tujuan, got[2].Tujuan})

			require.NoError(t, app.Preferences.Save(ctx, false))
			list.Close()
			require.NoError(t, app.Close())
			require.NoError(t, app.Close())

			reopened, err := platform.Open(dir, platform.WithAdapter(adapter))
			require.NoError(t, err)
			defer reopened.Close()

			notes, err := reopened.Notes.ListNotes(ctx)
			require.NoError(t, err)
			assert.Len(t, notes, 3)

			showList, err := reopened.Preferences.ShowList(ctx)
			require.NoError(t, err)
			assert.False(t, showList)
		})
	}
}

func TestOpen_PreferencesFallBackToMemory(t *testing.T) {
	ctx := context.Background()
	app, err := platform.Open("", platform.WithRepository(notesOnly{memory.NewRepository()}))
	require.NoError(t, err)
	defer app.Close()

	v, err := app.Preferences.ShowList(ctx)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, app.Preferences.Save(ctx, false))
	v, err = app.Preferences.ShowList(ctx)
	require.NoError(t, err)
	assert.False(t, v)
}

func TestOpen_ErrorHandlerReceivesStreamFailures(t *testing.T) {
	repo := memory.NewRepository()
	reported := make(chan error, 8)

	app, err := platform.Open("", platform.WithRepository(repo),
		platform.WithRetryInterval(10*time.Millisecond),
		platform.WithErrorHandler(func(err error) {
			select {
			case reported <- err:
			default:
			}
		}))
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo.SetFail(core.ErrStorage)
	_, err = app.Notes.ObserveAll(ctx)
	require.NoError(t, err)

	select {
	case err := <-reported:
		assert.ErrorIs(t, err, core.ErrStorage)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler never called")
	}
}

func TestShared(t *testing.T) {
	dir := t.TempDir()

	first, err := platform.Shared(dir, platform.WithAdapter(platform.AdapterMemory))
	require.NoError(t, err)
	second, err := platform.Shared("elsewhere")
	require.NoError(t, err)

	assert.Same(t, first, second)
}
