package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wanderlist/pkg/adapters/memory"
	"github.com/aretw0/wanderlist/pkg/core"
)

// staticRepository implements core.Repository but NOT core.Watchable.
type staticRepository struct {
	*memory.Repository
}

func (staticRepository) Watch() {}

func newService(t *testing.T, opts ...core.ServiceOption) (*core.Service, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	t.Cleanup(func() { _ = repo.Close() })
	return core.NewService(repo, opts...), repo
}

func draft(tujuan, kendaraan, catatan string) core.Draft {
	return core.Draft{Tujuan: tujuan, Kendaraan: kendaraan, Catatan: catatan}
}

func next(t *testing.T, ch <-chan []core.Note) []core.Note {
	t.Helper()
	select {
	case notes, ok := <-ch:
		require.True(t, ok, "stream closed")
		return notes
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func destinations(notes []core.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Tujuan)
	}
	return out
}

func TestService_CRUD(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	// 1. Insert
	id, err := service.InsertNote(ctx, draft("Bali", "Pesawat", "Pantai Kuta"))
	require.NoError(t, err)
	require.NotZero(t, id)

	// 2. Get
	note, found, err := service.GetNote(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, core.Note{ID: id, Tujuan: "Bali", Kendaraan: "Pesawat", Catatan: "Pantai Kuta"}, note)

	// 3. Update
	require.NoError(t, service.UpdateNote(ctx, id, draft("Bali", "Kapal", "Lewat Gilimanuk")))
	note, _, err = service.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kapal", note.Kendaraan)
	assert.Equal(t, id, note.ID)

	// 4. Delete
	require.NoError(t, service.DeleteNote(ctx, id))
	_, found, err = service.GetNote(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_GetMissingIsAbsent(t *testing.T) {
	service, _ := newService(t)

	for _, id := range []int64{0, -1, 42} {
		_, found, err := service.GetNote(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, found, "id %d", id)
	}
}

func TestService_MissingIDsAreNoOps(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	assert.NoError(t, service.DeleteNote(ctx, 99))
	assert.NoError(t, service.UpdateNote(ctx, 99, draft("Aceh", "Motor", "x")))

	notes, err := service.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestService_RejectsEmptyFields(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	cases := map[string]core.Draft{
		"tujuan":    draft("", "Motor", "x"),
		"kendaraan": draft("Aceh", " ", "x"),
		"catatan":   draft("Aceh", "Motor", ""),
	}
	for field, d := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := service.InsertNote(ctx, d)
			require.ErrorIs(t, err, core.ErrValidation)

			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, field, verr.Field)

			assert.ErrorIs(t, service.UpdateNote(ctx, 1, d), core.ErrValidation)
		})
	}

	notes, err := service.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestService_WatchUnsupported(t *testing.T) {
	service := core.NewService(staticRepository{memory.NewRepository()})

	_, err := service.ObserveAll(context.Background())
	assert.Error(t, err)
}

func TestObserveAll_OrderedSnapshots(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)

	initial := next(t, stream)
	assert.NotNil(t, initial)
	assert.Empty(t, initial)

	for _, dest := range []string{"Bali", "Aceh", "Jakarta"} {
		_, err := service.InsertNote(ctx, draft(dest, "Mobil", "-"))
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		select {
		case notes := <-stream:
			return assert.ObjectsAreEqual([]string{"Aceh", "Bali", "Jakarta"}, destinations(notes))
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserveAll_NewSubscriberGetsCurrentSnapshot(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := service.InsertNote(ctx, draft("Bandung", "Kereta", "Gedung Sate"))
	require.NoError(t, err)

	first, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	second, err := service.ObserveAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bandung"}, destinations(next(t, first)))
	assert.Equal(t, []string{"Bandung"}, destinations(next(t, second)))
}

func TestObserveAll_UpdateVisibleInNextEmission(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, err := service.InsertNote(ctx, draft("Lombok", "Motor", "Rinjani"))
	require.NoError(t, err)

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Motor", next(t, stream)[0].Kendaraan)

	require.NoError(t, service.UpdateNote(ctx, id, draft("Lombok", "Mobil", "Rinjani")))

	updated := next(t, stream)
	require.Len(t, updated, 1)
	assert.Equal(t, core.Note{ID: id, Tujuan: "Lombok", Kendaraan: "Mobil", Catatan: "Rinjani"}, updated[0])
}

func TestObserveAll_DeleteRemovesFromSnapshots(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keep, err := service.InsertNote(ctx, draft("Aceh", "Pesawat", "-"))
	require.NoError(t, err)
	gone, err := service.InsertNote(ctx, draft("Bali", "Pesawat", "-"))
	require.NoError(t, err)

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	require.Len(t, next(t, stream), 2)

	require.NoError(t, service.DeleteNote(ctx, gone))
	notes := next(t, stream)
	require.Len(t, notes, 1)
	assert.Equal(t, keep, notes[0].ID)
}

func TestObserveAll_ConcurrentInserts(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	next(t, stream)

	var wg sync.WaitGroup
	for _, dest := range []string{"Yogyakarta", "Surabaya"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.InsertNote(ctx, draft(dest, "Kereta", "-"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		select {
		case notes := <-stream:
			return assert.ObjectsAreEqual([]string{"Surabaya", "Yogyakarta"}, destinations(notes))
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserveAll_ErrorsAreReportedAndRecovered(t *testing.T) {
	var mu sync.Mutex
	var reported []error
	service, repo := newService(t,
		core.WithRetryInterval(20*time.Millisecond),
		core.WithErrorHandler(func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	require.Empty(t, next(t, stream))

	boom := errors.Join(core.ErrStorage, errors.New("disk unavailable"))
	repo.SetFail(boom)
	repo.Touch()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) > 0
	}, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.ErrorIs(t, reported[0], core.ErrStorage)
	mu.Unlock()

	// The stream stays open and resumes once the medium is back.
	repo.SetFail(nil)
	_, err = service.InsertNote(ctx, draft("Medan", "Pesawat", "-"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case notes, ok := <-stream:
			return ok && len(notes) == 1
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserveAll_ClosesOnCancel(t *testing.T) {
	service, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := service.ObserveAll(ctx)
	require.NoError(t, err)
	next(t, stream)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-stream:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWatch_DecouplesSlowConsumer(t *testing.T) {
	service, _ := newService(t, core.WithEventBuffer(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := service.Watch(ctx)
	require.NoError(t, err)

	// Writers must not block while nobody reads.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			_, err := service.InsertNote(ctx, draft("Solo", "Kereta", "-"))
			assert.NoError(t, err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writers blocked by an idle watcher")
	}

	require.Eventually(t, func() bool { return len(events) > 0 }, time.Second, 5*time.Millisecond)
	e := <-events
	assert.Equal(t, core.EventCreate, e.Type)
}

func TestService_State(t *testing.T) {
	service, _ := newService(t, core.WithEventBuffer(7))

	state, ok := service.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 7, state.EventBufferSize)
	assert.Equal(t, "memory", state.RepositoryType)
	assert.Equal(t, "service", service.ComponentType())
}
