package table

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/view"
)

// fakeBackend scripts the store's backend with per-call hooks.
type fakeBackend struct {
	filterFunc func(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error)
	updateFunc func(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error)
	deleteFunc func(ctx context.Context, id string) error
	prefixFunc func(ctx context.Context, prefix string) error

	loads    atomic.Int32
	deletes  atomic.Int32
	prefixes atomic.Int32
}

func (f *fakeBackend) FilterChunks(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error) {
	f.loads.Add(1)
	if f.filterFunc != nil {
		return f.filterFunc(ctx, req)
	}
	return nil, api.Pagination{CurrentPage: 1, TotalPages: 1}, nil
}

func (f *fakeBackend) Update(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error) {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, kind, id, fields)
	}
	return &api.IngestAck{}, nil
}

func (f *fakeBackend) DeleteChunk(ctx context.Context, id string) error {
	f.deletes.Add(1)
	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, id)
	}
	return nil
}

func (f *fakeBackend) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.prefixes.Add(1)
	if f.prefixFunc != nil {
		return f.prefixFunc(ctx, prefix)
	}
	return nil
}

func chunkRows(ids ...string) []api.Chunk {
	rows := make([]api.Chunk, len(ids))
	for i, id := range ids {
		rows[i] = api.Chunk{Additional: api.Additional{ID: id}, SourceID: "src_" + id, Title: "row " + id}
	}
	return rows
}

func loadedStore(t *testing.T, backend *fakeBackend, confirm Confirmer, ids ...string) *Store {
	t.Helper()
	if backend.filterFunc == nil {
		backend.filterFunc = func(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error) {
			return chunkRows(ids...), api.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: len(ids)}, nil
		}
	}
	store := NewStore(backend, confirm, 20, nil)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestLoadReplacesRows(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a", "b")

	rows := store.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Additional.ID)
	assert.Equal(t, 2, store.Pager().TotalItems)
}

func TestLoadDiscardsStaleResponse(t *testing.T) {
	// The first listing stalls in flight; the criteria change and a second
	// listing lands first. When the stalled response finally arrives it must
	// be dropped, not applied over the newer rows.
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	backend := &fakeBackend{}
	backend.filterFunc = func(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error) {
		if len(req.SourceIDPrefixes) == 0 {
			close(firstStarted)
			<-releaseFirst
			return chunkRows("stale"), api.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1}, nil
		}
		return chunkRows("fresh"), api.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1}, nil
	}

	store := NewStore(backend, AutoApprove, 20, nil)

	firstDone := make(chan error, 1)
	go func() { firstDone <- store.Load(context.Background()) }()
	<-firstStarted

	store.SetCriteria(view.Criteria{SourceIDPrefixes: []string{"book_"}})
	require.NoError(t, store.Load(context.Background()))

	close(releaseFirst)
	require.NoError(t, <-firstDone, "a superseded listing reports no error")

	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].Additional.ID, "stale rows must not clobber newer ones")
}

func TestSetCriteriaRewindsToFirstPage(t *testing.T) {
	backend := &fakeBackend{}
	backend.filterFunc = func(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error) {
		return chunkRows("a"), api.Pagination{
			CurrentPage: req.Page, TotalPages: 5, TotalItems: 90,
			HasNextPage: req.Page < 5, HasPrevPage: req.Page > 1,
		}, nil
	}
	store := NewStore(backend, AutoApprove, 20, nil)
	require.NoError(t, store.Load(context.Background()))
	require.NoError(t, store.GoToPage(context.Background(), 3))
	require.Equal(t, 3, store.Pager().CurrentPage)

	store.SetCriteria(view.Criteria{Types: []string{"book"}})
	assert.Equal(t, 1, store.Pager().CurrentPage)
}

func TestPageNavigationSkipsFetchOnNoOp(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a")
	before := backend.loads.Load()

	// One page total: every navigation is a no-op and must not hit the wire.
	require.NoError(t, store.NextPage(context.Background()))
	require.NoError(t, store.PrevPage(context.Background()))
	require.NoError(t, store.GoToPage(context.Background(), 1))
	require.NoError(t, store.GoToPage(context.Background(), 9))

	assert.Equal(t, before, backend.loads.Load())
}

func TestDeleteRemovesRowOptimistically(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a", "b", "c")
	loadsBefore := backend.loads.Load()

	require.NoError(t, store.Delete(context.Background(), "b"))

	rows := store.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Additional.ID)
	assert.Equal(t, "c", rows[1].Additional.ID)
	assert.Equal(t, loadsBefore, backend.loads.Load(), "single delete does not reload")
}

func TestDeleteFailureLeavesRowsUntouched(t *testing.T) {
	backend := &fakeBackend{}
	backend.deleteFunc = func(ctx context.Context, id string) error {
		return errors.New("boom")
	}
	store := loadedStore(t, backend, AutoApprove, "a", "b")

	err := store.Delete(context.Background(), "a")
	require.Error(t, err)
	assert.Len(t, store.Rows(), 2)
}

func TestDeleteDeclined(t *testing.T) {
	decline := ConfirmerFunc(func(context.Context, string) (bool, error) { return false, nil })
	backend := &fakeBackend{}
	store := loadedStore(t, backend, decline, "a")

	err := store.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, int32(0), backend.deletes.Load(), "declining must not reach the backend")
	assert.Len(t, store.Rows(), 1)
}

func TestDeleteSuppressesDuplicateInFlight(t *testing.T) {
	confirmStarted := make(chan struct{})
	releaseConfirm := make(chan struct{})
	confirm := ConfirmerFunc(func(context.Context, string) (bool, error) {
		close(confirmStarted)
		<-releaseConfirm
		return true, nil
	})

	backend := &fakeBackend{}
	store := loadedStore(t, backend, confirm, "a")

	firstDone := make(chan error, 1)
	go func() { firstDone <- store.Delete(context.Background(), "a") }()
	<-confirmStarted

	require.True(t, store.Deleting("a"))
	require.NoError(t, store.Delete(context.Background(), "a"), "duplicate delete is silently suppressed")

	close(releaseConfirm)
	require.NoError(t, <-firstDone)
	assert.Equal(t, int32(1), backend.deletes.Load())

	require.Eventually(t, func() bool { return !store.Deleting("a") }, time.Second, time.Millisecond)
}

func TestDeleteByPrefixesPartialFailure(t *testing.T) {
	backend := &fakeBackend{}
	backend.prefixFunc = func(ctx context.Context, prefix string) error {
		if prefix == "bad_" {
			return errors.New("boom")
		}
		return nil
	}
	store := loadedStore(t, backend, AutoApprove, "a")
	loadsBefore := backend.loads.Load()

	result, err := store.DeleteByPrefixes(context.Background(), []string{"good_", "bad_", "also_good_"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad_", result.Errors[0].Prefix)
	assert.Equal(t, int32(3), backend.prefixes.Load(), "every prefix is attempted")
	assert.Equal(t, loadsBefore+1, backend.loads.Load(), "exactly one reload after the batch")
}

func TestDeleteByPrefixesDeclined(t *testing.T) {
	decline := ConfirmerFunc(func(context.Context, string) (bool, error) { return false, nil })
	backend := &fakeBackend{}
	store := loadedStore(t, backend, decline, "a")

	_, err := store.DeleteByPrefixes(context.Background(), []string{"book_"})
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, int32(0), backend.prefixes.Load())
}

func TestDeleteByPrefixesEmptyList(t *testing.T) {
	backend := &fakeBackend{}
	store := NewStore(backend, AutoApprove, 20, nil)

	result, err := store.DeleteByPrefixes(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, BulkResult{}, result)
	assert.Equal(t, int32(0), backend.loads.Load(), "nothing to do, nothing fetched")
}

func TestSaveLocalPrependsNewRecord(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a")
	loadsBefore := backend.loads.Load()

	store.SaveLocal(api.Chunk{SourceID: "draft_1", Title: "Draft"}, -1)

	rows := store.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "draft_1", rows[0].SourceID)
	assert.NotEmpty(t, rows[0].Additional.ID, "a draft gets a synthetic id")
	assert.Equal(t, "a", rows[1].Additional.ID)
	assert.Equal(t, loadsBefore, backend.loads.Load(), "staging is local-only")
}

func TestSaveLocalMergesIntoExistingRow(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a", "b")

	store.SaveLocal(api.Chunk{Title: "renamed"}, 1)

	rows := store.Rows()
	assert.Equal(t, "renamed", rows[1].Title)
	assert.Equal(t, "src_b", rows[1].SourceID, "untouched fields survive the merge")
	assert.Equal(t, "b", rows[1].Additional.ID)
}

func TestSaveLocalOutOfRangeIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	store := loadedStore(t, backend, AutoApprove, "a")

	store.SaveLocal(api.Chunk{Title: "ghost"}, 5)
	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "row a", rows[0].Title)
}

func TestSaveRemoteReloadsFromServer(t *testing.T) {
	var patched map[string]any
	backend := &fakeBackend{}
	backend.updateFunc = func(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error) {
		patched = fields
		return &api.IngestAck{JobID: "job-1", Status: "queued"}, nil
	}
	store := loadedStore(t, backend, AutoApprove, "a")
	loadsBefore := backend.loads.Load()

	ack, err := store.SaveRemote(context.Background(), api.KindBook, "a", map[string]any{"title": "new"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", ack.JobID)
	assert.Equal(t, map[string]any{"title": "new"}, patched)
	assert.Equal(t, loadsBefore+1, backend.loads.Load(), "remote save reloads server truth")
}

func TestSaveRemoteUpdateFailureSkipsReload(t *testing.T) {
	backend := &fakeBackend{}
	backend.updateFunc = func(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error) {
		return nil, errors.New("boom")
	}
	store := loadedStore(t, backend, AutoApprove, "a")
	loadsBefore := backend.loads.Load()

	_, err := store.SaveRemote(context.Background(), api.KindBook, "a", map[string]any{"title": "new"})
	require.Error(t, err)
	assert.Equal(t, loadsBefore, backend.loads.Load())
}
