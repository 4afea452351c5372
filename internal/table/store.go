// Package table manages the in-memory page of source records shown by the
// manage view: server-driven loading with stale-response protection, staged
// local edits, and confirmed deletes.
package table

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goldcare-ai/goldctl/internal/api"
	"github.com/goldcare-ai/goldctl/internal/view"
)

// Backend is the slice of the API client the store depends on.
type Backend interface {
	FilterChunks(ctx context.Context, req api.FilterRequest) ([]api.Chunk, api.Pagination, error)
	Update(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error)
	DeleteChunk(ctx context.Context, id string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Store holds the current page of records. Rows are a transient cached copy,
// replaced wholesale on every filter or page change.
type Store struct {
	backend Backend
	confirm Confirmer
	logger  *slog.Logger

	mu       sync.Mutex
	criteria view.Criteria
	pager    view.Pager
	rows     []api.Chunk
	deleting map[string]bool
	// seq orders listing requests; a response is applied only if no newer
	// request was issued while it was in flight.
	seq uint64
}

// NewStore creates a store over the given backend. confirm gates destructive
// operations; pass AutoApprove to skip prompting.
func NewStore(backend Backend, confirm Confirmer, pageSize int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:  backend,
		confirm:  confirm,
		logger:   logger,
		pager:    view.NewPager(pageSize),
		deleting: make(map[string]bool),
	}
}

// Rows returns a copy of the currently cached page.
func (s *Store) Rows() []api.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Chunk(nil), s.rows...)
}

// Pager returns the current pagination state.
func (s *Store) Pager() view.Pager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager
}

// Criteria returns the active filter criteria.
func (s *Store) Criteria() view.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Deleting reports whether a delete for the given row id is outstanding, so
// the UI can disable the control.
func (s *Store) Deleting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting[id]
}

// SetCriteria replaces the filter criteria and rewinds to page 1. Callers
// follow up with Load; a listing already in flight for the old criteria is
// discarded when it lands.
func (s *Store) SetCriteria(c view.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.pager.CurrentPage = 1
}

// Load fetches the current page from the server and replaces the cached
// rows. A response superseded by a newer request is dropped without touching
// state.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	token := s.seq
	req := view.BuildRequest(s.criteria, s.pager.CurrentPage, s.pager.ItemsPerPage)
	s.mu.Unlock()

	rows, pagination, err := s.backend.FilterChunks(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.seq {
		s.logger.Debug("discarding stale listing response", "token", token, "current", s.seq)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	s.rows = rows
	s.pager.Apply(pagination)
	return nil
}

// GoToPage navigates to a page and reloads. Out-of-range targets are a
// no-op: no fetch, no state change.
func (s *Store) GoToPage(ctx context.Context, page int) error {
	s.mu.Lock()
	moved := s.pager.GoTo(page)
	s.mu.Unlock()
	if !moved {
		return nil
	}
	return s.Load(ctx)
}

// NextPage advances one page when the server says one exists.
func (s *Store) NextPage(ctx context.Context) error {
	s.mu.Lock()
	moved := s.pager.Next()
	s.mu.Unlock()
	if !moved {
		return nil
	}
	return s.Load(ctx)
}

// PrevPage goes back one page when the server says one exists.
func (s *Store) PrevPage(ctx context.Context) error {
	s.mu.Lock()
	moved := s.pager.Prev()
	s.mu.Unlock()
	if !moved {
		return nil
	}
	return s.Load(ctx)
}

// SaveLocal stages a record edit purely in memory; nothing is sent to the
// backend. With editIndex < 0 the record is prepended under a fresh opaque
// id; otherwise the row at that index is replaced by shallow-merging the new
// fields over the old. These rows are drafts, not yet synced — do not add a
// network call here without changing the contract.
func (s *Store) SaveLocal(record api.Chunk, editIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if editIndex < 0 {
		if record.Additional.ID == "" {
			record.Additional.ID = uuid.NewString()
		}
		s.rows = append([]api.Chunk{record}, s.rows...)
		return
	}
	if editIndex >= len(s.rows) {
		return
	}
	s.rows[editIndex] = mergeChunk(s.rows[editIndex], record)
}

// mergeChunk overlays the non-zero fields of next onto prev.
func mergeChunk(prev, next api.Chunk) api.Chunk {
	merged := prev
	if next.SourceID != "" {
		merged.SourceID = next.SourceID
	}
	if next.Title != "" {
		merged.Title = next.Title
	}
	if next.Author != "" {
		merged.Author = next.Author
	}
	if next.Type != "" {
		merged.Type = next.Type
	}
	if next.Tier != 0 {
		merged.Tier = next.Tier
	}
	if next.Seq != 0 {
		merged.Seq = next.Seq
	}
	if next.Content != "" {
		merged.Content = next.Content
	}
	if next.Chapter != "" {
		merged.Chapter = next.Chapter
	}
	if next.SourceName != "" {
		merged.SourceName = next.SourceName
	}
	if next.PublicationDate != "" {
		merged.PublicationDate = next.PublicationDate
	}
	if next.ISBN != "" {
		merged.ISBN = next.ISBN
	}
	if next.DomainRefs != nil {
		merged.DomainRefs = next.DomainRefs
	}
	if next.Tags != nil {
		merged.Tags = next.Tags
	}
	return merged
}

// SaveRemote patches a specialized record (book, article, context, domain)
// and reloads the current page from the server. The backend may reprocess the
// record asynchronously, so the visible row must reflect server truth, never
// the optimistic edit.
func (s *Store) SaveRemote(ctx context.Context, kind api.SourceKind, id string, fields map[string]any) (*api.IngestAck, error) {
	ack, err := s.backend.Update(ctx, kind, id, fields)
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return ack, fmt.Errorf("reload after update: %w", err)
	}
	return ack, nil
}

// Delete removes a single record after confirmation. On success the row is
// dropped from the cached page immediately, without a reload — a delete has
// no asynchronous side effect to reconcile. On failure local state is left
// untouched. A second delete for the same row while one is outstanding is
// suppressed.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.deleting[id] {
		s.mu.Unlock()
		return nil
	}
	s.deleting[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
	}()

	ok, err := s.confirm.Confirm(ctx, fmt.Sprintf("Delete source record %s?", id))
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return ErrDeclined
	}

	if err := s.backend.DeleteChunk(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	s.mu.Lock()
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.Additional.ID != id {
			kept = append(kept, row)
		}
	}
	s.rows = kept
	s.mu.Unlock()
	return nil
}

// PrefixError records a failed prefix within a bulk delete.
type PrefixError struct {
	Prefix string
	Err    error
}

// BulkResult summarizes a bulk delete-by-prefix run.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []PrefixError
}

// DeleteByPrefixes deletes every record matching each prefix, sequentially so
// the success/error report stays in submission order. All prefixes are
// attempted even when earlier ones fail, then the page is reloaded exactly
// once regardless of partial failure.
func (s *Store) DeleteByPrefixes(ctx context.Context, prefixes []string) (BulkResult, error) {
	var result BulkResult
	if len(prefixes) == 0 {
		return result, nil
	}

	ok, err := s.confirm.Confirm(ctx,
		fmt.Sprintf("Delete ALL records with source id prefixes [%s]?", strings.Join(prefixes, ", ")))
	if err != nil {
		return result, fmt.Errorf("confirm bulk delete: %w", err)
	}
	if !ok {
		return result, ErrDeclined
	}

	for _, prefix := range prefixes {
		if err := s.backend.DeleteByPrefix(ctx, prefix); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, PrefixError{Prefix: prefix, Err: err})
			s.logger.Warn("bulk delete prefix failed", "prefix", prefix, "error", err)
			continue
		}
		result.Succeeded++
	}

	if err := s.Load(ctx); err != nil {
		return result, fmt.Errorf("reload after bulk delete: %w", err)
	}
	return result, nil
}
