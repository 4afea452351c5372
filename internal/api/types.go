package api

import (
	"encoding/json"
	"time"
)

// Job statuses as reported by the backend. Transitions are forward-only:
// pending -> processing -> completed | failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Source kinds accepted by the ingest and update routes.
type SourceKind string

const (
	KindBook        SourceKind = "book"
	KindArticle     SourceKind = "article"
	KindContext     SourceKind = "context"
	KindMoralDomain SourceKind = "moral-domain"
)

// Job is an asynchronous server-side ingestion or update task. The client
// only ever reads jobs; it polls them until they reach a terminal status.
type Job struct {
	JobID       string     `json:"jobId"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Title       string     `json:"title,omitempty"`
	Author      string     `json:"author,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      *JobResult `json:"result,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// JobResult is free-form completion metadata, present once a job completes.
type JobResult struct {
	Success         bool   `json:"success"`
	ChunksProcessed int    `json:"chunks_processed"`
	Book            string `json:"book,omitempty"`
	Author          string `json:"author,omitempty"`
	Tier            int    `json:"tier,omitempty"`
	ResumedFromSeq  int    `json:"resumed_from_seq,omitempty"`
	SourceIDPrefix  string `json:"sourceIdPrefix,omitempty"`
}

// JobQueueStatus is the global queue aggregate, polled independently of any
// specific job.
type JobQueueStatus struct {
	IsProcessing bool `json:"isProcessing"`
	QueueLength  int  `json:"queueLength"`
}

// Additional carries the backend's opaque object identifier.
type Additional struct {
	ID string `json:"id"`
}

// DomainRef links a chunk to a moral domain by opaque id.
type DomainRef struct {
	ID string `json:"id"`
}

// Domain is a named moral/topical category that sources are tagged with.
type Domain struct {
	Additional     Additional `json:"_additional"`
	Domain         string     `json:"domain"`
	Priority       string     `json:"priority"`
	AnchorBehavior string     `json:"anchor_behavior,omitempty"`
}

// Chunk is a server-stored ingested unit (book, article, or context) as
// returned by the listing and lookup endpoints.
type Chunk struct {
	Additional      Additional  `json:"_additional"`
	SourceID        string      `json:"sourceId"`
	Title           string      `json:"title"`
	Author          string      `json:"author,omitempty"`
	Type            string      `json:"type"`
	Tier            int         `json:"tier"`
	Seq             int         `json:"seq"`
	Content         string      `json:"content,omitempty"`
	Chapter         string      `json:"chapter,omitempty"`
	SourceName      string      `json:"source_name,omitempty"`
	PublicationDate string      `json:"publication_date,omitempty"`
	ISBN            string      `json:"isbn,omitempty"`
	DomainRefs      []DomainRef `json:"domain_ref,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
}

// Pagination mirrors the server's pagination object. The server is the sole
// source of truth for the derived booleans; the client never recomputes them.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// FilterRequest is the body of the advanced listing endpoint.
type FilterRequest struct {
	Types            []string `json:"types"`
	Tiers            []int    `json:"tiers"`
	SourceIDPrefixes []string `json:"sourceIdPrefixes"`
	Page             int      `json:"page"`
	Limit            int      `json:"limit"`
}

// IngestAck acknowledges an accepted ingestion or update request.
type IngestAck struct {
	JobID                   string `json:"jobId"`
	Status                  string `json:"status"`
	EstimatedProcessingTime string `json:"estimatedProcessingTime,omitempty"`
}

// SearchRequest is the body of the domain-scoped question endpoint.
type SearchRequest struct {
	Question             string `json:"question"`
	Domain               string `json:"domain,omitempty"`
	Tier                 int    `json:"tier"`
	Instructions         string `json:"instructions"`
	MoralFoundation      string `json:"moral_foundation"`
	ResponseRequirements string `json:"responseRequirements,omitempty"`
}

// SourceRef identifies a source cited by a search answer.
type SourceRef struct {
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
}

// SearchSources groups cited sources by kind.
type SearchSources struct {
	Books    []SourceRef `json:"books"`
	Articles []SourceRef `json:"articles"`
	Contexts []SourceRef `json:"contexts"`
}

// SearchAnswer is the payload returned by the search endpoint.
type SearchAnswer struct {
	Answer        string        `json:"answer"`
	Domain        string        `json:"domain"`
	TiersSearched json.Number   `json:"tiers_searched,omitempty"`
	TotalSources  int           `json:"total_sources"`
	Sources       SearchSources `json:"sources"`
	Prompt        string        `json:"prompt,omitempty"`
}
