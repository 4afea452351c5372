// Package api provides the REST client for the GoldCare content backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client talks to the backend's /source routes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend client.
// If baseURL is empty, uses GOLDCARE_API_URL env var or defaults to
// http://localhost:3001. Timeout can be configured via GOLDCARE_CLIENT_TIMEOUT
// (default 30s; search answers can take a while server-side).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("GOLDCARE_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 30 * time.Second
	if t := os.Getenv("GOLDCARE_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// do issues a request and decodes the JSON response into out (when non-nil).
// Non-2xx statuses become *Error; transport failures become *ConnectionError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, resp.Header.Get("Content-Type"), data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// parseError turns a non-2xx response into a structured *Error. JSON bodies
// of the form {error, existing?} are parsed; anything else is kept as text.
func parseError(status int, contentType string, body []byte) error {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/json" {
		var payload struct {
			Error    string          `json:"error"`
			Message  string          `json:"message"`
			Existing json.RawMessage `json:"existing"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			msg := payload.Error
			if msg == "" {
				msg = payload.Message
			}
			if msg != "" {
				return &Error{Status: status, Message: msg, Existing: payload.Existing}
			}
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}

// =============================================================================
// JOB OPERATIONS
// =============================================================================

// ListJobs returns all jobs known to the backend.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var result struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.do(ctx, http.MethodGet, "/source/jobs", nil, &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// GetJob retrieves a job by id. Unknown ids yield a 404 *Error.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, "/source/job/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// QueueStatus returns the global job queue aggregate.
func (c *Client) QueueStatus(ctx context.Context) (*JobQueueStatus, error) {
	var status JobQueueStatus
	if err := c.do(ctx, http.MethodGet, "/source/job-queue/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// =============================================================================
// DOMAIN OPERATIONS
// =============================================================================

// ListDomains returns all moral domains.
// The route spelling is the backend's, not ours.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	var domains []Domain
	if err := c.do(ctx, http.MethodGet, "/source/serach-all-domain", nil, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// GetMoralDomain retrieves a domain snapshot by name.
func (c *Client) GetMoralDomain(ctx context.Context, name string) (*Domain, error) {
	var domain Domain
	if err := c.do(ctx, http.MethodGet, "/source/get-moral-domain/"+url.PathEscape(name), nil, &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// Ask posts a domain-scoped question and returns the composed answer.
func (c *Client) Ask(ctx context.Context, req SearchRequest) (*SearchAnswer, error) {
	var answer SearchAnswer
	if err := c.do(ctx, http.MethodPost, "/source/serach-by-domain", req, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// =============================================================================
// INGEST AND UPDATE OPERATIONS
// =============================================================================

// Ingest submits an entity payload for asynchronous ingestion. On a 409-style
// conflict the returned *Error carries the existing record echo.
func (c *Client) Ingest(ctx context.Context, kind SourceKind, payload any) (*IngestAck, error) {
	var ack IngestAck
	if err := c.do(ctx, http.MethodPost, "/source/ingest-"+string(kind), payload, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Update issues a partial update. The backend may asynchronously reprocess
// the record, so callers must reload from the server rather than patch their
// local copy.
func (c *Client) Update(ctx context.Context, kind SourceKind, id string, fields map[string]any) (*IngestAck, error) {
	var ack IngestAck
	path := "/source/update-" + string(kind) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, fields, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// =============================================================================
// CHUNK OPERATIONS
// =============================================================================

// FilterChunks lists chunks matching the filter criteria, one page at a time.
func (c *Client) FilterChunks(ctx context.Context, req FilterRequest) ([]Chunk, Pagination, error) {
	var result struct {
		Chunks struct {
			Data       []Chunk    `json:"data"`
			Pagination Pagination `json:"pagination"`
		} `json:"chunks"`
	}
	if err := c.do(ctx, http.MethodPost, "/source/getall-filter-advanced", req, &result); err != nil {
		return nil, Pagination{}, err
	}
	return result.Chunks.Data, result.Chunks.Pagination, nil
}

// DeleteChunk removes a single chunk by its opaque id.
func (c *Client) DeleteChunk(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/source/delete-by-id-chunk-source/"+url.PathEscape(id), nil, nil)
}

// DeleteByPrefix removes every chunk whose source id starts with prefix.
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) error {
	return c.do(ctx, http.MethodDelete, "/source/delete-all-chunk-source/"+url.PathEscape(prefix), nil, nil)
}

// LastChunkForSource fetches the most recent chunk for a source id, used to
// pre-fill forms. A 404 means "new id" and is informational, not a failure;
// callers check IsNotFound.
func (c *Client) LastChunkForSource(ctx context.Context, sourceID string) (*Chunk, error) {
	var chunk Chunk
	if err := c.do(ctx, http.MethodGet, "/source/get-last-chunk-source/"+url.PathEscape(sourceID), nil, &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// ChunkByID retrieves a chunk snapshot by its opaque id.
func (c *Client) ChunkByID(ctx context.Context, id string) (*Chunk, error) {
	var chunk Chunk
	if err := c.do(ctx, http.MethodGet, "/source/get-chunk-by-id/"+url.PathEscape(id), nil, &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// SourceByID retrieves the document-store snapshot of a source.
func (c *Client) SourceByID(ctx context.Context, id string) (map[string]any, error) {
	var doc map[string]any
	if err := c.do(ctx, http.MethodGet, "/source/get-mongoose-source-by-id/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
