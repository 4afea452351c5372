package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "json error field",
			status:      422,
			contentType: "application/json",
			body:        `{"error":"tier must be between 1 and 3"}`,
			wantMessage: "tier must be between 1 and 3",
		},
		{
			name:        "json message field",
			status:      400,
			contentType: "application/json; charset=utf-8",
			body:        `{"message":"missing sourceId"}`,
			wantMessage: "missing sourceId",
		},
		{
			name:        "plain text body",
			status:      500,
			contentType: "text/plain",
			body:        "upstream exploded",
			wantMessage: "upstream exploded",
		},
		{
			name:        "malformed json falls back to text",
			status:      500,
			contentType: "application/json",
			body:        "<html>gateway</html>",
			wantMessage: "<html>gateway</html>",
		},
		{
			name:        "empty body falls back to status text",
			status:      503,
			contentType: "text/plain",
			body:        "",
			wantMessage: "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.ListJobs(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr, "rejections from a reachable server are *Error")
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.False(t, IsUnreachable(err))
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := New(url)
	_, err := client.ListJobs(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnreachable(err), "transport failure must be distinguishable from a rejection")
	assert.False(t, IsNotFound(err))
}

func TestGetJobNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"job not found"}`)
	})

	_, err := client.GetJob(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestIngestConflictCarriesExistingRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/source/ingest-book", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":"source already exists","existing":{"sourceId":"book_004","title":"Old Title"}}`)
	})

	_, err := client.Ingest(context.Background(), KindBook, map[string]any{"sourceId": "book_004"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Conflict())
	require.NotEmpty(t, apiErr.Existing, "the existing record echo is kept for pre-fill")

	var existing struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(apiErr.Existing, &existing))
	assert.Equal(t, "Old Title", existing.Title)
}

func TestListJobs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/source/jobs", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"jobs":[
			{"jobId":"j1","type":"book","status":"processing","title":"T"},
			{"jobId":"j2","type":"article","status":"completed","result":{"success":true,"chunks_processed":12}}
		]}`)
	})

	jobs, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "j1", jobs[0].JobID)
	assert.False(t, jobs[0].Terminal())
	require.NotNil(t, jobs[1].Result)
	assert.Equal(t, 12, jobs[1].Result.ChunksProcessed)
	assert.True(t, jobs[1].Terminal())
}

func TestFilterChunks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/source/getall-filter-advanced", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"types":["book"],"tiers":[1,2],"sourceIdPrefixes":["book_004"],"page":2,"limit":20}`,
			string(body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"chunks":{
			"data":[{"_additional":{"id":"abc"},"sourceId":"book_004_1","title":"Ch 1","type":"book","tier":1,"seq":1}],
			"pagination":{"currentPage":2,"totalPages":5,"totalItems":90,"itemsPerPage":20,"hasNextPage":true,"hasPrevPage":true}
		}}`)
	})

	rows, pagination, err := client.FilterChunks(context.Background(), FilterRequest{
		Types:            []string{"book"},
		Tiers:            []int{1, 2},
		SourceIDPrefixes: []string{"book_004"},
		Page:             2,
		Limit:            20,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "abc", rows[0].Additional.ID)
	assert.Equal(t, "book_004_1", rows[0].SourceID)
	assert.Equal(t, 2, pagination.CurrentPage)
	assert.True(t, pagination.HasNextPage)
}

func TestUpdateSendsPatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/source/update-article/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"jobId":"j9","status":"queued"}`)
	})

	ack, err := client.Update(context.Background(), KindArticle, "abc123", map[string]any{"title": "New"})
	require.NoError(t, err)
	assert.Equal(t, "j9", ack.JobID)
}

func TestDeleteRoutes(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteChunk(context.Background(), "abc"))
	require.NoError(t, client.DeleteByPrefix(context.Background(), "book_004"))
	assert.Equal(t, []string{
		"/source/delete-by-id-chunk-source/abc",
		"/source/delete-all-chunk-source/book_004",
	}, paths)
}

func TestLastChunkForSourceNotFoundIsInformational(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/source/get-last-chunk-source/book_new", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"no chunks for source"}`)
	})

	_, err := client.LastChunkForSource(context.Background(), "book_new")
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "callers treat 404 here as 'new id', not a failure")
}

func TestBaseURLNormalization(t *testing.T) {
	client := New("http://example.test:3001///")
	assert.Equal(t, "http://example.test:3001", client.BaseURL())
}
