package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/domain"
	"jobpost-engine/internal/logstore"
	"jobpost-engine/internal/pipeline"
	"jobpost-engine/internal/wordpress"
)

type stubSource struct {
	records []logstore.RawRecord
	err     error
}

func (s stubSource) FetchRawRecords(ctx context.Context) ([]logstore.RawRecord, error) {
	return s.records, s.err
}

type stubMetadata struct{}

func (stubMetadata) Enrich(ctx context.Context, url string) wordpress.Result {
	return wordpress.Result{
		Title:       "T",
		ContentType: domain.ContentTypePost,
		CompanyName: domain.CompanyUnknown,
	}
}

func testRecords(t *testing.T, raw string) []logstore.RawRecord {
	t.Helper()
	var records []logstore.RawRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	return records
}

func newPostsHandler(source pipeline.RecordSource) PostsHandler {
	var cfgVal atomic.Value
	cfg := config.Config{}
	cfg.Pipeline.DefaultPageSize = 10
	cfgVal.Store(cfg)
	return PostsHandler{
		CfgVal: &cfgVal,
		BuildPipeline: func(cfg config.Config) *pipeline.Pipeline {
			return pipeline.New(source, stubMetadata{}, pipeline.Config{}, zerolog.Nop())
		},
		Log: zerolog.Nop(),
	}
}

func TestPostsList_ServesAPage(t *testing.T) {
	h := newPostsHandler(stubSource{records: testRecords(t, `[
		{"_id": "a", "url": "https://x/?p=1", "startTime": "2024-01-01T00:00:00Z"},
		{"_id": "b", "url": "https://x/?p=2", "startTime": "2024-01-02T00:00:00Z"},
		{"_id": "c", "url": "https://x/?p=3", "startTime": "2024-01-03T00:00:00Z"}
	]`)})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/posts?page=1&page_size=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.Page
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalCount != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].ID != "c" {
		t.Fatalf("expected newest first, got %s", page.Items[0].ID)
	}
}

func TestPostsList_CoercesBadPagingParams(t *testing.T) {
	h := newPostsHandler(stubSource{records: testRecords(t, `[
		{"_id": "a", "url": "https://x/?p=1", "startTime": "2024-01-01T00:00:00Z"}
	]`)})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/posts?page=zero&page_size=-3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var page domain.Page
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Page != 1 || page.PageSize != 10 {
		t.Fatalf("bad params must fall back to defaults, got %d/%d", page.Page, page.PageSize)
	}
}

func TestPostsList_MapsFetchErrors(t *testing.T) {
	h := newPostsHandler(stubSource{err: &logstore.FetchError{Kind: logstore.KindInvalidShape}})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var apiErr APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if apiErr.Error.Code != "invalid_shape" {
		t.Fatalf("unexpected error code %q", apiErr.Error.Code)
	}
}

func TestPostsAll_ReturnsFullSet(t *testing.T) {
	h := newPostsHandler(stubSource{records: testRecords(t, `[
		{"_id": "a", "url": "https://x/?p=1", "startTime": "2024-01-01T00:00:00Z"},
		{"_id": "b", "url": "https://x/?p=2", "startTime": "2024-01-02T00:00:00Z"}
	]`)})

	rec := httptest.NewRecorder()
	h.All(rec, httptest.NewRequest(http.MethodGet, "/posts/all", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var posts []domain.JobPost
	if err := json.NewDecoder(rec.Body).Decode(&posts); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
}

func TestMethodMux_RejectsUnknownMethod(t *testing.T) {
	mux := methodMux(map[string]http.HandlerFunc{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {},
	})
	rec := httptest.NewRecorder()
	mux(rec, httptest.NewRequest(http.MethodPost, "/posts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestIntParam(t *testing.T) {
	cases := []struct {
		raw  string
		def  int
		want int
	}{
		{"", 5, 5},
		{"3", 5, 3},
		{"0", 5, 5},
		{"-2", 5, 5},
		{"abc", 5, 5},
	}
	for _, tc := range cases {
		if got := intParam(tc.raw, tc.def); got != tc.want {
			t.Errorf("intParam(%q, %d) = %d, want %d", tc.raw, tc.def, got, tc.want)
		}
	}
}
