package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/logstore"
	"jobpost-engine/internal/pipeline"
)

type PostsHandler struct {
	CfgVal        *atomic.Value
	BuildPipeline func(cfg config.Config) *pipeline.Pipeline
	Log           zerolog.Logger
}

// List serves GET /posts?page=&page_size=. Invalid paging inputs are coerced,
// not rejected; the pipeline clamps them again on its side.
func (h PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)

	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("page_size"), cfg.Pipeline.DefaultPageSize)

	p := h.BuildPipeline(cfg)
	result, err := p.GetPaginatedPosts(r.Context(), page, pageSize)
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// All serves GET /posts/all: the unpaginated set, for callers that filter
// client-side before paginating.
func (h PostsHandler) All(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)

	p := h.BuildPipeline(cfg)
	posts, err := p.GetAllEnrichedPosts(r.Context())
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, posts)
}

func (h PostsHandler) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	h.Log.Error().Err(err).Msg("pipeline run failed")

	var ferr *logstore.FetchError
	if errors.As(err, &ferr) {
		switch ferr.Kind {
		case logstore.KindInvalidShape:
			WriteError(w, r, http.StatusBadGateway, "invalid_shape", "log store returned a malformed record list")
			return
		case logstore.KindUnavailable:
			WriteError(w, r, http.StatusBadGateway, "logstore_unavailable", "log store is unreachable")
			return
		}
	}
	WriteError(w, r, http.StatusInternalServerError, "internal_error", "pipeline run failed")
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
