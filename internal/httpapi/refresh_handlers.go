package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/events"
	"jobpost-engine/internal/pipeline"
)

type RefreshHandler struct {
	CfgVal        *atomic.Value
	RefreshStatus *atomic.Value // stores RefreshStatus
	BuildPipeline func(cfg config.Config) *pipeline.Pipeline
	Hub           *events.Hub
	Log           zerolog.Logger
}

func (h RefreshHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.RefreshStatus.Load().(RefreshStatus)
	writeJSON(w, st)
}

// Run kicks off a background pipeline run. A run warms the transport cache
// and tells SSE subscribers to re-pull, so the dashboard's refresh button is
// cheap to press.
func (h RefreshHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.RefreshStatus.Load().(RefreshStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.RefreshStatus.Store(RefreshStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	})

	reqID := RequestIDFrom(r.Context())

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		p := h.BuildPipeline(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		posts, err := p.GetAllEnrichedPosts(ctx)

		now := time.Now().Format(time.RFC3339)
		next := h.RefreshStatus.Load().(RefreshStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastCount = len(posts)
		if err != nil {
			next.LastError = err.Error()
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeRefreshFailed, 1, map[string]any{"error": err.Error()}))
		} else {
			next.LastError = ""
			next.LastOkAt = now
			h.Hub.Publish(events.MakeEvent(reqID, events.TypePostsRefreshed, 1, map[string]any{"count": len(posts)}))
		}
		h.RefreshStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
