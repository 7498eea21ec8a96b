package httpapi

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"jobpost-engine/internal/config"
	"jobpost-engine/internal/events"
	"jobpost-engine/internal/pipeline"
)

// Deps is everything the handlers need, wired up by main.
type Deps struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// BuildPipeline constructs a pipeline from the current config so a
	// config save takes effect on the next run without a restart.
	BuildPipeline func(cfg config.Config) *pipeline.Pipeline

	Hub           *events.Hub
	RefreshStatus *atomic.Value // stores httpapi.RefreshStatus
	Log           zerolog.Logger
}
