package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jobpost-engine/internal/domain"
	"jobpost-engine/internal/logstore"
	"jobpost-engine/internal/wordpress"
)

// RecordSource delivers the full raw record set for one run.
type RecordSource interface {
	FetchRawRecords(ctx context.Context) ([]logstore.RawRecord, error)
}

// MetadataSource resolves descriptive metadata for one record URL. It must
// absorb its own failures and answer with ErrorDetail set instead.
type MetadataSource interface {
	Enrich(ctx context.Context, url string) wordpress.Result
}

type Config struct {
	// MaxConcurrent caps simultaneous enrichment calls. The upstream
	// system fanned out unbounded; record volumes are small, but a cap
	// keeps outbound connections from piling up.
	MaxConcurrent int
	// TypesAllow, when non-empty, drops posts whose content type is
	// outside the list. Off by default: it is presentation policy, not a
	// pipeline invariant.
	TypesAllow []domain.ContentType
}

// Pipeline is stateless per invocation: every call re-fetches, re-enriches,
// and recomputes the full set.
type Pipeline struct {
	source   RecordSource
	metadata MetadataSource
	cfg      Config
	log      zerolog.Logger
}

func New(source RecordSource, metadata MetadataSource, cfg Config, log zerolog.Logger) *Pipeline {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	return &Pipeline{
		source:   source,
		metadata: metadata,
		cfg:      cfg,
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// GetAllEnrichedPosts runs the whole pipeline and returns the full sorted
// set. The only hard error is failing to fetch the raw record list; every
// per-record failure is folded into a status=error entity.
func (p *Pipeline) GetAllEnrichedPosts(ctx context.Context) ([]domain.JobPost, error) {
	records, err := p.source.FetchRawRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch raw records: %w", err)
	}

	posts := p.enrichAll(ctx, records)
	if len(p.cfg.TypesAllow) > 0 {
		posts = FilterByType(posts, p.cfg.TypesAllow)
	}
	sortByStartDesc(posts)

	errored := 0
	for _, post := range posts {
		if post.Status == domain.StatusError {
			errored++
		}
	}
	p.log.Info().
		Int("records", len(records)).
		Int("posts", len(posts)).
		Int("errored", errored).
		Msg("pipeline run complete")
	return posts, nil
}

// GetPaginatedPosts returns one page of the sorted set.
func (p *Pipeline) GetPaginatedPosts(ctx context.Context, page, pageSize int) (domain.Page, error) {
	posts, err := p.GetAllEnrichedPosts(ctx)
	if err != nil {
		return domain.Page{}, err
	}
	return Paginate(posts, page, pageSize), nil
}

// enrichAll fans out one enrichment call per record and joins on all of them.
// Output cardinality always equals input cardinality: each goroutine writes
// its own slice slot, and a failed branch still yields an entity.
func (p *Pipeline) enrichAll(ctx context.Context, records []logstore.RawRecord) []domain.JobPost {
	posts := make([]domain.JobPost, len(records))
	now := time.Now().UTC()

	var g errgroup.Group
	g.SetLimit(p.cfg.MaxConcurrent)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := rec.Validate(); err != nil {
				posts[i] = normalizeAt(rec, wordpress.Result{
					Title:       "",
					ContentType: domain.ContentTypePost,
					CompanyName: domain.CompanyUnknown,
					ErrorDetail: err.Error(),
				}, now)
				return nil
			}
			res := p.metadata.Enrich(ctx, rec.URL)
			posts[i] = normalizeAt(rec, res, now)
			// never cancel siblings over one record
			return nil
		})
	}
	_ = g.Wait()

	return posts
}
