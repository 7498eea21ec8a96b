package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"jobpost-engine/internal/domain"
	"jobpost-engine/internal/transport"
)

// Result is the enricher's best-effort answer for one URL. Enrich never
// returns an error value: every failure path comes back as a Result with
// ErrorDetail set, so a bad post can't abort a batch.
type Result struct {
	Title       string
	ImageURL    string
	ImageAlt    string
	ContentType domain.ContentType
	CompanyName string
	ErrorDetail string
}

type Config struct {
	// BaseURL up to and including /wp-json/wp/v2, no trailing slash.
	BaseURL string
	// Freshness is the response-cache window for content lookups.
	Freshness time.Duration
}

type Enricher struct {
	client *transport.Client
	cfg    Config
	log    zerolog.Logger
}

func NewEnricher(client *transport.Client, cfg Config, log zerolog.Logger) *Enricher {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Enricher{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "wordpress").Logger(),
	}
}

var (
	postIDQueryRe = regexp.MustCompile(`[?&]p=(\d+)`)
	postIDPathRe  = regexp.MustCompile(`/(\d+)/?$`)
)

// ExtractPostID pulls the numeric content ID out of the two known URL
// shapes: `?p=<id>` and a trailing `/<id>/` path segment.
func ExtractPostID(rawURL string) string {
	if m := postIDQueryRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := postIDPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

type candidate struct {
	url         string
	contentType domain.ContentType
}

// candidates are ordered job-listing first: most records on this store are
// job listings, so the common case resolves in one call.
func (e *Enricher) candidates(id string) []candidate {
	return []candidate{
		{fmt.Sprintf("%s/job-listings/%s?_embed", e.cfg.BaseURL, id), domain.ContentTypeJobListing},
		{fmt.Sprintf("%s/posts/%s?_embed", e.cfg.BaseURL, id), domain.ContentTypePost},
	}
}

func (e *Enricher) Enrich(ctx context.Context, rawURL string) Result {
	id := ExtractPostID(rawURL)
	if id == "" {
		e.log.Warn().Str("url", rawURL).Msg("could not extract post id")
		return Result{
			Title:       "Post unknown",
			ContentType: domain.ContentTypePost,
			CompanyName: domain.CompanyUnknown,
			ErrorDetail: "Could not extract post ID from URL",
		}
	}

	for _, cand := range e.candidates(id) {
		body, err := e.client.Call(ctx, cand.url, transport.Options{
			Freshness:      e.cfg.Freshness,
			StopOnNotFound: true,
		})
		if err != nil {
			var terr *transport.Error
			if errors.As(err, &terr) && terr.Kind == transport.KindNotFound {
				// fallback signal, not a failure
				continue
			}
			e.log.Warn().Str("endpoint", cand.url).Err(err).Msg("candidate endpoint failed")
			continue
		}
		return e.resultFromPayload(ctx, id, cand.contentType, body)
	}

	e.log.Warn().Str("url", rawURL).Str("post_id", id).Msg("no candidate endpoint answered")
	return Result{
		Title:       "Post " + id,
		ContentType: domain.ContentTypePost,
		CompanyName: domain.CompanyUnknown,
		ErrorDetail: "Could not fetch post from any endpoint",
	}
}

func (e *Enricher) resultFromPayload(ctx context.Context, id string, ct domain.ContentType, body []byte) Result {
	var p postPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return Result{
			Title:       "Post " + id,
			ContentType: ct,
			CompanyName: domain.CompanyUnknown,
			ErrorDetail: "Could not decode post payload: " + err.Error(),
		}
	}

	title := Sanitize(p.Title.Rendered)
	if title == "" {
		title = "Post " + id
	}

	imageURL, imageAlt := e.resolveImage(ctx, p)

	company := strings.TrimSpace(p.Meta.CompanyName)
	if company == "" && p.Embedded != nil {
		company = companyFromTerms(p.Embedded.Terms)
	}
	if company == "" {
		company = domain.CompanyUnknown
	}

	return Result{
		Title:       title,
		ImageURL:    imageURL,
		ImageAlt:    imageAlt,
		ContentType: ct,
		CompanyName: company,
	}
}

// resolveImage tries, in order: embedded featured media, a secondary media
// lookup when only the media ID is present, and finally the first inline
// <img> of the rendered content.
func (e *Enricher) resolveImage(ctx context.Context, p postPayload) (string, string) {
	if p.Embedded != nil && len(p.Embedded.FeaturedMedia) > 0 {
		m := p.Embedded.FeaturedMedia[0]
		if u := m.bestURL(); u != "" {
			return u, m.AltText
		}
	}

	if p.FeaturedMedia != 0 {
		if u, alt, ok := e.fetchMedia(ctx, p.FeaturedMedia); ok {
			return u, alt
		}
	}

	return firstInlineImage(p.Content.Rendered)
}

// fetchMedia is best-effort: a missing media item never fails the post.
func (e *Enricher) fetchMedia(ctx context.Context, mediaID int64) (string, string, bool) {
	url := fmt.Sprintf("%s/media/%d", e.cfg.BaseURL, mediaID)
	body, err := e.client.Call(ctx, url, transport.Options{
		Freshness:      e.cfg.Freshness,
		StopOnNotFound: true,
	})
	if err != nil {
		e.log.Warn().Int64("media_id", mediaID).Err(err).Msg("media lookup failed")
		return "", "", false
	}

	var m mediaPayload
	if err := json.Unmarshal(body, &m); err != nil {
		return "", "", false
	}
	u := m.bestURL()
	return u, m.AltText, u != ""
}

func companyFromTerms(groups [][]termPayload) string {
	for _, group := range groups {
		for _, t := range group {
			if t.Taxonomy == "company" && strings.TrimSpace(t.Name) != "" {
				return strings.TrimSpace(t.Name)
			}
		}
	}
	return ""
}

func firstInlineImage(rendered string) (string, string) {
	if strings.TrimSpace(rendered) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return "", ""
	}
	img := doc.Find("img").First()
	src, _ := img.Attr("src")
	alt, _ := img.Attr("alt")
	return src, alt
}
