package pipeline

import (
	"time"

	"jobpost-engine/internal/domain"
	"jobpost-engine/internal/logstore"
	"jobpost-engine/internal/wordpress"
)

// Normalize merges one raw record with its enrichment result into the
// canonical entity. Pure apart from the "now" default for broken timestamps.
func Normalize(rec logstore.RawRecord, res wordpress.Result) domain.JobPost {
	return normalizeAt(rec, res, time.Now().UTC())
}

func normalizeAt(rec logstore.RawRecord, res wordpress.Result, now time.Time) domain.JobPost {
	start := now
	if rec.StartTime.Set {
		start = rec.StartTime.Time
	}
	finish := now
	if rec.FinishedTime.Set {
		finish = rec.FinishedTime.Time
	}

	title := res.Title
	if title == "" {
		title = "Post " + shortID(rec.ID.Value)
	}

	company := res.CompanyName
	if company == "" {
		company = domain.CompanyUnknown
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = domain.ContentTypePost
	}

	status := domain.StatusSuccess
	detail := res.ErrorDetail
	if err := rec.Validate(); err != nil {
		status = domain.StatusError
		if detail == "" {
			detail = err.Error()
		}
	} else if res.ErrorDetail != "" {
		status = domain.StatusError
	}

	return domain.JobPost{
		ID:              rec.ID.Value,
		URL:             rec.URL,
		StartTime:       start,
		FinishedTime:    finish,
		DurationMinutes: domain.Minutes(start, finish),
		Title:           title,
		ImageURL:        res.ImageURL,
		ImageAlt:        res.ImageAlt,
		Status:          status,
		ErrorDetail:     detail,
		ContentType:     contentType,
		CompanyName:     company,
	}
}

// shortID keeps fallback titles readable: the last 6 characters of a Mongo
// object ID are the distinguishing ones.
func shortID(id string) string {
	if id == "" {
		return "unknown"
	}
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
