package domain

import (
	"math"
	"time"
)

type ContentType string

const (
	ContentTypePost       ContentType = "post"
	ContentTypeJobListing ContentType = "job-listing"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CompanyUnknown is what we show when a post carries no company metadata.
const CompanyUnknown = "Unidentified company"

// JobPost is one publication job merged with the metadata fetched for it.
// Entities are built once per pipeline run and never mutated afterwards.
type JobPost struct {
	ID              string      `json:"id"`
	URL             string      `json:"url"`
	StartTime       time.Time   `json:"startTime"`
	FinishedTime    time.Time   `json:"finishedTime"`
	DurationMinutes int         `json:"durationMinutes"`
	Title           string      `json:"title"`
	ImageURL        string      `json:"imageUrl,omitempty"`
	ImageAlt        string      `json:"imageAlt"`
	Status          Status      `json:"status"`
	ErrorDetail     string      `json:"error"`
	ContentType     ContentType `json:"type"`
	CompanyName     string      `json:"companyName"`
}

// Minutes returns the rounded wall-clock minutes between start and finish.
func Minutes(start, finish time.Time) int {
	return int(math.Round(finish.Sub(start).Minutes()))
}

// Page is one slice of the sorted result set.
type Page struct {
	Items      []JobPost `json:"items"`
	TotalCount int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}
