package pipeline

import (
	"sort"

	"jobpost-engine/internal/domain"
)

// Paginate sorts by start time descending (stable, so ties keep input order)
// and slices the requested page. Invalid page/pageSize are clamped to 1, and
// an out-of-range page yields empty items with the totals still correct.
func Paginate(posts []domain.JobPost, page, pageSize int) domain.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	sorted := make([]domain.JobPost, len(posts))
	copy(sorted, posts)
	sortByStartDesc(sorted)

	total := len(sorted)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return domain.Page{
		Items:      sorted[start:end],
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func sortByStartDesc(posts []domain.JobPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].StartTime.After(posts[j].StartTime)
	})
}
