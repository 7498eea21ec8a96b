package pipeline

import "jobpost-engine/internal/domain"

// FilterByType keeps only posts whose content type is in allow. An empty
// allow list keeps everything.
func FilterByType(posts []domain.JobPost, allow []domain.ContentType) []domain.JobPost {
	if len(allow) == 0 {
		return posts
	}
	allowed := make(map[domain.ContentType]bool, len(allow))
	for _, t := range allow {
		allowed[t] = true
	}
	out := make([]domain.JobPost, 0, len(posts))
	for _, p := range posts {
		if allowed[p.ContentType] {
			out = append(out, p)
		}
	}
	return out
}
