package search

import (
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

// ComputeStats tallies results per conversation, model and role. total is the
// match count before truncation. Empty models and roles (title hits) are not counted.
func ComputeStats(results []*models.SearchResult, total int, tokens []string, elapsed time.Duration) *models.SearchStats {
	stats := &models.SearchStats{
		TotalResults:   total,
		SearchTime:     elapsed,
		Query:          tokens,
		ResultsByChat:  make(map[string]int),
		ResultsByModel: make(map[string]int),
		ResultsByRole:  make(map[string]int),
	}
	if stats.Query == nil {
		stats.Query = []string{}
	}
	for _, r := range results {
		if r.Conversation != nil {
			stats.ResultsByChat[r.Conversation.ID]++
			if r.Conversation.Model != "" {
				stats.ResultsByModel[r.Conversation.Model]++
			}
		}
		if r.Subject.Message != nil && r.Subject.Message.Role != "" {
			stats.ResultsByRole[r.Subject.Message.Role]++
		}
	}
	return stats
}
