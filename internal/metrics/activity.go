package metrics

import (
	"time"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
)

// ActivityStats is a group-by-and-count over the activity log table.
type ActivityStats struct {
	Total    int            `json:"total"`
	Today    int            `json:"today"`
	Last7    int            `json:"last7Days"`
	Last30   int            `json:"last30Days"`
	ByAction map[string]int `json:"byAction"`
	ByModule map[string]int `json:"byModule"`
	ByUser   map[string]int `json:"byUser"`
}

// Activity counts logs created today (calendar day of now, in now's location),
// within the last 7 and 30 days, and breaks all rows down by action, module
// and user.
func Activity(logs []models.ActivityLog, now time.Time) ActivityStats {
	stats := ActivityStats{
		Total:    len(logs),
		ByAction: make(map[string]int),
		ByModule: make(map[string]int),
		ByUser:   make(map[string]int),
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week := now.Add(-7 * day)
	monthAgo := now.Add(-30 * day)

	for _, l := range logs {
		created := l.CreatedAt.In(now.Location())
		if !created.Before(startOfDay) {
			stats.Today++
		}
		if !created.Before(week) {
			stats.Last7++
		}
		if !created.Before(monthAgo) {
			stats.Last30++
		}
		stats.ByAction[l.Action]++
		stats.ByModule[l.Module]++
		stats.ByUser[l.UserID]++
	}

	return stats
}
