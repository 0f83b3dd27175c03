package queue

import (
	"sort"

	"github.com/civicreach/backend/internal/models"
)

// statusRank orders Escalated ahead of Queued. Anything else (not expected in
// an active listing) sorts last.
func statusRank(s models.QueueStatus) int {
	switch s {
	case models.QueueStatusEscalated:
		return 0
	case models.QueueStatusQueued:
		return 1
	default:
		return 2
	}
}

// SortEntries returns entries ordered escalated-first, then priority
// ascending, then enqueue time ascending (FIFO tie-break). The input slice is
// not modified.
func SortEntries(entries []models.QueueEntry) []models.QueueEntry {
	sorted := make([]models.QueueEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := statusRank(sorted[i].Status), statusRank(sorted[j].Status)
		if ri != rj {
			return ri < rj
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].EnqueuedAt.Before(sorted[j].EnqueuedAt)
	})
	return sorted
}

// listingRow is the tagged join result for one queue entry: either an
// enriched issue or a miss (dangling reference, malformed payload, or a
// duplicate complaint id already emitted).
type listingRow struct {
	hit   bool
	issue models.QueuedIssue
}

// joinEntries walks sorted entries, keeps the first row per complaint id and
// joins each against its issue analysis. Misses stay in the result as
// explicit non-hits so the drop policy is a visible filtering step.
func joinEntries(sorted []models.QueueEntry, lookup func(complaintID string) *models.IssueAnalysis) []listingRow {
	rows := make([]listingRow, 0, len(sorted))
	seen := make(map[string]struct{}, len(sorted))

	for _, e := range sorted {
		if _, dup := seen[e.ComplaintID]; dup {
			rows = append(rows, listingRow{})
			continue
		}

		analysis := lookup(e.ComplaintID)
		if analysis == nil {
			rows = append(rows, listingRow{})
			continue
		}

		seen[e.ComplaintID] = struct{}{}
		rows = append(rows, listingRow{
			hit: true,
			issue: models.QueuedIssue{
				IssueAnalysis: *analysis,
				EnqueuedAt:    e.EnqueuedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
				Priority:      e.Priority,
				Escalated:     e.Status == models.QueueStatusEscalated,
			},
		})
	}
	return rows
}

// BuildListing sorts, dedups and enriches queue entries, then assigns
// contiguous 1-based positions to the surviving rows.
func BuildListing(entries []models.QueueEntry, lookup func(complaintID string) *models.IssueAnalysis) []models.QueuedIssue {
	rows := joinEntries(SortEntries(entries), lookup)

	issues := make([]models.QueuedIssue, 0, len(rows))
	for _, row := range rows {
		if !row.hit {
			continue
		}
		row.issue.QueuePosition = len(issues) + 1
		issues = append(issues, row.issue)
	}
	return issues
}

// AggregateStats counts entries of every status, bucketing priorities
// 1/2/3 as high/medium/low.
func AggregateStats(entries []models.QueueEntry) models.QueueStats {
	var stats models.QueueStats
	for _, e := range entries {
		stats.Total++
		switch e.Status {
		case models.QueueStatusQueued:
			stats.Queued++
		case models.QueueStatusInProgress:
			stats.InProgress++
		case models.QueueStatusEscalated:
			stats.Escalated++
		case models.QueueStatusResolved:
			stats.Resolved++
		}
		switch e.Priority {
		case 1:
			stats.ByPriority.High++
		case 2:
			stats.ByPriority.Medium++
		case 3:
			stats.ByPriority.Low++
		}
	}
	return stats
}
