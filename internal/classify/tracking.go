package classify

import (
	"strings"
	"time"

	"github.com/civicreach/backend/internal/models"
)

// BuildTracking produces the initial complaint status and history scaffold.
// High-severity complaints start In Progress with a work order already noted;
// everything else starts Submitted with the In Progress step pending.
// Timestamps for steps that have not happened yet stay nil.
func BuildTracking(severity models.Severity, now time.Time) (string, []models.HistoryEntry) {
	status := models.IssueSubmitted
	if strings.EqualFold(string(severity), string(models.SeverityHigh)) {
		status = models.IssueInProgress
	}

	submitted := now
	history := []models.HistoryEntry{
		{Status: models.IssueSubmitted, Timestamp: &submitted, Note: "Complaint recorded and routed to control center."},
	}

	if status == models.IssueInProgress {
		started := now.Add(30 * time.Minute)
		history = append(history, models.HistoryEntry{Status: models.IssueInProgress, Timestamp: &started, Note: "Work order issued to field response unit."})
	} else {
		history = append(history, models.HistoryEntry{Status: models.IssueInProgress, Timestamp: nil, Note: "Awaiting crew assignment based on workload."})
	}

	history = append(history, models.HistoryEntry{Status: models.IssueResolved, Timestamp: nil, Note: "Resolution pending verification visit."})
	return status, history
}
