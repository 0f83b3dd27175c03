package queue

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/models"
)

// Store is the persistence surface the queue engine needs. *db.Store
// satisfies it.
type Store interface {
	InsertQueueEntry(ctx context.Context, e models.QueueEntry) error
	ActiveQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error)
	AllQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error)
	GetIssue(ctx context.Context, complaintID string) (models.Issue, error)
	TransitionComplaint(ctx context.Context, complaintID string, queueStatus models.QueueStatus, issueStatus string, entry models.HistoryEntry) error
	EscalateByComplaint(ctx context.Context, complaintID string) error
	AppendIssueHistory(ctx context.Context, complaintID string, entry models.HistoryEntry) error
}

// Engine maintains the durable priority queue and answers read queries.
type Engine struct {
	Store  Store
	Logger zerolog.Logger
}

func NewEngine(store Store, logger zerolog.Logger) *Engine {
	return &Engine{Store: store, Logger: logger}
}

// NewComplaintID generates a complaint identifier of the form
// CIR-<yyyymmdd>-<nnnn> with the date segment in UTC and a random segment in
// [1000, 9999]. Collisions are possible and not checked; expected volumes
// make that acceptable.
func NewComplaintID() string {
	return fmt.Sprintf("CIR-%s-%d", time.Now().UTC().Format("20060102"), 1000+rand.Intn(9000))
}

// AddToQueue creates a queue entry for a classified issue and returns the
// generated entry id. The issue record itself is never touched. Escalated
// routing decisions enter the queue already in Escalated status.
func (e *Engine) AddToQueue(ctx context.Context, analysis models.IssueAnalysis, priority int, escalated bool, coords *models.Coordinates) (string, error) {
	status := models.QueueStatusQueued
	if escalated {
		status = models.QueueStatusEscalated
	}

	entry := models.QueueEntry{
		ID:           uuid.NewString(),
		ComplaintID:  analysis.ComplaintID,
		Severity:     analysis.Severity,
		Priority:     priority,
		Status:       status,
		DepartmentID: analysis.Routing.Department,
		EnqueuedAt:   time.Now().UTC(),
		Coordinates:  coords,
	}

	if err := e.Store.InsertQueueEntry(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// QueuedIssues returns the active queue in rendered order: filtered to
// Queued/Escalated (optionally by department), sorted escalated-first then
// priority then enqueue time, deduplicated per complaint, enriched with the
// issue analysis and positioned 1-based. Read failures degrade to an empty
// listing rather than an error.
func (e *Engine) QueuedIssues(ctx context.Context, departmentID string) []models.QueuedIssue {
	entries, err := e.Store.ActiveQueueEntries(ctx, departmentID)
	if err != nil {
		e.Logger.Error().Err(err).Msg("queue listing read failed")
		return []models.QueuedIssue{}
	}

	// Point lookups per entry; a dangling or unclassified issue reference is
	// a data-quality anomaly, not a request failure, so those rows drop out.
	analyses := make(map[string]*models.IssueAnalysis, len(entries))
	failed := false
	for _, entry := range entries {
		if _, ok := analyses[entry.ComplaintID]; ok {
			continue
		}
		issue, err := e.Store.GetIssue(ctx, entry.ComplaintID)
		if err != nil {
			if db.IsNotFound(err) {
				analyses[entry.ComplaintID] = nil
				continue
			}
			e.Logger.Error().Err(err).Str("complaint_id", entry.ComplaintID).Msg("issue lookup failed")
			failed = true
			break
		}
		analyses[entry.ComplaintID] = issue.Analysis
	}
	if failed {
		return []models.QueuedIssue{}
	}

	return BuildListing(entries, func(complaintID string) *models.IssueAnalysis {
		return analyses[complaintID]
	})
}

// Stats aggregates every queue entry regardless of status. A read failure
// yields nil, which callers must treat as distinct from zeroed stats.
func (e *Engine) Stats(ctx context.Context, departmentID string) *models.QueueStats {
	entries, err := e.Store.AllQueueEntries(ctx, departmentID)
	if err != nil {
		e.Logger.Error().Err(err).Msg("queue stats read failed")
		return nil
	}
	stats := AggregateStats(entries)
	return &stats
}
