package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/models"
)

// Queue transition actions accepted at the boundary.
const (
	ActionStart    = "start"
	ActionResolve  = "resolve"
	ActionEscalate = "escalate"
)

// StatusController applies lifecycle transitions to queue entries, located by
// complaint id. The state machine is deliberately permissive: transitions are
// not validated against the current status, and an unknown complaint id is a
// silent no-op.
type StatusController struct {
	Store  Store
	Logger zerolog.Logger
}

func NewStatusController(store Store, logger zerolog.Logger) *StatusController {
	return &StatusController{Store: store, Logger: logger}
}

// Apply dispatches a named action. Unknown actions are rejected here as well
// as at the HTTP boundary.
func (s *StatusController) Apply(ctx context.Context, complaintID, action string) error {
	switch action {
	case ActionStart:
		return s.Start(ctx, complaintID)
	case ActionResolve:
		return s.Resolve(ctx, complaintID)
	case ActionEscalate:
		return s.Escalate(ctx, complaintID)
	default:
		return fmt.Errorf("unknown queue action %q", action)
	}
}

// Start moves the complaint's queue entry to InProgress and records the
// transition on the issue. Both writes commit or roll back together.
func (s *StatusController) Start(ctx context.Context, complaintID string) error {
	return s.Store.TransitionComplaint(ctx, complaintID, models.QueueStatusInProgress, models.IssueInProgress,
		historyEntry(models.IssueInProgress, "Work order issued to field response unit."))
}

// Resolve moves the complaint's queue entry to its terminal Resolved status.
func (s *StatusController) Resolve(ctx context.Context, complaintID string) error {
	return s.Store.TransitionComplaint(ctx, complaintID, models.QueueStatusResolved, models.IssueResolved,
		historyEntry(models.IssueResolved, "Resolution confirmed by responding department."))
}

// Escalate promotes the entry one priority step (floored at priority 1) and
// marks it Escalated. Escalating a priority-1 entry keeps it at 1.
func (s *StatusController) Escalate(ctx context.Context, complaintID string) error {
	if err := s.Store.EscalateByComplaint(ctx, complaintID); err != nil {
		return err
	}
	return s.Store.AppendIssueHistory(ctx, complaintID, historyEntry(models.IssueInProgress, "Complaint escalated for priority response."))
}

func historyEntry(status, note string) models.HistoryEntry {
	now := time.Now().UTC()
	return models.HistoryEntry{Status: status, Timestamp: &now, Note: note}
}
