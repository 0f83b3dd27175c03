package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/models"
)

type fakeStore struct {
	entries   []models.QueueEntry
	activeErr error
	allErr    error

	issues   map[string]models.Issue
	issueErr error

	inserted      []models.QueueEntry
	insertErr     error
	transitionErr error
	statusUpdates map[string]models.QueueStatus
	escalated     []string
	issueStatuses map[string]string
	history       map[string][]models.HistoryEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		issues:        map[string]models.Issue{},
		statusUpdates: map[string]models.QueueStatus{},
		issueStatuses: map[string]string{},
		history:       map[string][]models.HistoryEntry{},
	}
}

func (f *fakeStore) InsertQueueEntry(ctx context.Context, e models.QueueEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, e)
	return nil
}

func (f *fakeStore) ActiveQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	var out []models.QueueEntry
	for _, e := range f.entries {
		if e.Status != models.QueueStatusQueued && e.Status != models.QueueStatusEscalated {
			continue
		}
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) AllQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	var out []models.QueueEntry
	for _, e := range f.entries {
		if departmentID != "" && e.DepartmentID != departmentID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) GetIssue(ctx context.Context, complaintID string) (models.Issue, error) {
	if f.issueErr != nil {
		return models.Issue{}, f.issueErr
	}
	issue, ok := f.issues[complaintID]
	if !ok {
		return models.Issue{}, db.ErrNotFound
	}
	return issue, nil
}

func (f *fakeStore) TransitionComplaint(ctx context.Context, complaintID string, queueStatus models.QueueStatus, issueStatus string, entry models.HistoryEntry) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	f.statusUpdates[complaintID] = queueStatus
	f.issueStatuses[complaintID] = issueStatus
	f.history[complaintID] = append(f.history[complaintID], entry)
	return nil
}

func (f *fakeStore) EscalateByComplaint(ctx context.Context, complaintID string) error {
	f.escalated = append(f.escalated, complaintID)
	return nil
}

func (f *fakeStore) AppendIssueHistory(ctx context.Context, complaintID string, entry models.HistoryEntry) error {
	f.history[complaintID] = append(f.history[complaintID], entry)
	return nil
}

func (f *fakeStore) addIssue(complaintID string) {
	f.issues[complaintID] = models.Issue{
		ComplaintID: complaintID,
		Analysis:    &models.IssueAnalysis{ComplaintID: complaintID, IssueType: "Pothole", Severity: models.SeverityMedium},
	}
}

func testAnalysis(complaintID string) models.IssueAnalysis {
	return models.IssueAnalysis{
		ComplaintID: complaintID,
		IssueType:   "Pothole on service road",
		Severity:    models.SeverityHigh,
		Routing:     models.IssueRouting{Department: "Municipal Roads Department", Priority: 1, Escalated: true},
	}
}

func TestAddToQueueEscalatedEntersEscalated(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zerolog.Nop())

	id, err := engine.AddToQueue(context.Background(), testAnalysis("CIR-20260301-1234"), 1, true, nil)
	if err != nil {
		t.Fatalf("add to queue: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated entry id")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 inserted entry, got %d", len(store.inserted))
	}
	e := store.inserted[0]
	if e.Status != models.QueueStatusEscalated {
		t.Fatalf("escalated flag must enqueue as Escalated, got %s", e.Status)
	}
	if e.DepartmentID != "Municipal Roads Department" {
		t.Fatalf("department must come from the routing decision, got %s", e.DepartmentID)
	}
	if e.EnqueuedAt.IsZero() {
		t.Fatalf("enqueuedAt must be set")
	}
}

func TestAddToQueueDefaultEntersQueued(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zerolog.Nop())

	if _, err := engine.AddToQueue(context.Background(), testAnalysis("CIR-20260301-5678"), 2, false, nil); err != nil {
		t.Fatalf("add to queue: %v", err)
	}
	if store.inserted[0].Status != models.QueueStatusQueued {
		t.Fatalf("expected Queued status, got %s", store.inserted[0].Status)
	}
}

func TestAddToQueuePropagatesWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("write failed")
	engine := NewEngine(store, zerolog.Nop())

	if _, err := engine.AddToQueue(context.Background(), testAnalysis("CIR-20260301-1111"), 2, false, nil); err == nil {
		t.Fatalf("mutation failures must propagate")
	}
}

func TestQueuedIssuesEmptyOnReadFailure(t *testing.T) {
	store := newFakeStore()
	store.activeErr = errors.New("connection reset")
	engine := NewEngine(store, zerolog.Nop())

	issues := engine.QueuedIssues(context.Background(), "")
	if issues == nil || len(issues) != 0 {
		t.Fatalf("listing failure must degrade to an empty listing, got %v", issues)
	}
}

func TestQueuedIssuesSkipsDanglingReference(t *testing.T) {
	base := time.Now().UTC()
	store := newFakeStore()
	store.addIssue("c1")
	store.entries = []models.QueueEntry{
		entry("a", "c1", models.QueueStatusQueued, 2, base),
		entry("b", "gone", models.QueueStatusQueued, 1, base),
	}
	engine := NewEngine(store, zerolog.Nop())

	issues := engine.QueuedIssues(context.Background(), "")
	if len(issues) != 1 || issues[0].ComplaintID != "c1" {
		t.Fatalf("dangling reference must be skipped silently, got %v", issues)
	}
	if issues[0].QueuePosition != 1 {
		t.Fatalf("positions must be reassigned after skips, got %d", issues[0].QueuePosition)
	}
}

func TestQueuedIssuesResubmissionYieldsOneEntry(t *testing.T) {
	base := time.Now().UTC()
	store := newFakeStore()
	store.addIssue("c1")
	store.entries = []models.QueueEntry{
		entry("a", "c1", models.QueueStatusQueued, 2, base),
		entry("b", "c1", models.QueueStatusQueued, 2, base.Add(time.Minute)),
	}
	engine := NewEngine(store, zerolog.Nop())

	issues := engine.QueuedIssues(context.Background(), "")
	if len(issues) != 1 {
		t.Fatalf("expected exactly one entry per complaint, got %d", len(issues))
	}
}

func TestQueuedIssuesUnclassifiedIssueSkipped(t *testing.T) {
	base := time.Now().UTC()
	store := newFakeStore()
	store.issues["c1"] = models.Issue{ComplaintID: "c1", Analysis: nil}
	store.entries = []models.QueueEntry{entry("a", "c1", models.QueueStatusQueued, 2, base)}
	engine := NewEngine(store, zerolog.Nop())

	issues := engine.QueuedIssues(context.Background(), "")
	if len(issues) != 0 {
		t.Fatalf("issues without a classification payload must be skipped, got %d", len(issues))
	}
}

func TestQueuedIssuesDepartmentFilter(t *testing.T) {
	base := time.Now().UTC()
	store := newFakeStore()
	store.addIssue("c1")
	store.addIssue("c2")
	e1 := entry("a", "c1", models.QueueStatusQueued, 2, base)
	e1.DepartmentID = "Sanitation Department"
	e2 := entry("b", "c2", models.QueueStatusQueued, 2, base)
	e2.DepartmentID = "Electricity Board"
	store.entries = []models.QueueEntry{e1, e2}
	engine := NewEngine(store, zerolog.Nop())

	issues := engine.QueuedIssues(context.Background(), "Sanitation Department")
	if len(issues) != 1 || issues[0].ComplaintID != "c1" {
		t.Fatalf("expected department filter to apply, got %v", issues)
	}
}

func TestStatsNilOnReadFailure(t *testing.T) {
	store := newFakeStore()
	store.allErr = errors.New("connection reset")
	engine := NewEngine(store, zerolog.Nop())

	if stats := engine.Stats(context.Background(), ""); stats != nil {
		t.Fatalf("stats read failure must yield nil, got %+v", stats)
	}
}

func TestStatsCountsAllStatuses(t *testing.T) {
	base := time.Now().UTC()
	store := newFakeStore()
	store.entries = []models.QueueEntry{
		entry("a", "c1", models.QueueStatusResolved, 3, base),
		entry("b", "c2", models.QueueStatusQueued, 1, base),
	}
	engine := NewEngine(store, zerolog.Nop())

	stats := engine.Stats(context.Background(), "")
	if stats == nil {
		t.Fatalf("expected stats")
	}
	if stats.Total != 2 || stats.Resolved != 1 || stats.Queued != 1 {
		t.Fatalf("stats must cover every status, got %+v", stats)
	}
}

func TestStatusControllerActions(t *testing.T) {
	store := newFakeStore()
	ctrl := NewStatusController(store, zerolog.Nop())
	ctx := context.Background()

	if err := ctrl.Apply(ctx, "c1", ActionStart); err != nil {
		t.Fatalf("start: %v", err)
	}
	if store.statusUpdates["c1"] != models.QueueStatusInProgress {
		t.Fatalf("start must move entry to InProgress, got %s", store.statusUpdates["c1"])
	}
	if store.issueStatuses["c1"] != models.IssueInProgress {
		t.Fatalf("start must record issue status, got %s", store.issueStatuses["c1"])
	}

	if err := ctrl.Apply(ctx, "c1", ActionResolve); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if store.statusUpdates["c1"] != models.QueueStatusResolved {
		t.Fatalf("resolve must move entry to Resolved, got %s", store.statusUpdates["c1"])
	}

	if err := ctrl.Apply(ctx, "c1", ActionEscalate); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if len(store.escalated) != 1 || store.escalated[0] != "c1" {
		t.Fatalf("escalate must hit the conditional update, got %v", store.escalated)
	}
}

func TestStatusControllerTransitionFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.transitionErr = errors.New("tx aborted")
	ctrl := NewStatusController(store, zerolog.Nop())

	if err := ctrl.Apply(context.Background(), "c1", ActionStart); err == nil {
		t.Fatalf("transition failures must propagate")
	}
	if len(store.issueStatuses) != 0 || len(store.statusUpdates) != 0 {
		t.Fatalf("a failed transition must leave no partial state, got %v / %v", store.statusUpdates, store.issueStatuses)
	}
}

func TestStatusControllerUnknownAction(t *testing.T) {
	ctrl := NewStatusController(newFakeStore(), zerolog.Nop())
	if err := ctrl.Apply(context.Background(), "c1", "archive"); err == nil {
		t.Fatalf("unknown actions must be rejected")
	}
}
