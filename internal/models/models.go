package models

import "time"

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Issue lifecycle statuses. These are the citizen-facing values and keep the
// historical space in "In Progress".
const (
	IssueSubmitted  = "Submitted"
	IssueInProgress = "In Progress"
	IssueResolved   = "Resolved"
)

type QueueStatus string

const (
	QueueStatusQueued     QueueStatus = "Queued"
	QueueStatusInProgress QueueStatus = "InProgress"
	QueueStatusResolved   QueueStatus = "Resolved"
	QueueStatusEscalated  QueueStatus = "Escalated"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IssueRouting is the routing decision attached to an issue at submission
// time. Priority runs 1 (highest) to 3 (lowest).
type IssueRouting struct {
	Department   string `json:"department"`
	Contact      string `json:"contact"`
	ResponseSLA  string `json:"responseSLA"`
	Jurisdiction string `json:"jurisdiction"`
	Notes        string `json:"notes"`
	Priority     int    `json:"priority"`
	Escalated    bool   `json:"escalated"`
}

// IssueAnalysis is the classified payload produced by the classifier plus the
// routing decision computed on submission. Immutable once persisted.
type IssueAnalysis struct {
	ComplaintID string       `json:"complaintId"`
	IssueType   string       `json:"issueType"`
	Severity    Severity     `json:"severity"`
	Urgency     string       `json:"urgency"`
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Keywords    []string     `json:"keywords,omitempty"`
	Routing     IssueRouting `json:"routing"`
}

// HistoryEntry records one status change. Timestamp is nil while the step is
// still pending.
type HistoryEntry struct {
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp"`
	Note      string     `json:"note"`
}

// Issue is the canonical complaint record, keyed by complaint id. Only status
// and history change after creation.
type Issue struct {
	ComplaintID string         `json:"complaintId"`
	Analysis    *IssueAnalysis `json:"analysis"`
	Location    *Coordinates   `json:"location,omitempty"`
	UserEmail   string         `json:"userEmail,omitempty"`
	Status      string         `json:"status"`
	History     []HistoryEntry `json:"history"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// QueueEntry tracks one lifecycle instance of an issue inside the priority
// queue. A complaint may accumulate several rows over time; the listing layer
// dedups at read time.
type QueueEntry struct {
	ID           string       `json:"id"`
	ComplaintID  string       `json:"complaintId"`
	Severity     Severity     `json:"severity"`
	Priority     int          `json:"priority"`
	Status       QueueStatus  `json:"status"`
	DepartmentID string       `json:"departmentId"`
	EnqueuedAt   time.Time    `json:"enqueuedAt"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// QueuedIssue is a queue entry enriched with its issue analysis, as rendered
// to consumers of the queue listing.
type QueuedIssue struct {
	IssueAnalysis
	QueuePosition int    `json:"queuePosition"`
	EnqueuedAt    string `json:"enqueuedAt"`
	Priority      int    `json:"priority"`
	Escalated     bool   `json:"escalated"`
}

type PriorityBuckets struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type QueueStats struct {
	Total      int             `json:"total"`
	Queued     int             `json:"queued"`
	InProgress int             `json:"inProgress"`
	Escalated  int             `json:"escalated"`
	Resolved   int             `json:"resolved"`
	ByPriority PriorityBuckets `json:"byPriority"`
}

// RouteTemplate maps issue-type keywords to a responsible department. Order
// matters: the resolver scans templates in list order and the first keyword
// hit wins.
type RouteTemplate struct {
	ID                 string   `json:"id"`
	Keywords           []string `json:"keywords"`
	Department         string   `json:"department"`
	Contact            string   `json:"contact"`
	ResponseSLA        string   `json:"responseSLA"`
	Notes              string   `json:"notes"`
	SeverityMultiplier *float64 `json:"severityMultiplier,omitempty"`
}

// SeverityConfig maps a severity level to its default priority, escalation
// policy and SLA multiplier.
type SeverityConfig struct {
	Level         Severity `json:"level"`
	Priority      int      `json:"priority"`
	AutoEscalate  bool     `json:"autoEscalate"`
	SLAMultiplier float64  `json:"slaMultiplier"`
}
