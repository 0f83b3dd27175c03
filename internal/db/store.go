package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicreach/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertIssue(ctx context.Context, issue models.Issue) error {
	analysis, err := json.Marshal(issue.Analysis)
	if err != nil {
		return err
	}
	history, err := json.Marshal(issue.History)
	if err != nil {
		return err
	}
	var lat, lng *float64
	if issue.Location != nil {
		lat, lng = &issue.Location.Lat, &issue.Location.Lng
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO issues (complaint_id, analysis, lat, lng, user_email, status, history, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, issue.ComplaintID, analysis, lat, lng, issue.UserEmail, issue.Status, history, issue.SubmittedAt)
	return err
}

// GetIssue returns the issue row for a complaint. A row whose analysis column
// is null or not unmarshalable comes back with a nil Analysis; callers decide
// how to treat that.
func (s *Store) GetIssue(ctx context.Context, complaintID string) (models.Issue, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT complaint_id, analysis, lat, lng, user_email, status, history, submitted_at
		FROM issues WHERE complaint_id = $1
	`, complaintID)

	var (
		issue    models.Issue
		analysis []byte
		history  []byte
		lat, lng *float64
	)
	if err := row.Scan(&issue.ComplaintID, &analysis, &lat, &lng, &issue.UserEmail, &issue.Status, &history, &issue.SubmittedAt); err != nil {
		return models.Issue{}, err
	}
	if len(analysis) > 0 {
		var a models.IssueAnalysis
		if err := json.Unmarshal(analysis, &a); err == nil {
			issue.Analysis = &a
		}
	}
	if len(history) > 0 {
		_ = json.Unmarshal(history, &issue.History)
	}
	if lat != nil && lng != nil {
		issue.Location = &models.Coordinates{Lat: *lat, Lng: *lng}
	}
	return issue, nil
}

// TransitionComplaint moves the oldest queue row for a complaint to a new
// status and records the citizen-facing status plus a history entry on the
// issue, both inside one transaction so a failed issue write cannot leave the
// queue row already moved. Unknown complaint ids commit as a no-op.
func (s *Store) TransitionComplaint(ctx context.Context, complaintID string, queueStatus models.QueueStatus, issueStatus string, entry models.HistoryEntry) error {
	b, err := json.Marshal([]models.HistoryEntry{entry})
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE issue_queue SET status = $2
			WHERE id = (SELECT id FROM issue_queue WHERE complaint_id = $1 ORDER BY enqueued_at ASC LIMIT 1)
		`, complaintID, queueStatus); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			UPDATE issues SET status = $2, history = history || $3::jsonb
			WHERE complaint_id = $1
		`, complaintID, issueStatus, b)
		return err
	})
}

// AppendIssueHistory appends a history entry without touching the status.
func (s *Store) AppendIssueHistory(ctx context.Context, complaintID string, entry models.HistoryEntry) error {
	b, err := json.Marshal([]models.HistoryEntry{entry})
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		UPDATE issues SET history = history || $2::jsonb
		WHERE complaint_id = $1
	`, complaintID, b)
	return err
}

func (s *Store) InsertQueueEntry(ctx context.Context, e models.QueueEntry) error {
	var lat, lng *float64
	if e.Coordinates != nil {
		lat, lng = &e.Coordinates.Lat, &e.Coordinates.Lng
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO issue_queue (id, complaint_id, severity, priority, status, department_id, enqueued_at, lat, lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, e.ComplaintID, e.Severity, e.Priority, e.Status, e.DepartmentID, e.EnqueuedAt, lat, lng)
	return err
}

// ActiveQueueEntries returns rows with status Queued or Escalated, optionally
// restricted to a department. Ordering and dedup happen in the queue engine.
func (s *Store) ActiveQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error) {
	return s.queueEntries(ctx, departmentID, true)
}

// AllQueueEntries returns rows in every status, optionally restricted to a
// department. Used for stats aggregation.
func (s *Store) AllQueueEntries(ctx context.Context, departmentID string) ([]models.QueueEntry, error) {
	return s.queueEntries(ctx, departmentID, false)
}

func (s *Store) queueEntries(ctx context.Context, departmentID string, activeOnly bool) ([]models.QueueEntry, error) {
	query := `SELECT id, complaint_id, severity, priority, status, department_id, enqueued_at, lat, lng FROM issue_queue`
	var args []any
	var wheres []string
	if activeOnly {
		wheres = append(wheres, `status = ANY('{Queued,Escalated}')`)
	}
	if departmentID != "" {
		args = append(args, departmentID)
		wheres = append(wheres, `department_id = $1`)
	}
	for i, w := range wheres {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY enqueued_at ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QueueEntry
	for rows.Next() {
		var (
			e        models.QueueEntry
			lat, lng *float64
		)
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.Severity, &e.Priority, &e.Status, &e.DepartmentID, &e.EnqueuedAt, &lat, &lng); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			e.Coordinates = &models.Coordinates{Lat: *lat, Lng: *lng}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EscalateByComplaint bumps priority one step (floored at 1) and marks the
// oldest row Escalated in a single conditional update, so concurrent
// escalations cannot lose a decrement.
func (s *Store) EscalateByComplaint(ctx context.Context, complaintID string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE issue_queue SET priority = GREATEST(priority - 1, 1), status = 'Escalated'
		WHERE id = (SELECT id FROM issue_queue WHERE complaint_id = $1 ORDER BY enqueued_at ASC LIMIT 1)
	`, complaintID)
	return err
}

// ListRouteConfigs returns templates in configured order. Position drives the
// first-match-wins scan in the resolver.
func (s *Store) ListRouteConfigs(ctx context.Context) ([]models.RouteTemplate, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, keywords, department, contact, response_sla, notes, severity_multiplier
		FROM route_configs ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RouteTemplate
	for rows.Next() {
		var t models.RouteTemplate
		if err := rows.Scan(&t.ID, &t.Keywords, &t.Department, &t.Contact, &t.ResponseSLA, &t.Notes, &t.SeverityMultiplier); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetSeverityConfig(ctx context.Context, level string) (models.SeverityConfig, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT level, priority, auto_escalate, sla_multiplier FROM severity_configs WHERE level = $1
	`, level)
	var c models.SeverityConfig
	if err := row.Scan(&c.Level, &c.Priority, &c.AutoEscalate, &c.SLAMultiplier); err != nil {
		return models.SeverityConfig{}, err
	}
	return c, nil
}

// UpsertRouteConfig merge-upserts a template. A null severity multiplier in
// the incoming row keeps whatever is already persisted.
func (s *Store) UpsertRouteConfig(ctx context.Context, t models.RouteTemplate, position int) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO route_configs (id, position, keywords, department, contact, response_sla, notes, severity_multiplier)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			keywords = EXCLUDED.keywords,
			department = EXCLUDED.department,
			contact = EXCLUDED.contact,
			response_sla = EXCLUDED.response_sla,
			notes = EXCLUDED.notes,
			severity_multiplier = COALESCE(EXCLUDED.severity_multiplier, route_configs.severity_multiplier)
	`, t.ID, position, t.Keywords, t.Department, t.Contact, t.ResponseSLA, t.Notes, t.SeverityMultiplier)
	return err
}

func (s *Store) UpsertSeverityConfig(ctx context.Context, c models.SeverityConfig) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO severity_configs (level, priority, auto_escalate, sla_multiplier)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (level) DO UPDATE SET
			priority = EXCLUDED.priority,
			auto_escalate = EXCLUDED.auto_escalate,
			sla_multiplier = EXCLUDED.sla_multiplier
	`, c.Level, c.Priority, c.AutoEscalate, c.SLAMultiplier)
	return err
}

// ErrNotFound re-exported for callers that should not import pgx directly.
var ErrNotFound = pgx.ErrNoRows

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
