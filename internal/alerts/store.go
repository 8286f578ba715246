package alerts

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/callscore-ai/callscore/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// Alert statuses.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// StoredAlert is one persisted alert record.
type StoredAlert struct {
	ID             string
	OpportunityID  string
	ConversationID string
	Type           AlertType
	Severity       Severity
	Title          string
	Message        string
	Context        map[string]any
	Status         string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}

// Store persists alerts and score history in SQLite. Deduplication is
// a read-before-write check against pending alerts, so re-evaluating
// the same conversation never doubles an alert.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the store at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating alert store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening alert store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		version = 0
	}
	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return fmt.Errorf("applying migration v1: %w", err)
		}
	}
	return nil
}

// Save persists an alert unless a pending alert of the same type
// already exists for the opportunity. It returns true when the alert
// was stored.
func (s *Store) Save(ctx context.Context, opportunityID, conversationID string, alert AlertResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.pendingExists(ctx, opportunityID, alert.Type)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}

	contextJSON, err := json.Marshal(alert.Context)
	if err != nil {
		return false, fmt.Errorf("encoding alert context: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, opportunity_id, conversation_id, type, severity, title, message, context, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), opportunityID, conversationID,
		string(alert.Type), string(alert.Severity), alert.Title, alert.Message,
		string(contextJSON), StatusPending, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("inserting alert: %w", err)
	}
	return true, nil
}

func (s *Store) pendingExists(ctx context.Context, opportunityID string, typ AlertType) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM alerts
		WHERE opportunity_id = ? AND type = ? AND status = ?`,
		opportunityID, string(typ), StatusPending,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending alerts: %w", err)
	}
	return count > 0, nil
}

// Resolve marks an alert resolved.
func (s *Store) Resolve(ctx context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, resolved_at = ? WHERE id = ? AND status = ?`,
		StatusResolved, time.Now().UTC().Format(time.RFC3339Nano), alertID, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("resolving alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving alert: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound("pending alert", alertID)
	}
	return nil
}

// List returns alerts for an opportunity, newest first. An empty status
// returns every alert.
func (s *Store) List(ctx context.Context, opportunityID, status string) ([]StoredAlert, error) {
	query := `
		SELECT id, opportunity_id, conversation_id, type, severity, title, message, context, status, created_at, resolved_at
		FROM alerts WHERE opportunity_id = ?`
	args := []any{opportunityID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var out []StoredAlert
	for rows.Next() {
		var (
			a           StoredAlert
			contextJSON string
			createdAt   string
			resolvedAt  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.OpportunityID, &a.ConversationID, &a.Type, &a.Severity,
			&a.Title, &a.Message, &contextJSON, &a.Status, &createdAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		if err := json.Unmarshal([]byte(contextJSON), &a.Context); err != nil {
			a.Context = map[string]any{}
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			a.CreatedAt = t
		}
		if resolvedAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
				a.ResolvedAt = &t
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecordScore records one conversation's overall score in the
// opportunity's history. Re-analyzing a conversation replaces its row,
// so the history holds one score per conversation and the recency
// window the escalation rule reads is never filled by a single
// conversation analyzed repeatedly.
func (s *Store) RecordScore(ctx context.Context, opportunityID, conversationID string, score core.QualificationScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_history (opportunity_id, conversation_id, overall_score, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(opportunity_id, conversation_id) DO UPDATE SET
			overall_score = excluded.overall_score,
			status = excluded.status,
			created_at = excluded.created_at`,
		opportunityID, conversationID, score.OverallScore, string(score.Status),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording score: %w", err)
	}
	return nil
}

// RecentScores returns up to n overall scores for the opportunity, most
// recent first.
func (s *Store) RecentScores(ctx context.Context, opportunityID string, n int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT overall_score FROM score_history
		WHERE opportunity_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		opportunityID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("loading score history: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

// ConversationCount returns how many conversations have been scored for
// the opportunity.
func (s *Store) ConversationCount(ctx context.Context, opportunityID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT conversation_id) FROM score_history WHERE opportunity_id = ?`,
		opportunityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return count, nil
}

// ContextFor assembles the rule evaluation context for one finished
// result: record its score first, then read the history back so the
// current conversation is included in count and recency.
func (s *Store) ContextFor(ctx context.Context, result *core.AnalysisResult, transcriptText string) (EvaluationContext, error) {
	oppID := result.Metadata.OpportunityID
	if err := s.RecordScore(ctx, oppID, result.Metadata.ConversationID, result.Score); err != nil {
		return EvaluationContext{}, err
	}
	recent, err := s.RecentScores(ctx, oppID, 3)
	if err != nil {
		return EvaluationContext{}, err
	}
	count, err := s.ConversationCount(ctx, oppID)
	if err != nil {
		return EvaluationContext{}, err
	}

	return EvaluationContext{
		OpportunityID:     oppID,
		ConversationID:    result.Metadata.ConversationID,
		Score:             result.Score,
		TranscriptText:    transcriptText,
		ConversationCount: count,
		RecentOveralls:    recent,
	}, nil
}
