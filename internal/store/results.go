// Package store persists finished analysis results in SQLite and
// exports them as JSON documents for downstream consumers.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/callscore-ai/callscore/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// ResultStore persists analysis results.
type ResultStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the store at dbPath and runs migrations.
func Open(dbPath string) (*ResultStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating result store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}

	s := &ResultStore{db: db}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("running migrations: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *ResultStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *ResultStore) migrate() error {
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

// Save upserts one result keyed by conversation id, so re-analyzing a
// conversation replaces its stored result instead of multiplying it.
func (s *ResultStore) Save(ctx context.Context, result *core.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	lowConfidence := 0
	if result.LowConfidence {
		lowConfidence = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, conversation_id, opportunity_id, product_line, overall_score, status, low_confidence, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id) DO UPDATE SET
			id = excluded.id,
			overall_score = excluded.overall_score,
			status = excluded.status,
			low_confidence = excluded.low_confidence,
			payload = excluded.payload,
			created_at = excluded.created_at`,
		result.ID, result.Metadata.ConversationID, result.Metadata.OpportunityID,
		string(result.Metadata.ProductLine), result.Score.OverallScore, string(result.Score.Status),
		lowConfidence, string(payload), result.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// GetByConversation loads the stored result for one conversation.
func (s *ResultStore) GetByConversation(ctx context.Context, conversationID string) (*core.AnalysisResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM results WHERE conversation_id = ?`, conversationID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound("result", conversationID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading result: %w", err)
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, core.ErrState("CORRUPT_RESULT", "stored result is not valid JSON").WithCause(err)
	}
	return &result, nil
}

// ListByOpportunity returns stored results for an opportunity, newest
// first, payloads decoded.
func (s *ResultStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]*core.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM results
		WHERE opportunity_id = ?
		ORDER BY created_at DESC`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var out []*core.AnalysisResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		var result core.AnalysisResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, core.ErrState("CORRUPT_RESULT", "stored result is not valid JSON").WithCause(err)
		}
		out = append(out, &result)
	}
	return out, rows.Err()
}

// exportEnvelope wraps an exported result with integrity metadata.
type exportEnvelope struct {
	Version    int                  `json:"version"`
	Checksum   string               `json:"checksum"`
	ExportedAt time.Time            `json:"exported_at"`
	Result     *core.AnalysisResult `json:"result"`
}

// ExportJSON writes the result as a checksummed JSON document at path.
// The write is atomic, a crashed export never leaves a torn file.
func ExportJSON(result *core.AnalysisResult, path string) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	hash := sha256.Sum256(resultBytes)

	envelope := exportEnvelope{
		Version:    1,
		Checksum:   hex.EncodeToString(hash[:]),
		ExportedAt: time.Now().UTC(),
		Result:     result,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// ReadExport loads and verifies an exported JSON document.
func ReadExport(path string) (*core.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var envelope exportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, core.ErrState("CORRUPT_EXPORT", "export is not valid JSON").WithCause(err)
	}
	if envelope.Result == nil {
		return nil, core.ErrState("CORRUPT_EXPORT", "export carries no result")
	}

	resultBytes, err := json.Marshal(envelope.Result)
	if err != nil {
		return nil, fmt.Errorf("re-marshaling result: %w", err)
	}
	hash := sha256.Sum256(resultBytes)
	if hex.EncodeToString(hash[:]) != envelope.Checksum {
		return nil, core.ErrState("CHECKSUM_MISMATCH", "export checksum does not match its payload")
	}
	return envelope.Result, nil
}
