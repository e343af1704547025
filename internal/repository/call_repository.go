package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/repository/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

const (
	timeLayout = "2006-01-02T15:04:05.000000Z"
	inChunk    = 500
)

type CallRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

type Option func(*CallRepository)

func WithDialect(d Dialect) Option {
	return func(r *CallRepository) { r.dialect = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *CallRepository) { r.now = now }
}

func NewCallRepository(db *sql.DB, opts ...Option) *CallRepository {
	r := &CallRepository{db: db, dialect: DialectSQLite, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

const callColumns = `c.id, c.campaign_id, c.campaign_name, c.agent_name, c.caller_number,
	c.duration_seconds, c.recording_url, c.started_at, c.ended_at, c.status,
	c.disposition, c.revenue, c.cost`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCall reads callColumns followed by any extra destinations.
func scanCall(row rowScanner, extra ...any) (domain.CallRecord, error) {
	var (
		c                domain.CallRecord
		started, revenue string
		cost             string
		ended            sql.NullString
		status, disp     string
	)
	dest := append([]any{
		&c.ID, &c.CampaignID, &c.CampaignName, &c.AgentName, &c.CallerNumber,
		&c.DurationSeconds, &c.RecordingURL, &started, &ended, &status,
		&disp, &revenue, &cost,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.CallRecord{}, err
	}

	var err error
	if c.StartTime, err = parseTime(started); err != nil {
		return domain.CallRecord{}, fmt.Errorf("call %s started_at: %w", c.ID, err)
	}
	if ended.Valid {
		t, err := parseTime(ended.String)
		if err != nil {
			return domain.CallRecord{}, fmt.Errorf("call %s ended_at: %w", c.ID, err)
		}
		c.EndTime = &t
	}
	if c.Revenue, err = decimal.NewFromString(revenue); err != nil {
		return domain.CallRecord{}, fmt.Errorf("call %s revenue: %w", c.ID, err)
	}
	if c.Cost, err = decimal.NewFromString(cost); err != nil {
		return domain.CallRecord{}, fmt.Errorf("call %s cost: %w", c.ID, err)
	}
	c.Status = domain.CallStatus(status)
	c.Disposition = domain.Disposition(disp)
	c.HasRecording = c.RecordingURL != ""
	return c, nil
}

// UpsertCalls inserts calls or refreshes them by id in one transaction.
func (r *CallRepository) UpsertCalls(ctx context.Context, calls []domain.CallRecord) error {
	if len(calls) == 0 {
		return nil
	}
	query := r.dialect.rebind(`
		INSERT INTO calls (id, campaign_id, campaign_name, agent_name, caller_number,
			duration_seconds, recording_url, started_at, ended_at, status, disposition,
			revenue, cost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			campaign_id = excluded.campaign_id,
			campaign_name = excluded.campaign_name,
			agent_name = excluded.agent_name,
			caller_number = excluded.caller_number,
			duration_seconds = excluded.duration_seconds,
			recording_url = excluded.recording_url,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			status = excluded.status,
			disposition = excluded.disposition,
			revenue = excluded.revenue,
			cost = excluded.cost,
			updated_at = excluded.updated_at`)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin UpsertCalls: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare UpsertCalls: %w", err)
	}
	defer stmt.Close()

	updated := formatTime(r.now())
	for _, c := range calls {
		var ended sql.NullString
		if c.EndTime != nil {
			ended = sql.NullString{String: formatTime(*c.EndTime), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.CampaignID, c.CampaignName, c.AgentName, c.CallerNumber,
			c.DurationSeconds, c.RecordingURL, formatTime(c.StartTime), ended,
			string(c.Status), string(c.Disposition), c.Revenue.String(), c.Cost.String(), updated,
		); err != nil {
			return fmt.Errorf("exec UpsertCalls %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit UpsertCalls: %w", err)
	}
	return nil
}

func (r *CallRepository) GetCall(ctx context.Context, id string) (domain.CallRecord, error) {
	query := r.dialect.rebind(`SELECT ` + callColumns + ` FROM calls c WHERE c.id = ?`)
	c, err := scanCall(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CallRecord{}, fmt.Errorf("call %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.CallRecord{}, fmt.Errorf("query GetCall: %w", err)
	}
	return c, nil
}

// ListCalls returns calls that started within [start, end], oldest first.
func (r *CallRepository) ListCalls(ctx context.Context, start, end time.Time) ([]domain.CallRecord, error) {
	query := r.dialect.rebind(`SELECT ` + callColumns + ` FROM calls c
		WHERE c.started_at >= ? AND c.started_at <= ?
		ORDER BY c.started_at, c.id`)

	rows, err := r.db.QueryContext(ctx, query, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("query ListCalls: %w", err)
	}
	defer rows.Close()

	var out []domain.CallRecord
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ListCalls row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListCalls: %w", err)
	}
	return out, nil
}

// SaveTranscript stores or replaces the transcript of a call.
func (r *CallRepository) SaveTranscript(ctx context.Context, t *domain.TranscriptBundle) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transcript %s: %w", t.CallID, err)
	}
	query := r.dialect.rebind(`
		INSERT INTO transcripts (call_id, request_id, body, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (call_id) DO UPDATE SET
			request_id = excluded.request_id,
			body = excluded.body,
			created_at = excluded.created_at`)
	if _, err := r.db.ExecContext(ctx, query, t.CallID, t.RequestID, string(body), formatTime(r.now())); err != nil {
		return fmt.Errorf("exec SaveTranscript: %w", err)
	}
	return nil
}

func (r *CallRepository) GetTranscript(ctx context.Context, callID string) (*domain.TranscriptBundle, error) {
	query := r.dialect.rebind(`SELECT body FROM transcripts WHERE call_id = ?`)
	var body string
	err := r.db.QueryRowContext(ctx, query, callID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript %s: %w", callID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query GetTranscript: %w", err)
	}
	var t domain.TranscriptBundle
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return nil, fmt.Errorf("decode transcript %s: %w", callID, err)
	}
	return &t, nil
}

// GetTranscripts returns the stored transcripts for ids, keyed by call id.
// Calls without a transcript are absent from the map.
func (r *CallRepository) GetTranscripts(ctx context.Context, ids []string) (map[string]*domain.TranscriptBundle, error) {
	out := make(map[string]*domain.TranscriptBundle, len(ids))
	err := r.forChunks(ids, func(chunk []any) error {
		query := r.dialect.rebind(`SELECT call_id, body FROM transcripts WHERE call_id IN (` + placeholders(len(chunk)) + `)`)
		rows, err := r.db.QueryContext(ctx, query, chunk...)
		if err != nil {
			return fmt.Errorf("query GetTranscripts: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id, body string
			if err := rows.Scan(&id, &body); err != nil {
				return fmt.Errorf("scan GetTranscripts row: %w", err)
			}
			var t domain.TranscriptBundle
			if err := json.Unmarshal([]byte(body), &t); err != nil {
				return fmt.Errorf("decode transcript %s: %w", id, err)
			}
			out[id] = &t
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendAnalysis stores a new version of a call's analysis. Versions start at
// 1; existing versions are never modified.
func (r *CallRepository) AppendAnalysis(ctx context.Context, a domain.QualityAnalysis) (domain.AnalysisRecord, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("encode analysis %s: %w", a.CallID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("begin AppendAnalysis: %w", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		r.dialect.rebind(`SELECT COALESCE(MAX(version), 0) FROM quality_analyses WHERE call_id = ?`),
		a.CallID).Scan(&version)
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("query AppendAnalysis version: %w", err)
	}
	version++

	created := r.now().UTC().Truncate(time.Microsecond)
	_, err = tx.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO quality_analyses (call_id, version, kind, scorer_version, overall_score,
			overall_rating, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		a.CallID, version, string(a.Kind), a.ScorerVersion, a.OverallScore,
		string(a.OverallRating), string(body), formatTime(created))
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("exec AppendAnalysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("commit AppendAnalysis: %w", err)
	}
	return domain.AnalysisRecord{Analysis: a, Version: version, CreatedAt: created}, nil
}

func scanAnalysis(version int, body, created string) (domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	if err := json.Unmarshal([]byte(body), &rec.Analysis); err != nil {
		return rec, fmt.Errorf("decode analysis: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return rec, fmt.Errorf("analysis created_at: %w", err)
	}
	rec.Version = version
	rec.CreatedAt = t
	return rec, nil
}

func (r *CallRepository) GetLatestAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	query := r.dialect.rebind(`SELECT version, body, created_at FROM quality_analyses
		WHERE call_id = ? ORDER BY version DESC LIMIT 1`)
	var (
		version       int
		body, created string
	)
	err := r.db.QueryRowContext(ctx, query, callID).Scan(&version, &body, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnalysisRecord{}, fmt.Errorf("analysis %s: %w", callID, ErrNotFound)
	}
	if err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("query GetLatestAnalysis: %w", err)
	}
	return scanAnalysis(version, body, created)
}

// LatestAnalyses returns the newest analysis version per call id.
func (r *CallRepository) LatestAnalyses(ctx context.Context, ids []string) (map[string]domain.AnalysisRecord, error) {
	out := make(map[string]domain.AnalysisRecord, len(ids))
	err := r.forChunks(ids, func(chunk []any) error {
		query := r.dialect.rebind(`SELECT qa.call_id, qa.version, qa.body, qa.created_at
			FROM quality_analyses qa
			WHERE qa.call_id IN (` + placeholders(len(chunk)) + `)
			AND qa.version = (SELECT MAX(version) FROM quality_analyses WHERE call_id = qa.call_id)`)
		rows, err := r.db.QueryContext(ctx, query, chunk...)
		if err != nil {
			return fmt.Errorf("query LatestAnalyses: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				id, body, created string
				version           int
			)
			if err := rows.Scan(&id, &version, &body, &created); err != nil {
				return fmt.Errorf("scan LatestAnalyses row: %w", err)
			}
			rec, err := scanAnalysis(version, body, created)
			if err != nil {
				return fmt.Errorf("analysis %s: %w", id, err)
			}
			out[id] = rec
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAnalysisHistory returns every version of a call's analysis, oldest first.
func (r *CallRepository) GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error) {
	query := r.dialect.rebind(`SELECT version, body, created_at FROM quality_analyses
		WHERE call_id = ? ORDER BY version`)
	rows, err := r.db.QueryContext(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("query GetAnalysisHistory: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalysisRecord
	for rows.Next() {
		var (
			version       int
			body, created string
		)
		if err := rows.Scan(&version, &body, &created); err != nil {
			return nil, fmt.Errorf("scan GetAnalysisHistory row: %w", err)
		}
		rec, err := scanAnalysis(version, body, created)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetAnalysisHistory: %w", err)
	}
	return out, nil
}

const latestJoin = `LEFT JOIN quality_analyses qa ON qa.call_id = c.id
	AND qa.version = (SELECT MAX(version) FROM quality_analyses WHERE call_id = c.id)`

// ListScoredCalls returns calls in the window with their latest analysis, nil
// for unscored calls.
func (r *CallRepository) ListScoredCalls(ctx context.Context, start, end time.Time) ([]domain.ScoredCall, error) {
	query := r.dialect.rebind(`SELECT ` + callColumns + `, qa.body FROM calls c ` + latestJoin + `
		WHERE c.started_at >= ? AND c.started_at <= ?
		ORDER BY c.started_at, c.id`)

	rows, err := r.db.QueryContext(ctx, query, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("query ListScoredCalls: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoredCall
	for rows.Next() {
		var body sql.NullString
		c, err := scanCall(rows, &body)
		if err != nil {
			return nil, fmt.Errorf("scan ListScoredCalls row: %w", err)
		}
		sc := domain.ScoredCall{Call: c}
		if body.Valid {
			var a domain.QualityAnalysis
			if err := json.Unmarshal([]byte(body.String), &a); err != nil {
				return nil, fmt.Errorf("decode analysis %s: %w", c.ID, err)
			}
			sc.Analysis = &a
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListScoredCalls: %w", err)
	}
	return out, nil
}

// GetOverallScore averages the latest overall score of every scored call in
// the window. Count is zero when nothing was scored.
func (r *CallRepository) GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error) {
	query := r.dialect.rebind(`SELECT AVG(qa.overall_score), COUNT(qa.call_id)
		FROM calls c ` + latestJoin + `
		WHERE c.started_at >= ? AND c.started_at <= ?`)

	var (
		score sql.NullFloat64
		count sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, formatTime(start), formatTime(end)).Scan(&score, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OverallScoreResult{}, nil
		}
		return models.OverallScoreResult{}, fmt.Errorf("query GetOverallScore: %w", err)
	}

	var result models.OverallScoreResult
	if count.Valid {
		result.Count = count.Int64
	}
	if score.Valid {
		result.Score = score.Float64
	}
	return result, nil
}

// GetDailyScores sums latest overall scores per UTC start day.
func (r *CallRepository) GetDailyScores(ctx context.Context, start, end time.Time) ([]models.DailyScore, error) {
	query := r.dialect.rebind(`SELECT substr(c.started_at, 1, 10) AS day,
			SUM(qa.overall_score), COUNT(qa.call_id)
		FROM calls c JOIN quality_analyses qa ON qa.call_id = c.id
			AND qa.version = (SELECT MAX(version) FROM quality_analyses WHERE call_id = c.id)
		WHERE c.started_at >= ? AND c.started_at <= ?
		GROUP BY substr(c.started_at, 1, 10)
		ORDER BY day`)

	rows, err := r.db.QueryContext(ctx, query, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("query GetDailyScores: %w", err)
	}
	defer rows.Close()

	var out []models.DailyScore
	for rows.Next() {
		var d models.DailyScore
		if err := rows.Scan(&d.Day, &d.ScoreSum, &d.Count); err != nil {
			return nil, fmt.Errorf("scan GetDailyScores row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetDailyScores: %w", err)
	}
	return out, nil
}

func (r *CallRepository) forChunks(ids []string, fn func(chunk []any) error) error {
	for i := 0; i < len(ids); i += inChunk {
		end := min(i+inChunk, len(ids))
		chunk := make([]any, 0, end-i)
		for _, id := range ids[i:end] {
			chunk = append(chunk, id)
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
