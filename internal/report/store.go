package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/postgres"
)

// Store keeps run and benchmark reports in PostgreSQL so runs over time can
// be compared.
//
//	CREATE TABLE run_reports (
//	    id          BIGSERIAL PRIMARY KEY,
//	    kind        TEXT NOT NULL,
//	    data        JSONB NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// Report kinds.
const (
	KindExecutionTimes = "execution_times"
	KindDictModes      = "benchmark_dict_modes"
	KindSkipStrategies = "benchmark_skip_strategies"
	KindSizes          = "dict_compression_sizes"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_reports (
    id          BIGSERIAL PRIMARY KEY,
    kind        TEXT NOT NULL,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS run_reports_kind_captured_idx ON run_reports (kind, captured_at DESC);
`

type StoredReport struct {
	ID         int64           `json:"id"`
	Kind       string          `json:"kind"`
	Data       json.RawMessage `json:"data"`
	CapturedAt time.Time       `json:"captured_at"`
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "report-store"),
	}
}

// EnsureSchema creates the reports table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating run_reports schema: %w", err)
	}
	return nil
}

// Save stores one report of the given kind.
func (s *Store) Save(ctx context.Context, kind string, v any) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshaling %s report: %w", kind, err)
	}
	var id int64
	err = s.db.DB.QueryRowContext(ctx,
		`INSERT INTO run_reports (kind, data, captured_at) VALUES ($1, $2, $3) RETURNING id`,
		kind, data, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving %s report: %w", kind, err)
	}
	s.logger.Info("report saved", "kind", kind, "id", id)
	return id, nil
}

// SaveAll stores several reports in one transaction.
func (s *Store) SaveAll(ctx context.Context, reports map[string]any) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for kind, v := range reports {
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshaling %s report: %w", kind, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_reports (kind, data, captured_at) VALUES ($1, $2, $3)`,
				kind, data, now,
			); err != nil {
				return fmt.Errorf("saving %s report: %w", kind, err)
			}
		}
		return nil
	})
}

// Latest returns the newest report of kind, or nil when there is none.
func (s *Store) Latest(ctx context.Context, kind string) (*StoredReport, error) {
	r := StoredReport{Kind: kind}
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, data, captured_at FROM run_reports WHERE kind = $1 ORDER BY captured_at DESC, id DESC LIMIT 1`,
		kind,
	).Scan(&r.ID, &data, &r.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest %s report: %w", kind, err)
	}
	r.Data = data
	return &r, nil
}

// List returns the last limit reports of kind, newest first.
func (s *Store) List(ctx context.Context, kind string, limit int) ([]StoredReport, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, data, captured_at FROM run_reports WHERE kind = $1 ORDER BY captured_at DESC, id DESC LIMIT $2`,
		kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s reports: %w", kind, err)
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		r := StoredReport{Kind: kind}
		var data []byte
		if err := rows.Scan(&r.ID, &data, &r.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		r.Data = data
		out = append(out, r)
	}
	return out, rows.Err()
}
