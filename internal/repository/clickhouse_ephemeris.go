package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"AstroSignal/internal/domain/models"
	pkgch "AstroSignal/pkg/clickhouse"
	applogger "AstroSignal/pkg/logger"
)

const insertChunkSize = 2000

// CHEphemerisStore serves longitudes from a precomputed ClickHouse table.
type CHEphemerisStore struct {
	db        *sql.DB
	table     string
	tolerance time.Duration
	l         *applogger.Logger
}

// NewCHEphemerisStore reads from table (database-qualified). A lookup
// returns the latest row at or before t and no older than tolerance.
func NewCHEphemerisStore(ch *pkgch.Client, table string, tolerance time.Duration) *CHEphemerisStore {
	return &CHEphemerisStore{db: ch.DB(), table: table, tolerance: tolerance}
}

// SetLogger injects a structured logger.
func (s *CHEphemerisStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHEphemerisStore) Name() string { return "clickhouse" }

func (s *CHEphemerisStore) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	if t.IsZero() {
		return 0, fmt.Errorf("%w: zero time", models.ErrMalformedTimestamp)
	}
	q := lookupQuery(s.table)
	var lon float64
	err := s.db.QueryRowContext(ctx, q, string(body), t.UTC(), t.UTC().Add(-s.tolerance)).Scan(&lon)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: no %s row within %s of %s", models.ErrEphemerisUnavailable, body, s.tolerance, t.UTC().Format(time.RFC3339))
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse longitude query error",
				applogger.String("table", s.table),
				applogger.String("body", string(body)),
				applogger.Error(err),
			)
		}
		return 0, fmt.Errorf("%w: clickhouse: %w", models.ErrEphemerisUnavailable, err)
	}
	return lon, nil
}

// StoreBatch inserts rows in multi-row VALUES chunks.
func (s *CHEphemerisStore) StoreBatch(ctx context.Context, rows []models.EphemerisRow) error {
	start := time.Now()
	stored := 0
	for lo := 0; lo < len(rows); lo += insertChunkSize {
		hi := lo + insertChunkSize
		if hi > len(rows) {
			hi = len(rows)
		}
		q, args := insertQuery(s.table, rows[lo:hi])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse ephemeris insert error",
					applogger.String("table", s.table),
					applogger.Int("offset", lo),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert ephemeris rows: %w", err)
		}
		stored += len(args) / 4
	}
	if s.l != nil {
		s.l.Info("clickhouse ephemeris stored",
			applogger.String("table", s.table),
			applogger.Int("rows", stored),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHEphemerisStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func lookupQuery(table string) string {
	return fmt.Sprintf(`
        SELECT longitude
        FROM %s FINAL
        WHERE body = ? AND ts <= ? AND ts >= ?
        ORDER BY ts DESC
        LIMIT 1
    `, table)
}

// insertQuery skips rows without a body or time.
func insertQuery(table string, rows []models.EphemerisRow) (string, []interface{}) {
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*4)
	for _, r := range rows {
		if r.Body == "" || r.Time.IsZero() {
			continue
		}
		src := r.Source
		if src == "" {
			src = "analytic"
		}
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, string(r.Body), r.Time.UTC(), r.Longitude, src)
	}
	q := fmt.Sprintf("INSERT INTO %s (body, ts, longitude, source) VALUES %s", table, strings.Join(values, ","))
	return q, args
}
