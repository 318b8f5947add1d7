package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertTickSQL = `INSERT INTO market_ticks (
        observed_at,
        pair,
        base,
        quote,
        price_last,
        best_bid,
        best_ask,
        change_pct,
        change_dir,
        vol_base,
        vol_quote
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    )
    ON CONFLICT (pair, observed_at) DO NOTHING;`

	listRecentTicksSQL = `SELECT
        observed_at,
        pair,
        base,
        quote,
        price_last,
        best_bid,
        best_ask,
        change_pct,
        change_dir,
        vol_base,
        vol_quote,
        created_at
    FROM market_ticks
    WHERE pair = $1
    ORDER BY observed_at DESC
    LIMIT $2;`

	countTicksSQL = `SELECT COUNT(*) FROM market_ticks;`

	insertAlertSQL = `INSERT INTO mover_alerts (
        pair,
        observed_at,
        change_pct,
        threshold_pct,
        direction,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        pair,
        observed_at,
        change_pct,
        threshold_pct,
        direction,
        channels,
        created_at
    FROM mover_alerts
    ORDER BY created_at DESC
    LIMIT $1;`
)

// TickStore defines operations for tick persistence.
type TickStore interface {
	InsertTicks(ctx context.Context, ticks []Tick) error
	ListRecentTicks(ctx context.Context, pair string, limit int) ([]Tick, error)
	CountTicks(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
}

// Store aggregates access to ticks and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the recorder tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertTicks records a batch of ticks in one round trip. Ticks already
// recorded for the same pair and time are skipped.
func (s *Store) InsertTicks(ctx context.Context, ticks []Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, t := range ticks {
		batch.Queue(insertTickSQL,
			t.ObservedAt,
			t.Pair,
			t.Base,
			t.Quote,
			numericArg(t.PriceLast),
			numericArg(t.Bid),
			numericArg(t.Ask),
			numericArg(t.ChangePct),
			textArg(t.ChangeDir),
			numericArg(t.VolBase),
			numericArg(t.VolQuote),
		)
	}

	results := pool.SendBatch(ctx, batch)
	for i := range ticks {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert tick %s: %w", ticks[i].Pair, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("insert ticks: %w", err)
	}
	return nil
}

// ListRecentTicks lists the most recent ticks of a pair, newest first.
func (s *Store) ListRecentTicks(ctx context.Context, pair string, limit int) ([]Tick, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentTicksSQL, pair, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent ticks: %w", queryErr)
	}
	defer rows.Close()

	ticks := make([]Tick, 0, limit)
	for rows.Next() {
		tick, scanErr := scanTick(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ticks = append(ticks, tick)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ticks, nil
}

// CountTicks counts stored ticks.
func (s *Store) CountTicks(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countTicksSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count ticks: %w", scanErr)
	}
	return count, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	channels := alert.Channels
	if channels == nil {
		channels = []string{}
	}
	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Pair,
		alert.ObservedAt,
		alert.ChangePct.String(),
		alert.ThresholdPct.String(),
		alert.Direction,
		channels,
	)

	rec := alert
	if scanErr := row.Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		var rec AlertRecord
		var changeStr, thresholdStr string
		if err := rows.Scan(
			&rec.ID,
			&rec.Pair,
			&rec.ObservedAt,
			&changeStr,
			&thresholdStr,
			&rec.Direction,
			&rec.Channels,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		var convErr error
		rec.ChangePct, convErr = decimal.NewFromString(changeStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse change pct: %w", convErr)
		}
		rec.ThresholdPct, convErr = decimal.NewFromString(thresholdStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse threshold pct: %w", convErr)
		}

		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func scanTick(rows pgx.Rows) (Tick, error) {
	var (
		tick                       Tick
		last, bid, ask, change     sql.NullString
		volBase, volQuote, dirNull sql.NullString
	)

	if err := rows.Scan(
		&tick.ObservedAt,
		&tick.Pair,
		&tick.Base,
		&tick.Quote,
		&last,
		&bid,
		&ask,
		&change,
		&dirNull,
		&volBase,
		&volQuote,
		&tick.CreatedAt,
	); err != nil {
		return Tick{}, err
	}

	fields := []struct {
		name string
		src  sql.NullString
		dst  **decimal.Decimal
	}{
		{"price_last", last, &tick.PriceLast},
		{"best_bid", bid, &tick.Bid},
		{"best_ask", ask, &tick.Ask},
		{"change_pct", change, &tick.ChangePct},
		{"vol_base", volBase, &tick.VolBase},
		{"vol_quote", volQuote, &tick.VolQuote},
	}
	for _, f := range fields {
		d, err := parseNullDecimal(f.src)
		if err != nil {
			return Tick{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = d
	}
	if dirNull.Valid {
		tick.ChangeDir = dirNull.String
	}
	return tick, nil
}

func parseNullDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var (
	_ TickStore  = (*Store)(nil)
	_ AlertStore = (*Store)(nil)
)
