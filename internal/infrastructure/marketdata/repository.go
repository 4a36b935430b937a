package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invest-profitability/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository stores historic daily opening prices in the `daily_opens` table:
//
//	CREATE TABLE daily_opens (
//	    open_id   uuid PRIMARY KEY,
//	    figi      varchar(32) NOT NULL,
//	    day       date NOT NULL,
//	    open      numeric NOT NULL,
//	    stored_at timestamptz NOT NULL,
//	    UNIQUE (figi, day)
//	);
type Repository struct {
	pool *pgxpool.Pool
}

var _ interfaces.QuoteStore = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const selectOpenQuery = `
	SELECT open::text
	FROM daily_opens
	WHERE figi=$1 AND day=$2`

func (r *Repository) GetOpen(ctx context.Context, figi string, day time.Time) (decimal.Decimal, bool, error) {
	var raw string
	err := r.pool.QueryRow(ctx, selectOpenQuery, figi, truncateDay(day)).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("select open for %s: %w", figi, err)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse stored open %q: %w", raw, err)
	}
	return price, true, nil
}

const upsertOpenQuery = `
	INSERT INTO daily_opens (open_id, figi, day, open, stored_at)
	VALUES ($1,$2,$3,$4::numeric,$5)
	ON CONFLICT (figi, day) DO UPDATE
	SET open = EXCLUDED.open,
	    stored_at = EXCLUDED.stored_at`

func (r *Repository) SaveOpen(ctx context.Context, figi string, day time.Time, price decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, upsertOpenQuery,
		uuid.New(),
		figi,
		truncateDay(day),
		price.String(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert open for %s: %w", figi, err)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
