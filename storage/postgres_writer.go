package storage

import (
	"car-rental-scraper/models"
	"car-rental-scraper/utils"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to dsn, retrying the first ping with backoff.
func NewPostgresWriter(ctx context.Context, dsn string, retries int) (*PostgresWriter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	err = utils.Retry(retries, 2*time.Second, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS vehicle_offers (
	id BIGSERIAL PRIMARY KEY,
	site TEXT NOT NULL,
	offer_key TEXT NOT NULL,
	title TEXT NOT NULL,
	price NUMERIC(12,2),
	raw_price TEXT,
	currency TEXT,
	fields JSONB NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (site, offer_key)
);

CREATE INDEX IF NOT EXISTS idx_vehicle_offers_site ON vehicle_offers(site);
CREATE INDEX IF NOT EXISTS idx_vehicle_offers_price ON vehicle_offers(price);
`

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := w.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

const insertSQL = `
INSERT INTO vehicle_offers (site, offer_key, title, price, raw_price, currency, fields)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
ON CONFLICT (site, offer_key) DO NOTHING;
`

// WriteBatch inserts offers in one round trip and returns how many rows
// were new.
func (w *PostgresWriter) WriteBatch(ctx context.Context, offers []models.Offer) (int, error) {
	rows, err := offerRows(offers)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertSQL, r...)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// offerRows turns offers into insert arguments, skipping offers without a
// title. A zero price is stored as NULL.
func offerRows(offers []models.Offer) ([][]any, error) {
	rows := make([][]any, 0, len(offers))
	for _, o := range offers {
		title := strings.TrimSpace(o.Title)
		if title == "" {
			continue
		}

		fields, err := json.Marshal(o.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields of %q: %w", title, err)
		}

		var price *float64
		if o.Price > 0 {
			p := o.Price
			price = &p
		}

		rows = append(rows, []any{
			strings.ToLower(strings.TrimSpace(o.Site)),
			o.Key,
			title,
			price,
			strings.TrimSpace(o.RawPrice),
			strings.TrimSpace(o.Currency),
			string(fields),
		})
	}
	return rows, nil
}
