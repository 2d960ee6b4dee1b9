package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pandolabs/ecocart/internal/models"
)

// Archive records completed scans for impact reporting. It is strictly a
// side channel: the suggestion flow always consumes the caller-held
// snapshot, never an archived row.
type Archive struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

type Config struct {
	URL      string
	MaxConns int32
}

// ScanRecord is one archived snapshot.
type ScanRecord struct {
	ID            uuid.UUID       `json:"id"`
	URL           string          `json:"url"`
	CapturedAt    time.Time       `json:"captured_at"`
	ItemCount     int             `json:"item_count"`
	ShipmentCount int             `json:"shipment_count"`
	Total         float64         `json:"total"`
	Snapshot      json.RawMessage `json:"snapshot"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Stats aggregates the archive for the impact endpoint.
type Stats struct {
	Scans          int     `json:"scans"`
	Items          int     `json:"items"`
	Shipments      int     `json:"shipments"`
	CombinedTotal  float64 `json:"combined_total"`
	LastScanAtUnix int64   `json:"last_scan_at_unix,omitempty"`
}

func New(ctx context.Context, cfg Config) (*Archive, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{
		pool:   pool,
		logger: slog.Default().With("component", "scan_archive"),
	}
	if err := a.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scans (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL,
			item_count INT NOT NULL,
			shipment_count INT NOT NULL,
			total DOUBLE PRECISION NOT NULL,
			snapshot JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Save stores one snapshot and returns the created record.
func (a *Archive) Save(ctx context.Context, snapshot *models.CartSnapshot) (*ScanRecord, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	record := &ScanRecord{
		ID:            uuid.New(),
		URL:           snapshot.URL,
		CapturedAt:    snapshot.Timestamp,
		ItemCount:     len(snapshot.Items),
		ShipmentCount: len(snapshot.InferredShipments),
		Total:         snapshot.Total,
		Snapshot:      raw,
	}

	err = a.pool.QueryRow(ctx, `
		INSERT INTO scans (id, url, captured_at, item_count, shipment_count, total, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		record.ID, record.URL, record.CapturedAt, record.ItemCount,
		record.ShipmentCount, record.Total, record.Snapshot,
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}

	a.logger.Info("scan archived", "id", record.ID, "items", record.ItemCount)
	return record, nil
}

// Recent returns the newest records, most recent first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.pool.Query(ctx, `
		SELECT id, url, captured_at, item_count, shipment_count, total, snapshot, created_at
		FROM scans
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(&r.ID, &r.URL, &r.CapturedAt, &r.ItemCount,
			&r.ShipmentCount, &r.Total, &r.Snapshot, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetStats aggregates all archived scans.
func (a *Archive) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var lastScan *time.Time

	err := a.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(item_count), 0),
		       COALESCE(SUM(shipment_count), 0),
		       COALESCE(SUM(total), 0),
		       MAX(created_at)
		FROM scans`,
	).Scan(&stats.Scans, &stats.Items, &stats.Shipments, &stats.CombinedTotal, &lastScan)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scans: %w", err)
	}

	if lastScan != nil {
		stats.LastScanAtUnix = lastScan.Unix()
	}
	return stats, nil
}
