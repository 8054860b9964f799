// Package store persists shipment records created through the
// dev-server, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a shipment record does not exist.
var ErrNotFound = errors.New("shipment record not found")

// ShipmentRecord is one persisted parcel creation outcome.
type ShipmentRecord struct {
	ID        string    `json:"id"`
	Carrier   string    `json:"carrier"`
	Reference string    `json:"reference"`
	CarrierID string    `json:"carrierId,omitempty"`
	Status    string    `json:"status"` // "created" or "failed"
	CreatedAt time.Time `json:"createdAt"`
}

// Store provides access to the shipment database.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at the given path and runs all pending
// migrations. Use ":memory:" for an in-memory database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordShipment inserts one shipment record. A missing ID or timestamp
// is filled in.
func (s *Store) RecordShipment(ctx context.Context, rec ShipmentRecord) (ShipmentRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shipments (id, carrier, reference, carrier_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Carrier, rec.Reference, rec.CarrierID, rec.Status,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return rec, fmt.Errorf("insert shipment: %w", err)
	}
	return rec, nil
}

// GetShipment returns one shipment record by ID.
func (s *Store) GetShipment(ctx context.Context, id string) (ShipmentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, carrier, reference, carrier_id, status, created_at
		 FROM shipments WHERE id = ?`, id)
	return scanShipment(row)
}

// ListShipments returns shipment records, newest first, optionally
// filtered by carrier. A limit of 0 means no limit.
func (s *Store) ListShipments(ctx context.Context, carrierName string, limit int) ([]ShipmentRecord, error) {
	query := `SELECT id, carrier, reference, carrier_id, status, created_at FROM shipments`
	args := []any{}
	if carrierName != "" {
		query += ` WHERE carrier = ?`
		args = append(args, carrierName)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var records []ShipmentRecord
	for rows.Next() {
		rec, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShipment(s scanner) (ShipmentRecord, error) {
	var rec ShipmentRecord
	var createdAt string
	if err := s.Scan(&rec.ID, &rec.Carrier, &rec.Reference, &rec.CarrierID, &rec.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, ErrNotFound
		}
		return rec, fmt.Errorf("scan shipment: %w", err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return rec, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}
