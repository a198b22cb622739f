package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/nutri-hub/internal/storage"
)

// PostgresSlot — Postgres реализация storage.Slot (таблица kv_slots, JSONB)
type PostgresSlot struct {
	pool *pgxpool.Pool
	key  string
}

// New создаёт пул соединений и проверяет доступность базы
func New(ctx context.Context, databaseURL, key string) (*PostgresSlot, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresSlot{pool: pool, key: key}, nil
}

func (s *PostgresSlot) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value::text FROM kv_slots WHERE slot_key = $1`, s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return value, nil
}

func (s *PostgresSlot) Save(ctx context.Context, data []byte) error {
	// JSONB rejects invalid documents; catch it here with a clearer error.
	if !json.Valid(data) {
		return errors.New("slot value is not valid JSON")
	}

	query := `
		INSERT INTO kv_slots (slot_key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (slot_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (s *PostgresSlot) Close() error {
	s.pool.Close()
	return nil
}
