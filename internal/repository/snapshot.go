package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"verification_portal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DB - часть pgxpool.Pool, которая нужна хранилищу снимков
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SnapshotRepository хранит последние успешно полученные ответы бэкенда.
// Используется только как резервный источник при сбое транспорта.
type SnapshotRepository interface {
	Save(ctx context.Context, kind, key string, payload any) error
	Load(ctx context.Context, kind, key string) (*types.Snapshot, error)
}

type snapshotRepository struct {
	db     DB
	logger *zap.Logger
}

func NewSnapshotRepository(db DB, logger *zap.Logger) SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Save сохраняет снимок, перезаписывая предыдущий с тем же ключом
func (r *snapshotRepository) Save(ctx context.Context, kind, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s/%s: %w", kind, key, err)
	}

	query := `
		INSERT INTO verification_snapshots (kind, key, payload, captured_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, key) DO UPDATE
		SET payload = EXCLUDED.payload, captured_at = EXCLUDED.captured_at
	`

	if _, err := r.db.Exec(ctx, query, kind, key, data, time.Now().UTC()); err != nil {
		r.logger.Error("failed to save snapshot", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to save snapshot %s/%s: %w", kind, key, err)
	}

	r.logger.Debug("snapshot saved", zap.String("kind", kind), zap.String("key", key))
	return nil
}

// Load возвращает снимок или nil, если его нет
func (r *snapshotRepository) Load(ctx context.Context, kind, key string) (*types.Snapshot, error) {
	query := `SELECT kind, key, payload, captured_at FROM verification_snapshots WHERE kind = $1 AND key = $2`

	var s types.Snapshot
	var payload []byte
	err := r.db.QueryRow(ctx, query, kind, key).Scan(&s.Kind, &s.Key, &payload, &s.CapturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to load snapshot", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to load snapshot %s/%s: %w", kind, key, err)
	}
	s.Payload = payload

	r.logger.Debug("snapshot loaded", zap.String("kind", kind), zap.String("key", key))
	return &s, nil
}
