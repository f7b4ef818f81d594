package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"verification_portal/internal/metrics"
	"verification_portal/internal/model"
	"verification_portal/internal/repository"
	"verification_portal/internal/transport"

	"go.uber.org/zap"
)

// FallbackOptions включает резервные источники для чтения.
// Без Enabled любая ошибка транспорта возвращается как есть.
type FallbackOptions struct {
	Enabled bool
	Demo    bool
}

type fallback struct {
	opts      FallbackOptions
	snapshots repository.SnapshotRepository
	logger    *zap.Logger
}

func newFallback(opts FallbackOptions, snapshots repository.SnapshotRepository, logger *zap.Logger) *fallback {
	return &fallback{
		opts:      opts,
		snapshots: snapshots,
		logger:    logger,
	}
}

// source - один запрос на чтение: живой вызов, ключ снимка и демо-данные.
// restricted запрещает снимки: данные администратора не отдаются без привилегий.
type source[T any] struct {
	kind       string
	key        string
	restricted bool
	live       func(ctx context.Context) (T, error)
	demo       func() (T, bool)
}

// callerScope - отпечаток токена вызывающего. Снимки видит только тот же токен.
// Без токена снимки не пишутся и не читаются.
func callerScope(ctx context.Context) string {
	token := transport.TokenFrom(ctx)
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// snapshotKey возвращает ключ снимка в области вызывающего или "" если снимки недоступны
func snapshotKey(ctx context.Context, key string) string {
	scope := callerScope(ctx)
	if scope == "" {
		return ""
	}
	return scope + "/" + key
}

// read выполняет живой запрос. Удачный ответ сохраняется в снимок вызывающего,
// при ошибке транспорта и включенном резерве отдается его снимок, затем демо-данные.
func read[T any](ctx context.Context, f *fallback, src source[T]) (model.Result[T], error) {
	key := ""
	if !src.restricted {
		key = snapshotKey(ctx, src.key)
	}

	value, err := src.live(ctx)
	if err == nil {
		if key != "" {
			f.remember(ctx, src.kind, key, value)
		}
		return model.Live(value), nil
	}

	if !f.opts.Enabled || !transport.IsTransport(err) {
		return model.Result[T]{}, err
	}

	if key != "" {
		if v, ok := loadSnapshot[T](ctx, f, src.kind, key); ok {
			metrics.FallbackReads.WithLabelValues(src.kind, string(model.SourceSnapshot)).Inc()
			f.logger.Warn("serving snapshot after upstream failure", zap.String("kind", src.kind), zap.String("key", src.key), zap.Error(err))
			return model.Result[T]{Value: v, Source: model.SourceSnapshot}, nil
		}
	}

	if f.opts.Demo && src.demo != nil {
		if v, ok := src.demo(); ok {
			metrics.FallbackReads.WithLabelValues(src.kind, string(model.SourceDemo)).Inc()
			f.logger.Warn("serving demo data after upstream failure", zap.String("kind", src.kind), zap.String("key", src.key), zap.Error(err))
			return model.Result[T]{Value: v, Source: model.SourceDemo}, nil
		}
	}

	return model.Result[T]{}, err
}

func (f *fallback) remember(ctx context.Context, kind, key string, value any) {
	if f.snapshots == nil {
		return
	}
	if err := f.snapshots.Save(ctx, kind, key, value); err != nil {
		f.logger.Warn("failed to store snapshot", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
	}
}

func loadSnapshot[T any](ctx context.Context, f *fallback, kind, key string) (T, bool) {
	var zero T
	if f.snapshots == nil {
		return zero, false
	}

	snap, err := f.snapshots.Load(ctx, kind, key)
	if err != nil {
		f.logger.Warn("failed to load snapshot", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if snap == nil {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(snap.Payload, &v); err != nil {
		f.logger.Warn("failed to decode snapshot", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}
