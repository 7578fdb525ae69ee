package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ ports.CollectionStore = (*RedisStore)(nil)

// KeyPrefix is prepended to the collection id to form the storage key.
const KeyPrefix = "collection_"

func storageKey(id uuid.UUID) string { return KeyPrefix + id.String() }

// RedisStore keeps each collection as a JSON string under collection_<id>.
type RedisStore struct {
	logger *slog.Logger
	rdb    redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable, logger *slog.Logger) *RedisStore {
	return &RedisStore{logger: logger, rdb: rdb}
}

func (r *RedisStore) Save(ctx context.Context, c *types.Collection) error {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "RedisSave", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("collection.id", c.ID.String()),
	))
	defer span.End()

	doc, err := json.Marshal(c)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err = r.rdb.Set(ctx, storageKey(c.ID), doc, 0).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to SET collection", slog.String("collectionID", c.ID.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "SET failed")
		return fmt.Errorf("redis error saving collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}
	span.SetStatus(codes.Ok, "Collection saved")
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID) (*types.Collection, error) {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "RedisLoad", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	doc, err := r.rdb.Get(ctx, storageKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Error, "Collection not found")
			return nil, fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to GET collection", slog.String("collectionID", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "GET failed")
		return nil, fmt.Errorf("redis error loading collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}

	var c types.Collection
	if err = json.Unmarshal(doc, &c); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode collection %s: %w", id, err)
	}
	span.SetStatus(codes.Ok, "Collection loaded")
	return &c, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "RedisDelete", trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	n, err := r.rdb.Del(ctx, storageKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DEL failed")
		return fmt.Errorf("redis error deleting collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Collection deleted")
	return nil
}

// ListIDs walks the keyspace with SCAN so large stores do not block Redis.
func (r *RedisStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "RedisListIDs", trace.WithAttributes(
		attribute.String("db.system", "redis"),
	))
	defer span.End()

	ids := []uuid.UUID{}
	iter := r.rdb.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), KeyPrefix))
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping malformed collection key", slog.String("key", iter.Val()))
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "SCAN failed")
		return nil, fmt.Errorf("redis error listing collections: %w: %v", types.ErrPersistenceUnavailable, err)
	}
	span.SetStatus(codes.Ok, "Collections listed")
	return ids, nil
}
