package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ ports.CollectionStore = (*PostgresStore)(nil)

// DBTX is the subset of *pgxpool.Pool the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps each collection as one jsonb document.
type PostgresStore struct {
	logger *slog.Logger
	db     DBTX
}

func NewPostgresStore(db DBTX, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresStore) Save(ctx context.Context, c *types.Collection) error {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "Save", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "collections"),
		attribute.String("collection.id", c.ID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Save"), slog.String("collectionID", c.ID.String()))

	doc, err := json.Marshal(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Marshal failed")
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	query := `
		INSERT INTO collections (id, name, document, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    document = EXCLUDED.document,
		    revision = EXCLUDED.revision,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err = r.db.Exec(ctx, query, c.ID, c.Name, doc, c.Revision, c.CreatedAt, c.UpdatedAt); err != nil {
		l.ErrorContext(ctx, "Failed to upsert collection", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return fmt.Errorf("database error saving collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}

	span.SetStatus(codes.Ok, "Collection saved")
	return nil
}

func (r *PostgresStore) Load(ctx context.Context, id uuid.UUID) (*types.Collection, error) {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "Load", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "collections"),
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Load"), slog.String("collectionID", id.String()))

	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM collections WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Collection not found")
			return nil, fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query collection", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error loading collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}

	var c types.Collection
	if err = json.Unmarshal(doc, &c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Corrupt document")
		return nil, fmt.Errorf("failed to decode collection %s: %w", id, err)
	}

	span.SetStatus(codes.Ok, "Collection loaded")
	return &c, nil
}

func (r *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "collections"),
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete collection", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting collection: %w: %v", types.ErrPersistenceUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Collection not found")
		return fmt.Errorf("collection %s: %w", id, types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "Collection deleted")
	return nil
}

func (r *PostgresStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, span := otel.Tracer("CollectionRepo").Start(ctx, "ListIDs", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "collections"),
	))
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT id FROM collections ORDER BY updated_at DESC`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list collections", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing collections: %w: %v", types.ErrPersistenceUnavailable, err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan collection id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Row iteration failed")
		return nil, fmt.Errorf("database error iterating collections: %w: %v", types.ErrPersistenceUnavailable, err)
	}

	span.SetStatus(codes.Ok, "Collections listed")
	return ids, nil
}
