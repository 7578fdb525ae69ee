package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// CollectionStore is the key-value persistence collaborator. Semantics are
// last-write-wins with no transactions. Load of an unknown id returns
// types.ErrNotFound; an unreachable backend wraps types.ErrPersistenceUnavailable.
type CollectionStore interface {
	Save(ctx context.Context, c *types.Collection) error
	Load(ctx context.Context, id uuid.UUID) (*types.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
