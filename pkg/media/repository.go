package media

import (
	"context"

	"github.com/google/uuid"
)

// ReferenceChecker answers whether a path is used by any row except one.
// Implementations must query the durable store on every call.
type ReferenceChecker interface {
	ReferencesPath(ctx context.Context, path string, excluding uuid.UUID) (bool, error)
}

// Repository persists Media rows. Get, Update and Delete return ErrMediaNotFound
// for unknown ids; Create returns ErrMediaExists for a duplicate id.
type Repository interface {
	ReferenceChecker
	Create(ctx context.Context, m *Media) error
	Get(ctx context.Context, id uuid.UUID) (*Media, error)
	Update(ctx context.Context, m *Media) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByOwner returns the rows of scope owned by ownerID, ordered by
	// position. An empty ownerID selects rows without an owner.
	ListByOwner(ctx context.Context, scope, ownerID string) ([]*Media, error)
}
