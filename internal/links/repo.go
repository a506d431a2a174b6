package links

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for Link entities.
// The store is responsible for serializing concurrent inserts of the
// same code (unique constraint) and for the atomicity of the access
// counter increment; the service layer never implements either with
// application-side read-modify-write.
type Repository interface {
	// Insert stores a new link and returns the full stored record.
	// A duplicate code yields an errx.Conflict error.
	Insert(ctx context.Context, link Link) (Link, error)

	// GetByCode returns the link with the given code, or errx.NotFound.
	GetByCode(ctx context.Context, code string) (Link, error)

	// List returns links ordered by creation time descending.
	// A limit <= 0 returns all rows.
	List(ctx context.Context, limit int32) ([]Link, error)

	// IncrementAccessCount atomically adds 1 to the access counter of the
	// link with the given code. A missing code is a silent no-op.
	IncrementAccessCount(ctx context.Context, code string) error

	// DeleteByID removes the link with the given id and returns the deleted
	// record, or errx.NotFound when no row matches.
	DeleteByID(ctx context.Context, id uuid.UUID) (Link, error)
}
