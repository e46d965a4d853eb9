package domain

import "context"

// Repository is the generic persistence contract shared by all aggregates.
//
// Absence is not a failure: Get returns (nil, nil) when no entity has the
// given id, and Remove is a no-op for an unknown id. Errors returned by a
// Repository are infrastructure-level only (wrapped as CodeInternal, or
// CodeAlreadyExists on a storage unique-constraint violation); the
// validation and business-rule taxonomy belongs to the service layer.
type Repository[T any] interface {
	// Create persists a new entity, assigns its identity, and returns the
	// persisted entity.
	Create(ctx context.Context, entity *T) (*T, error)
	// Update replaces the stored entity matching the identity of the given
	// entity and returns the persisted state.
	Update(ctx context.Context, entity *T) (*T, error)
	// Remove deletes the entity with the given id. Removing an id that does
	// not exist is not an error.
	Remove(ctx context.Context, id uint) error
	// Get returns the entity with the given id, or (nil, nil) if absent.
	Get(ctx context.Context, id uint) (*T, error)
	// GetAll returns every stored entity. Order is persistence-defined.
	GetAll(ctx context.Context) ([]T, error)
}

// UserRepository extends the generic contract with user-specific lookups.
// All reads return detached copies that do not alias store state.
type UserRepository interface {
	Repository[User]

	// GetByEmail returns the user whose email matches case-insensitively,
	// or (nil, nil) if none does.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// SearchByName returns all users whose name contains the given text,
	// case-insensitively. No matches is an empty slice.
	SearchByName(ctx context.Context, name string) ([]User, error)
	// SearchByEmail returns all users whose email contains the given text,
	// case-insensitively. No matches is an empty slice.
	SearchByEmail(ctx context.Context, email string) ([]User, error)
}
