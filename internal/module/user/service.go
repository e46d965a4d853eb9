package user

import (
	"context"
	"strings"

	"github.com/simp-lee/manager/internal/crypto"
	"github.com/simp-lee/manager/internal/domain"
)

// Service defines the business operations over the user aggregate. All
// operations take and return the transfer shape, never the raw entity.
type Service interface {
	Create(ctx context.Context, dto *UserDTO) (*UserDTO, error)
	Update(ctx context.Context, dto *UserDTO) (*UserDTO, error)
	Remove(ctx context.Context, id uint) error
	// Get and GetByEmail return (nil, nil) when no user matches; absence on
	// a single-item lookup is an expected result, not an error.
	Get(ctx context.Context, id uint) (*UserDTO, error)
	GetByEmail(ctx context.Context, email string) (*UserDTO, error)
	GetAll(ctx context.Context) ([]UserDTO, error)
	SearchByName(ctx context.Context, name string) ([]UserDTO, error)
	SearchByEmail(ctx context.Context, email string) ([]UserDTO, error)
}

// userService implements Service. It holds no state between calls; every
// invocation runs its steps sequentially against the injected dependencies.
type userService struct {
	repo   domain.UserRepository
	crypto crypto.Service
}

// NewService creates a user Service with the given repository and crypto
// capability.
func NewService(repo domain.UserRepository, cryptoSvc crypto.Service) Service {
	return &userService{repo: repo, crypto: cryptoSvc}
}

// Create registers a new user. The email must not already be registered
// (case-insensitive); the check runs before any entity construction. The
// password is validated as supplied, then stored encrypted.
//
// Uniqueness here is best-effort: two concurrent creates for the same email
// can both pass this check. The unique index on the email column is the
// hard guarantee.
func (s *userService) Create(ctx context.Context, dto *UserDTO) (*UserDTO, error) {
	// Look up the same trimmed value newValidatedUser will persist, so a
	// padded email cannot slip past this check onto the unique index.
	existing, err := s.repo.GetByEmail(ctx, strings.TrimSpace(dto.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "email already registered", nil)
	}

	entity, err := s.newValidatedUser(dto)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return nil, err
	}

	return toDTO(created), nil
}

// Update replaces the stored user matching dto.ID. The target must exist;
// persistence goes through the repository's update-by-identity path.
func (s *userService) Update(ctx context.Context, dto *UserDTO) (*UserDTO, error) {
	target, err := s.repo.Get(ctx, dto.ID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.NewAppError(domain.CodeNotFound, "user not found", nil)
	}

	entity, err := s.newValidatedUser(dto)
	if err != nil {
		return nil, err
	}
	entity.ID = dto.ID
	entity.CreatedAt = target.CreatedAt

	updated, err := s.repo.Update(ctx, entity)
	if err != nil {
		return nil, err
	}

	return toDTO(updated), nil
}

// Remove deletes the user with the given id. An unknown id is a no-op.
func (s *userService) Remove(ctx context.Context, id uint) error {
	return s.repo.Remove(ctx, id)
}

// Get returns the user with the given id, or (nil, nil) when absent.
func (s *userService) Get(ctx context.Context, id uint) (*UserDTO, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// GetByEmail returns the user whose email matches case-insensitively, or
// (nil, nil) when absent.
func (s *userService) GetByEmail(ctx context.Context, email string) (*UserDTO, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// GetAll returns every user. No users is an empty sequence.
func (s *userService) GetAll(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(users), nil
}

// SearchByName returns all users whose name contains the given text,
// case-insensitively.
func (s *userService) SearchByName(ctx context.Context, name string) ([]UserDTO, error) {
	users, err := s.repo.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return toDTOs(users), nil
}

// SearchByEmail returns all users whose email contains the given text,
// case-insensitively.
func (s *userService) SearchByEmail(ctx context.Context, email string) ([]UserDTO, error) {
	users, err := s.repo.SearchByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toDTOs(users), nil
}

// newValidatedUser constructs the aggregate from the transfer shape, letting
// entity validation run against the values as supplied, then swaps in the
// encrypted password for persistence. The length invariants apply to the
// plaintext; the ciphertext is an infrastructure representation and is
// assigned directly.
func (s *userService) newValidatedUser(dto *UserDTO) (*domain.User, error) {
	entity, err := domain.NewUser(strings.TrimSpace(dto.Name), strings.TrimSpace(dto.Email), dto.Password)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.crypto.Encrypt(dto.Password)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to encrypt password", err)
	}
	entity.Password = encrypted

	return entity, nil
}
