package user

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/manager/internal/domain"
)

// gormRepository implements domain.Repository[T] using GORM. It is the
// single generic persistence adapter; entity-specific repositories embed it
// and add their own lookups.
type gormRepository[T any] struct {
	db *gorm.DB
}

// Create inserts a new entity and lets the database assign its identity.
func (r *gormRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, mapError(err)
	}
	return entity, nil
}

// Update persists a full replacement of the entity matching its identity.
func (r *gormRepository[T]) Update(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return nil, mapError(err)
	}
	return entity, nil
}

// Remove deletes the entity with the given id. A missing id is a no-op.
func (r *gormRepository[T]) Remove(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// Get retrieves the entity by its primary key, or (nil, nil) when absent.
func (r *gormRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

// GetAll returns every stored entity in persistence-defined order.
func (r *gormRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	entities := make([]T, 0)
	if err := r.db.WithContext(ctx).Find(&entities).Error; err != nil {
		return nil, mapError(err)
	}
	return entities, nil
}

// userRepository implements domain.UserRepository.
type userRepository struct {
	gormRepository[domain.User]
}

// NewUserRepository creates a UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{gormRepository[domain.User]{db: db}}
}

// GetByEmail retrieves the user with a case-insensitive exact email match,
// or (nil, nil) when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// SearchByName returns all users whose name contains the given text,
// case-insensitively.
func (r *userRepository) SearchByName(ctx context.Context, name string) ([]domain.User, error) {
	return r.searchLike(ctx, "name", name)
}

// SearchByEmail returns all users whose email contains the given text,
// case-insensitively.
func (r *userRepository) SearchByEmail(ctx context.Context, email string) ([]domain.User, error) {
	return r.searchLike(ctx, "email", email)
}

func (r *userRepository) searchLike(ctx context.Context, column, text string) ([]domain.User, error) {
	users := make([]domain.User, 0)
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern).
		Find(&users).Error
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// escapeLike escapes LIKE metacharacters so search text matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
