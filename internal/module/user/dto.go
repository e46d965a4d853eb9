package user

import "github.com/simp-lee/manager/internal/domain"

// UserDTO is the transfer shape crossing the service boundary. Password is
// write-only: it carries a value into the service and is never serialized
// outward.
type UserDTO struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// CreateUserRequest represents the input for creating a new user.
type CreateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=3,max=80"`
	Email    string `json:"email" form:"email" binding:"required,email,max=180"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=80"`
}

// UpdateUserRequest represents the input for updating an existing user.
type UpdateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=3,max=80"`
	Email    string `json:"email" form:"email" binding:"required,email,max=180"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=80"`
}

// toDTO maps an entity to its transfer shape. The copy is field-for-field
// and never triggers validation; the password value is carried verbatim but
// excluded from JSON output by the struct tag.
func toDTO(u *domain.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	}
}

// toDTOs maps a slice of entities. An empty input yields an empty, non-nil
// slice so callers always see a sequence.
func toDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, *toDTO(&users[i]))
	}
	return dtos
}
