package domain

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// User is the aggregate root for the user domain. Password holds the
// encrypted representation produced by the crypto capability; the plaintext
// from the transport boundary never reaches the store.
//
// The zero value exists only so GORM can materialize rows; it is not a valid
// aggregate and must never be validated directly. Use NewUser.
type User struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
}

// NewUser builds a User and validates every invariant. On any violation it
// returns a validation AppError listing all violated rules; the returned
// user is nil in that case.
func NewUser(name, email, password string) (*User, error) {
	u := &User{
		Name:     name,
		Email:    email,
		Password: password,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// SetName changes the name and revalidates the whole aggregate. If the
// result is invalid, the error lists every violated rule and the caller
// must discard the entity.
func (u *User) SetName(name string) error {
	u.Name = name
	return u.Validate()
}

// SetEmail changes the email and revalidates the whole aggregate.
func (u *User) SetEmail(email string) error {
	u.Email = email
	return u.Validate()
}

// SetPassword changes the (encrypted) password value and revalidates the
// whole aggregate.
func (u *User) SetPassword(password string) error {
	u.Password = password
	return u.Validate()
}

// Validation bounds for the user aggregate.
const (
	nameMinLen     = 3
	nameMaxLen     = 80
	emailMaxLen    = 180
	passwordMinLen = 6
	passwordMaxLen = 80
)

// Validate evaluates every invariant independently and collects all
// violations before deciding pass/fail. On failure it returns a single
// validation AppError whose Errors list holds one entry per violated rule,
// in rule-definition order, and whose message is a fixed prefix followed by
// the rule messages joined by spaces. The Errors list is authoritative.
func (u *User) Validate() error {
	var violations []FieldError

	add := func(field, message string) {
		violations = append(violations, FieldError{Field: field, Message: message})
	}

	name := u.Name
	if strings.TrimSpace(name) == "" {
		add("name", "name must not be empty")
	} else {
		if utf8.RuneCountInString(name) < nameMinLen {
			add("name", "name must be at least 3 characters")
		}
		if utf8.RuneCountInString(name) > nameMaxLen {
			add("name", "name must be at most 80 characters")
		}
	}

	email := u.Email
	if strings.TrimSpace(email) == "" {
		add("email", "email must not be empty")
	} else {
		if !isValidEmail(email) {
			add("email", "email must be a valid email address")
		}
		if utf8.RuneCountInString(email) > emailMaxLen {
			add("email", "email must be at most 180 characters")
		}
	}

	if u.Password == "" {
		add("password", "password must not be empty")
	} else {
		if utf8.RuneCountInString(u.Password) < passwordMinLen {
			add("password", "password must be at least 6 characters")
		}
		if utf8.RuneCountInString(u.Password) > passwordMaxLen {
			add("password", "password must be at most 80 characters")
		}
	}

	if len(violations) == 0 {
		return nil
	}

	messages := make([]string, len(violations))
	for i, v := range violations {
		messages[i] = v.Message
	}
	return NewValidationError("validation failed: "+strings.Join(messages, " "), violations)
}

// isValidEmail reports whether addr is a bare, well-formed email address.
// Display names and angle-bracket forms are rejected.
func isValidEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	return err == nil && parsed.Name == "" && parsed.Address == addr
}
