package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUserName       = errors.New("name cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

const (
	minPasswordLength = 12
	maxPasswordLength = 72
)

// User is a registered account. TokenVersion is bumped whenever every
// previously issued session token must stop working.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only during registration
	HashedPassword string    `json:"-"`
	TokenVersion   int       `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a validated User holding the plaintext password.
// The caller hashes the password before storing the user.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Password == "" {
		return nil, NewValidationError("password", ErrEmptyPassword.Error(), ErrEmptyPassword)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", ErrEmptyUserID.Error(), ErrEmptyUserID)
	}
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", ErrEmptyUserName.Error(), ErrEmptyUserName)
	}
	if u.Email == "" {
		return NewValidationError("email", ErrEmptyEmail.Error(), ErrEmptyEmail)
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return NewValidationError("email", ErrInvalidEmail.Error(), ErrInvalidEmail)
	}

	if u.Password != "" {
		switch n := len(u.Password); {
		case n < minPasswordLength:
			return NewValidationError("password", ErrPasswordTooShort.Error(), ErrPasswordTooShort)
		case n > maxPasswordLength:
			return NewValidationError("password", ErrPasswordTooLong.Error(), ErrPasswordTooLong)
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", ErrEmptyHashedPassword.Error(), ErrEmptyHashedPassword)
	}

	return nil
}
