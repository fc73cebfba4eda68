package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Names are not unique; ID is.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Credentials is the body of both add-user and login. Registration additionally caps
// the password at security.MaxPasswordBytes; login does not, so an over-long password
// is simply a non-match.
type Credentials struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func New(name, passwordHash string) User {
	return User{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
