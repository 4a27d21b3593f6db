package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName   string    `json:"first_name" gorm:"size:150"`
	LastName    string    `json:"last_name" gorm:"size:150"`
	Password    string    `json:"-"`                                         // bcrypt hash
	FirebaseUID *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // set once the account signs in through Firebase
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserProfile is created together with its User at registration.
type UserProfile struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio             string     `json:"bio"`
	Gender          string     `json:"gender" gorm:"size:10"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Country         string     `json:"country" gorm:"size:100"`
	StateOrCity     string     `json:"state_or_city" gorm:"size:100"`
	TelephoneNumber string     `json:"telephone_number" gorm:"size:20"`
	CreatedAt       time.Time  `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// UserCompact is the public shape of a user embedded in other responses.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username}
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
