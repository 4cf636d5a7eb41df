package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username            string               `bson:"username" json:"username" validate:"required,min=3,max=50"`
	Email               string               `bson:"email" json:"email" validate:"required,email"`
	Password            string               `bson:"password" json:"-"`
	Role                string               `bson:"role" json:"role" validate:"required,oneof=user admin"`
	Blocked             bool                 `bson:"blocked" json:"blocked"`
	Wishlist            []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	PasswordResetToken  string               `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpiry *time.Time           `bson:"password_reset_expiry,omitempty" json:"-"`
	LastLogin           *time.Time           `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt           time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updatedAt"`
}

// AuthUser is the client-safe projection of a user.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Blocked  bool   `json:"blocked"`
}

// ToAuthUser strips credentials and internal fields.
func (u *User) ToAuthUser() *AuthUser {
	return &AuthUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Blocked:  u.Blocked,
	}
}
